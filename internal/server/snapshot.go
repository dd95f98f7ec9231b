package server

import (
	"time"

	"avalon/internal/engine"
)

// snapshot is the public projection broadcast to every connection. It never
// contains roles, visibility sets, vote choices on a pending proposal, or
// investigation results.
func (s *Server) snapshot(game *Game) map[string]any {
	payload := map[string]any{
		"game_id":          game.ID,
		"join_code":        game.JoinCode,
		"phase":            game.Phase(),
		"phase_started_at": game.PhaseStartedAt,
		"host_id":          game.HostID,
		"players":          playersPayload(game.Players),
		"config":           game.Config,
		"can_join":         game.State == nil && len(game.Players) < engine.MaxPlayers,
	}
	state := game.State
	if state == nil {
		return payload
	}

	payload["quest_number"] = state.QuestNumber
	payload["leader_id"] = state.LeaderID
	payload["vote_track"] = state.VoteTrack
	payload["proposals"] = proposalsPayload(state)
	payload["history"] = historyPayload(state)
	if state.Config.LadyOfLake {
		payload["lady_holder"] = state.LadyHolder
		payload["investigations"] = investigationsPayload(state)
	}
	if state.Phase == engine.PhaseQuestResult {
		graceEnds := game.PhaseStartedAt.Add(time.Duration(s.cfg.ResultGraceSeconds) * time.Second)
		payload["result_grace_ends_at"] = graceEnds.UTC().Format(time.RFC3339)
	}
	if state.Phase == engine.PhaseParallelQuiz {
		payload["quiz"] = quizPayload(state)
	}
	if state.Phase == engine.PhaseAssassin || state.Phase == engine.PhaseParallelQuiz {
		payload["outcome"] = state.Outcome
	}
	if state.Phase == engine.PhaseGameOver {
		payload["winner"] = state.Winner
		payload["win_reason"] = state.WinReason
		payload["assassin_guess"] = state.AssassinGuess
		payload["roles"] = state.Assignments
	}
	return payload
}

// playerSnapshot adds the private deal for one authenticated player.
func playerSnapshot(game *Game, playerID string) map[string]any {
	payload := map[string]any{
		"game_id":   game.ID,
		"player_id": playerID,
	}
	state := game.State
	if state == nil {
		return payload
	}
	assignment := state.Assignments[playerID]
	payload["alignment"] = assignment.Alignment
	payload["role"] = assignment.Role
	payload["visibility"] = visibilityPayload(state.Visibility[playerID])

	results := make([]map[string]any, 0)
	for _, record := range state.Investigations {
		if record.InvestigatorID != playerID {
			continue
		}
		results = append(results, map[string]any{
			"quest_number": record.QuestNumber,
			"target_id":    record.TargetID,
			"result":       record.Result,
		})
	}
	if len(results) > 0 {
		payload["investigation_results"] = results
	}
	return payload
}

func playersPayload(players []Player) []map[string]any {
	list := make([]map[string]any, 0, len(players))
	for _, player := range players {
		list = append(list, map[string]any{
			"player_id": player.ID,
			"name":      player.Name,
			"is_host":   player.IsHost,
		})
	}
	return list
}

func visibilityPayload(set engine.VisibilitySet) []map[string]any {
	list := make([]map[string]any, 0, len(set))
	for _, known := range set {
		list = append(list, map[string]any{
			"player_id": known.PlayerID,
			"label":     known.Label,
		})
	}
	return list
}

func proposalsPayload(state *engine.Game) []map[string]any {
	list := make([]map[string]any, 0, len(state.Proposals))
	for i := range state.Proposals {
		proposal := &state.Proposals[i]
		entry := map[string]any{
			"quest_number": proposal.QuestNumber,
			"number":       proposal.Number,
			"leader_id":    proposal.LeaderID,
			"team":         proposal.Team,
			"status":       proposal.Status,
		}
		if proposal.Status == engine.ProposalPending {
			voted := make([]string, 0, len(proposal.Votes))
			for id := range proposal.Votes {
				voted = append(voted, id)
			}
			entry["voted"] = voted
		} else {
			entry["votes"] = proposal.Votes
		}
		list = append(list, entry)
	}
	return list
}

func historyPayload(state *engine.Game) []map[string]any {
	list := make([]map[string]any, 0, len(state.History))
	for _, record := range state.History {
		list = append(list, map[string]any{
			"quest_number":  record.Number,
			"outcome":       record.Outcome,
			"success_count": record.Tally.SuccessCount,
			"fail_count":    record.Tally.FailCount,
			"display":       record.Tally.Display,
		})
	}
	return list
}

func investigationsPayload(state *engine.Game) []map[string]any {
	list := make([]map[string]any, 0, len(state.Investigations))
	for _, record := range state.Investigations {
		list = append(list, map[string]any{
			"quest_number":    record.QuestNumber,
			"investigator_id": record.InvestigatorID,
			"target_id":       record.TargetID,
		})
	}
	return list
}

func quizPayload(state *engine.Game) map[string]any {
	eligible := engine.EligibleQuizVoters(state)
	voted := make([]string, 0, len(state.QuizVotes))
	for _, vote := range state.QuizVotes {
		voted = append(voted, vote.VoterID)
	}
	payload := map[string]any{
		"eligible_count":  len(eligible),
		"submitted_count": len(state.QuizVotes),
		"voted":           voted,
	}
	if state.QuizStartedAt != nil {
		payload["started_at"] = state.QuizStartedAt
		payload["ends_at"] = state.QuizStartedAt.Add(engine.QuizWindow).UTC().Format(time.RFC3339)
	}
	return payload
}
