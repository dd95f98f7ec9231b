package engine

import (
	"errors"
	"math/rand"
)

// NewGame builds the initial state once roles are confirmed. The first
// leader is the first seat; the lady of the lake starts at the last seat,
// the player to the first leader's right.
func NewGame(seating []string, cfg RoleConfig, assignments map[string]RoleAssignment, visibility map[string]VisibilitySet) *Game {
	g := &Game{
		Seating:     append([]string(nil), seating...),
		Config:      cfg,
		Assignments: assignments,
		Visibility:  visibility,
		Phase:       PhaseTeamBuilding,
		QuestNumber: 1,
		LeaderID:    seating[0],
	}
	if cfg.LadyOfLake {
		g.LadyHolder = seating[len(seating)-1]
	}
	return g
}

// ApplyProposal validates and stores a team proposal, moving the game into
// the voting phase.
func ApplyProposal(g *Game, team []string, questNumber int, leaderID string) error {
	if err := ValidateProposal(team, questNumber, leaderID, g); err != nil {
		return err
	}
	next, err := NextPhase(g.Phase, EventTeamProposed)
	if err != nil {
		return err
	}
	g.Proposals = append(g.Proposals, NewProposal(team, g))
	g.Phase = next
	return nil
}

// ApplyVote records one vote and, once every seated player has voted,
// resolves the proposal. A fifth consecutive rejection ends the game for
// evil immediately, overriding everything else.
func ApplyVote(g *Game, playerID string, choice VoteChoice) (resolved bool, err error) {
	if err := RecordVote(g, playerID, choice); err != nil {
		return false, err
	}
	proposal := g.CurrentProposal()
	if len(proposal.Votes) < len(g.Seating) {
		return false, nil
	}

	approve, reject := TallyVotes(proposal)
	outcome, err := ResolveVotes(approve, reject, len(g.Seating))
	if err != nil {
		return false, err
	}
	if outcome.Approved {
		proposal.Status = ProposalApproved
		next, err := NextPhase(g.Phase, EventProposalApproved)
		if err != nil {
			return false, err
		}
		// The track counts consecutive rejections only.
		g.VoteTrack = 0
		g.Actions = nil
		g.Phase = next
		return true, nil
	}

	proposal.Status = ProposalRejected
	g.VoteTrack++
	if win := EvaluateWinConditions(g.History, g.VoteTrack); win.GameOver {
		next, err := NextPhase(g.Phase, EventFifthRejection)
		if err != nil {
			return false, err
		}
		g.Winner = win.Winner
		g.WinReason = win.Reason
		g.Phase = next
		return true, nil
	}
	next, err := NextPhase(g.Phase, EventProposalRejected)
	if err != nil {
		return false, err
	}
	g.LeaderID = NextLeader(g.Seating, g.LeaderID)
	g.Phase = next
	return true, nil
}

// ApplyQuestAction records one team member's action and, once the whole
// team has acted, resolves the quest into the history and moves to the
// result phase.
func ApplyQuestAction(g *Game, playerID string, choice QuestChoice, rng *rand.Rand) (resolved bool, err error) {
	if err := RecordQuestAction(g, playerID, choice); err != nil {
		return false, err
	}
	proposal := g.CurrentProposal()
	if len(g.Actions) < len(proposal.Team) {
		return false, nil
	}

	choices := make([]QuestChoice, 0, len(g.Actions))
	for _, action := range g.Actions {
		choices = append(choices, action.Choice)
	}
	threshold := QuestFailThreshold(len(g.Seating), g.QuestNumber)
	tally := ResolveQuest(choices, threshold, rng)
	g.History = append(g.History, QuestRecord{Number: g.QuestNumber, Outcome: tally.Outcome, Tally: tally})

	next, err := NextPhase(g.Phase, EventQuestResolved)
	if err != nil {
		return false, err
	}
	g.Phase = next
	return true, nil
}

// AdvanceFromQuestResult routes the game out of the result phase: terminal
// winner, endgame extension, lady of the lake, or the next quest.
func AdvanceFromQuestResult(g *Game) (PhaseEvent, error) {
	if g.Phase != PhaseQuestResult {
		return "", ErrWrongPhase
	}
	win := EvaluateWinConditions(g.History, g.VoteTrack)
	if win.GameOver {
		return enterEndgame(g, win)
	}
	if g.Config.LadyOfLake && LadyTriggersAfter(g.QuestNumber) {
		investigated := make([]string, 0, len(g.Investigations))
		for _, past := range g.Investigations {
			investigated = append(investigated, past.TargetID)
		}
		if len(InvestigationCandidates(g.LadyHolder, investigated, g.PriorHolders, g.Seating)) > 0 {
			next, err := NextPhase(g.Phase, EventLadyOfLake)
			if err != nil {
				return "", err
			}
			g.Phase = next
			return EventLadyOfLake, nil
		}
	}
	if err := beginNextQuest(g); err != nil {
		return "", err
	}
	return EventNextQuest, nil
}

// ApplyInvestigation performs the lady of the lake investigation and starts
// the next quest.
func ApplyInvestigation(g *Game, investigatorID, targetID string) (Investigation, error) {
	record, err := Investigate(g, investigatorID, targetID)
	if err != nil {
		return Investigation{}, err
	}
	if err := beginNextQuest(g); err != nil {
		return Investigation{}, err
	}
	return record, nil
}

// enterEndgame decides whether a decided game terminates outright or moves
// into one of the two endgame branches.
func enterEndgame(g *Game, win WinState) (PhaseEvent, error) {
	switch {
	case win.Winner == WinnerGood && g.Config.Assassin:
		g.Outcome = WinnerGood
		event := EventBeginAssassin
		if g.Config.ParallelQuiz {
			event = EventBeginQuiz
		}
		next, err := NextPhase(g.Phase, event)
		if err != nil {
			return "", err
		}
		g.Phase = next
		return event, nil
	case win.Winner == WinnerEvil && g.Config.ParallelQuiz:
		g.Outcome = WinnerEvil
		next, err := NextPhase(g.Phase, EventBeginQuiz)
		if err != nil {
			return "", err
		}
		g.Phase = next
		return EventBeginQuiz, nil
	default:
		next, err := NextPhase(g.Phase, EventGameOver)
		if err != nil {
			return "", err
		}
		g.Winner = win.Winner
		g.WinReason = win.Reason
		g.Phase = next
		return EventGameOver, nil
	}
}

func beginNextQuest(g *Game) error {
	if g.QuestNumber >= QuestCount {
		return errors.New("no quests left")
	}
	next, err := NextPhase(g.Phase, EventNextQuest)
	if err != nil {
		return err
	}
	g.QuestNumber++
	g.LeaderID = NextLeader(g.Seating, g.LeaderID)
	g.Actions = nil
	g.Phase = next
	return nil
}
