package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"avalon/internal/db"
	"avalon/internal/engine"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

func (s *Server) persistGame(game *Game) error {
	if s.db == nil {
		return nil
	}
	cfgJSON, err := json.Marshal(game.Config)
	if err != nil {
		return err
	}
	record := db.Game{
		JoinCode:  game.JoinCode,
		Phase:     game.Phase(),
		Config:    datatypes.JSON(cfgJSON),
		CreatedAt: game.CreatedAt,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	game.DBID = record.ID
	newID := fmt.Sprintf("game-%d", record.ID)
	if game.ID != newID {
		s.store.UpdateGameID(game, newID)
	}
	return s.persistEvent(game, "game_created", EventPayload{
		GameID:   game.ID,
		JoinCode: game.JoinCode,
	})
}

func (s *Server) persistPlayer(game *Game, player *Player) error {
	if s.db == nil {
		return nil
	}
	if player.DBID != 0 {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
		if game.DBID == 0 {
			return errGameNotFound
		}
	}
	seat := 0
	for i := range game.Players {
		if game.Players[i].ID == player.ID {
			seat = i
		}
	}
	record := db.Player{
		GameID:    game.DBID,
		PlayerKey: player.ID,
		Name:      player.Name,
		AuthToken: player.Token,
		Seat:      seat,
		IsHost:    player.IsHost,
		JoinedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findPlayerDBID(game.DBID, player.Name)
			if lookupErr == nil && existing != 0 {
				player.DBID = existing
				return nil
			}
		}
		return err
	}
	player.DBID = record.ID
	return s.persistEvent(game, "player_joined", EventPayload{
		PlayerName: player.Name,
		PlayerID:   player.ID,
	})
}

// persistStart writes the dealt roles and the initial engine state.
func (s *Server) persistStart(game *Game) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
	}
	if game.DBID == 0 {
		return errGameNotFound
	}
	for i := range game.Players {
		player := &game.Players[i]
		assignment, ok := game.State.Assignments[player.ID]
		if !ok || player.DBID == 0 {
			continue
		}
		record := db.RoleAssignment{
			GameID:    game.DBID,
			PlayerID:  player.DBID,
			Alignment: string(assignment.Alignment),
			Role:      string(assignment.Role),
		}
		if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
			return err
		}
	}
	return s.persistState(game, "game_started", EventPayload{Phase: game.Phase()})
}

// persistState updates the game row from the live engine state and appends
// one event row describing the transition.
func (s *Server) persistState(game *Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
	}
	if game.DBID == 0 {
		return errGameNotFound
	}
	updates := map[string]any{
		"phase":   game.Phase(),
		"version": game.Version,
	}
	if state := game.State; state != nil {
		stateJSON, err := json.Marshal(state)
		if err != nil {
			return err
		}
		updates["state"] = datatypes.JSON(stateJSON)
		updates["quest_number"] = state.QuestNumber
		updates["leader_key"] = state.LeaderID
		updates["vote_track"] = state.VoteTrack
		updates["winner"] = string(state.Winner)
		updates["win_reason"] = string(state.WinReason)
	}
	// The version fence keeps a write that lost the race from clobbering a
	// newer row.
	if err := s.db.Model(&db.Game{}).
		Where("id = ? AND version < ?", game.DBID, game.Version).
		Updates(updates).Error; err != nil {
		return err
	}
	if err := s.persistEvent(game, eventType, payload); err != nil {
		return err
	}
	if terminal, over := terminalEvent(game.State); over && eventType != "game_over" {
		return s.persistEvent(game, "game_over", terminal)
	}
	return nil
}

func (s *Server) persistProposal(game *Game, eventType, leaderID string) error {
	if s.db == nil {
		return nil
	}
	proposal := game.State.CurrentProposal()
	if proposal == nil {
		return errors.New("no proposal to save")
	}
	teamJSON, err := json.Marshal(proposal.Team)
	if err != nil {
		return err
	}
	record := db.Proposal{
		GameID:      game.DBID,
		QuestNumber: proposal.QuestNumber,
		Number:      proposal.Number,
		LeaderKey:   proposal.LeaderID,
		Team:        datatypes.JSON(teamJSON),
		Status:      string(proposal.Status),
	}
	if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
		return err
	}
	return s.persistState(game, eventType, EventPayload{
		PlayerID:       leaderID,
		QuestNumber:    proposal.QuestNumber,
		ProposalNumber: proposal.Number,
		Team:           proposal.Team,
	})
}

func (s *Server) persistVote(game *Game, playerID, choice string, resolved bool) error {
	if s.db == nil {
		return nil
	}
	proposal := game.State.CurrentProposal()
	if proposal == nil {
		return errors.New("no proposal to save")
	}
	var proposalRow db.Proposal
	err := s.db.Where("game_id = ? AND quest_number = ? AND number = ?",
		game.DBID, proposal.QuestNumber, proposal.Number).First(&proposalRow).Error
	if err == nil {
		playerDBID := s.playerDBID(game, playerID)
		if playerDBID != 0 {
			record := db.Vote{
				ProposalID: proposalRow.ID,
				PlayerID:   playerDBID,
				Choice:     choice,
			}
			if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
				return err
			}
		}
		if resolved {
			if err := s.db.Model(&db.Proposal{}).Where("id = ?", proposalRow.ID).
				Update("status", string(proposal.Status)).Error; err != nil {
				return err
			}
		}
	}
	if !resolved {
		return s.persistEvent(game, "vote_submitted", EventPayload{PlayerID: playerID})
	}
	return s.persistState(game, "proposal_resolved", EventPayload{
		QuestNumber:    proposal.QuestNumber,
		ProposalNumber: proposal.Number,
		Outcome:        string(proposal.Status),
		Phase:          game.Phase(),
		VoteTrack:      game.State.VoteTrack,
	})
}

func (s *Server) persistQuestAction(game *Game, playerID string, resolved bool) error {
	if s.db == nil {
		return nil
	}
	choice := ""
	for _, action := range game.State.Actions {
		if action.PlayerID == playerID {
			choice = string(action.Choice)
		}
	}
	playerDBID := s.playerDBID(game, playerID)
	if choice != "" && playerDBID != 0 {
		record := db.QuestAction{
			GameID:      game.DBID,
			QuestNumber: game.State.QuestNumber,
			PlayerID:    playerDBID,
			Choice:      choice,
		}
		if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
			return err
		}
	}
	if !resolved {
		return s.persistEvent(game, "quest_action_submitted", EventPayload{PlayerID: playerID})
	}
	latest := game.State.History[len(game.State.History)-1]
	return s.persistState(game, "quest_resolved", EventPayload{
		QuestNumber: latest.Number,
		Outcome:     string(latest.Outcome),
		Phase:       game.Phase(),
	})
}

func (s *Server) persistInvestigation(game *Game, record engine.Investigation) error {
	if s.db == nil {
		return nil
	}
	investigatorDBID := s.playerDBID(game, record.InvestigatorID)
	targetDBID := s.playerDBID(game, record.TargetID)
	if investigatorDBID != 0 && targetDBID != 0 {
		row := db.Investigation{
			GameID:         game.DBID,
			QuestNumber:    record.QuestNumber,
			InvestigatorID: investigatorDBID,
			TargetID:       targetDBID,
			Result:         string(record.Result),
		}
		if err := s.db.Create(&row).Error; err != nil && !isUniqueViolation(err) {
			return err
		}
	}
	return s.persistState(game, "investigation", EventPayload{
		PlayerID:    record.InvestigatorID,
		TargetID:    record.TargetID,
		QuestNumber: record.QuestNumber,
	})
}

func (s *Server) persistQuizVote(game *Game, playerID, suspectID string) error {
	if s.db == nil {
		return nil
	}
	voterDBID := s.playerDBID(game, playerID)
	if voterDBID != 0 {
		row := db.QuizVote{
			GameID:      game.DBID,
			VoterID:     voterDBID,
			SubmittedAt: time.Now().UTC(),
		}
		if suspectDBID := s.playerDBID(game, suspectID); suspectDBID != 0 {
			row.SuspectID = &suspectDBID
		}
		if err := s.db.Create(&row).Error; err != nil && !isUniqueViolation(err) {
			return err
		}
	}
	return s.persistState(game, "quiz_vote", EventPayload{PlayerID: playerID})
}

func (s *Server) persistEvent(game *Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
	}
	if game.DBID == 0 {
		return errGameNotFound
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		GameID:   game.DBID,
		PlayerID: s.resolveEventPlayerID(game, payload),
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func (s *Server) resolveEventPlayerID(game *Game, payload EventPayload) *uint {
	if payload.PlayerID == "" {
		return nil
	}
	if dbID := s.playerDBID(game, payload.PlayerID); dbID != 0 {
		return &dbID
	}
	return nil
}

func (s *Server) playerDBID(game *Game, playerID string) uint {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return game.Players[i].DBID
		}
	}
	return 0
}

func (s *Server) ensureGameDBID(game *Game) error {
	if s.db == nil || game.DBID != 0 {
		return nil
	}
	var record db.Game
	if err := s.db.Where("join_code = ?", game.JoinCode).First(&record).Error; err != nil {
		return nil
	}
	game.DBID = record.ID
	return nil
}

func (s *Server) findPlayerDBID(gameDBID uint, name string) (uint, error) {
	var record db.Player
	if err := s.db.Where("game_id = ? AND name = ?", gameDBID, name).First(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
