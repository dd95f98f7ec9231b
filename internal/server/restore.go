package server

import (
	"encoding/json"
	"fmt"
	"log"

	"avalon/internal/db"
	"avalon/internal/engine"
)

// RestoreActiveGames rebuilds the in-memory table for every unfinished game
// after a restart. Players keep their tokens and resume where they were.
func (s *Server) RestoreActiveGames() error {
	if s.db == nil {
		return nil
	}
	var records []db.Game
	if err := s.db.Where("phase <> ?", string(engine.PhaseGameOver)).Find(&records).Error; err != nil {
		return err
	}
	restored := 0
	for i := range records {
		if err := s.restoreGame(&records[i]); err != nil {
			log.Printf("restore skipped game_id=game-%d error=%v", records[i].ID, err)
			continue
		}
		restored++
	}
	if restored > 0 {
		log.Printf("games restored count=%d", restored)
	}
	return nil
}

func (s *Server) restoreGame(record *db.Game) error {
	var playerRows []db.Player
	if err := s.db.Where("game_id = ?", record.ID).Order("seat asc").Find(&playerRows).Error; err != nil {
		return err
	}

	game := &Game{
		ID:             fmt.Sprintf("game-%d", record.ID),
		DBID:           record.ID,
		JoinCode:       record.JoinCode,
		Version:        record.Version,
		CreatedAt:      record.CreatedAt,
		PhaseStartedAt: timeNowUTC(),
	}
	if len(record.Config) > 0 {
		if err := json.Unmarshal(record.Config, &game.Config); err != nil {
			return err
		}
	}
	for _, row := range playerRows {
		player := Player{
			ID:     row.PlayerKey,
			Name:   row.Name,
			Token:  row.AuthToken,
			IsHost: row.IsHost,
			DBID:   row.ID,
		}
		game.Players = append(game.Players, player)
		if player.IsHost {
			game.HostID = player.ID
		}
	}
	if len(record.State) > 0 {
		state := &engine.Game{}
		if err := json.Unmarshal(record.State, state); err != nil {
			return err
		}
		game.State = state
	}
	return s.store.RestoreGame(game)
}
