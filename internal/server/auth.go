package server

import (
	"crypto/subtle"
	"errors"
	"strings"
)

// authenticatePlayer checks a player's bearer token. Tokens are issued once
// at join time and never rotate.
func (s *Server) authenticatePlayer(game *Game, playerID, token string) (*Player, error) {
	if game == nil {
		return nil, errGameNotFound
	}
	if playerID == "" {
		return nil, errors.New("player_id is required")
	}
	player, ok := s.store.FindPlayer(game, playerID)
	if !ok {
		return nil, errors.New("player not found")
	}
	provided := strings.TrimSpace(token)
	if provided == "" {
		return nil, errors.New("authentication required")
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(player.Token)) != 1 {
		return nil, errors.New("invalid player authentication")
	}
	return player, nil
}

func (s *Server) authenticateHost(game *Game, playerID, token string) (*Player, error) {
	player, err := s.authenticatePlayer(game, playerID, token)
	if err != nil {
		return nil, err
	}
	if game.HostID == "" || player.ID != game.HostID {
		return nil, errors.New("only host can perform this action")
	}
	return player, nil
}
