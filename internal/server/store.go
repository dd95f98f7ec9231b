package server

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"avalon/internal/engine"

	"github.com/google/uuid"
)

var (
	errGameNotFound       = errors.New("game not found")
	errGameAlreadyStarted = errors.New("game already started")
	errTableFull          = errors.New("table is full")
)

type Store struct {
	mu           sync.Mutex
	nextID       int
	nextPlayerID int
	games        map[string]*Game
}

func NewStore() *Store {
	return &Store{
		nextID:       1,
		nextPlayerID: 1,
		games:        make(map[string]*Game),
	}
}

func (s *Store) CreateGame(cfg engine.RoleConfig) *Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("game-%d", s.nextID)
	s.nextID++
	game := &Game{
		ID:             id,
		JoinCode:       newJoinCode(),
		Config:         cfg,
		CreatedAt:      timeNowUTC(),
		PhaseStartedAt: timeNowUTC(),
	}
	s.games[id] = game
	return game
}

func (s *Store) GetGame(id string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	return game, ok
}

// UpdateGame applies a mutation under the store lock. The update either
// commits as a whole or, by returning an error, leaves no trace. Each
// commit bumps the game version so stale writes can be fenced off.
func (s *Store) UpdateGame(id string, update func(game *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, errGameNotFound
	}
	if err := update(game); err != nil {
		return nil, err
	}
	game.Version++
	return game, nil
}

func (s *Store) FindGameByJoinCode(code string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.games {
		if game.JoinCode == code {
			return game, true
		}
	}
	return nil, false
}

func (s *Store) UpdateGameID(game *Game, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.ID == newID {
		return
	}
	delete(s.games, game.ID)
	game.ID = newID
	s.games[newID] = game
}

func (s *Store) AddPlayer(gameIDOrCode, name string) (*Game, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameIDOrCode]
	if !ok {
		for _, candidate := range s.games {
			if candidate.JoinCode == gameIDOrCode {
				game = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, nil, errGameNotFound
	}

	for i := range game.Players {
		if strings.EqualFold(game.Players[i].Name, name) {
			return game, &game.Players[i], nil
		}
	}
	if game.State != nil {
		return nil, nil, errGameAlreadyStarted
	}
	if len(game.Players) >= engine.MaxPlayers {
		return nil, nil, errTableFull
	}

	player := Player{
		ID:     fmt.Sprintf("player-%d", s.nextPlayerID),
		Name:   name,
		Token:  uuid.NewString(),
		IsHost: len(game.Players) == 0,
	}
	s.nextPlayerID++
	game.Players = append(game.Players, player)
	if player.IsHost {
		game.HostID = player.ID
	}
	game.Version++
	return game, &game.Players[len(game.Players)-1], nil
}

func (s *Store) RestoreGame(game *Game) error {
	if game == nil {
		return errors.New("game is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return errors.New("game already running")
	}
	for _, existing := range s.games {
		if existing.JoinCode == game.JoinCode {
			return errors.New("game already running")
		}
	}
	s.games[game.ID] = game
	if id := trailingNumber(game.ID); id >= s.nextID {
		s.nextID = id + 1
	}
	for _, player := range game.Players {
		if id := trailingNumber(player.ID); id >= s.nextPlayerID {
			s.nextPlayerID = id + 1
		}
	}
	return nil
}

func (s *Store) ListGameSummaries() []GameSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]GameSummary, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, GameSummary{
			ID:       game.ID,
			JoinCode: game.JoinCode,
			Phase:    game.Phase(),
			Players:  len(game.Players),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return trailingNumber(list[i].ID) < trailingNumber(list[j].ID)
	})
	return list
}

func trailingNumber(id string) int {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return value
}

func (s *Store) FindPlayer(game *Game, playerID string) (*Player, bool) {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return &game.Players[i], true
		}
	}
	return nil, false
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
