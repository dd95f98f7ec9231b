package server

import (
	"time"

	"avalon/internal/engine"
)

// phaseLobby is the pre-game phase; the rules engine takes over once the
// host starts the game and roles are dealt.
const phaseLobby = "lobby"

type GameSummary struct {
	ID       string
	JoinCode string
	Phase    string
	Players  int
}

type Game struct {
	ID             string
	DBID           uint
	JoinCode       string
	HostID         string
	Config         engine.RoleConfig
	Players        []Player
	State          *engine.Game
	Version        int
	CreatedAt      time.Time
	PhaseStartedAt time.Time
}

type Player struct {
	ID     string
	Name   string
	Token  string
	IsHost bool
	DBID   uint
}

// Phase is the lobby phase before the game starts and the engine phase after.
func (g *Game) Phase() string {
	if g.State == nil {
		return phaseLobby
	}
	return string(g.State.Phase)
}

// Seating returns player IDs in join order, which fixes the seating order
// for the whole game.
func (g *Game) Seating() []string {
	seats := make([]string, 0, len(g.Players))
	for _, player := range g.Players {
		seats = append(seats, player.ID)
	}
	return seats
}
