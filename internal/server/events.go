package server

import "avalon/internal/engine"

type EventPayload struct {
	GameID         string   `json:"game_id,omitempty"`
	JoinCode       string   `json:"join_code,omitempty"`
	PlayerName     string   `json:"player,omitempty"`
	PlayerID       string   `json:"player_id,omitempty"`
	TargetID       string   `json:"target_id,omitempty"`
	Phase          string   `json:"phase,omitempty"`
	QuestNumber    int      `json:"quest_number,omitempty"`
	ProposalNumber int      `json:"proposal_number,omitempty"`
	Team           []string `json:"team,omitempty"`
	Outcome        string   `json:"outcome,omitempty"`
	Winner         string   `json:"winner,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	VoteTrack      int      `json:"vote_track,omitempty"`
}

// terminalEvent builds the single game_over event row written the moment
// the state reaches its terminal phase.
func terminalEvent(state *engine.Game) (EventPayload, bool) {
	if state == nil || state.Phase != engine.PhaseGameOver {
		return EventPayload{}, false
	}
	return EventPayload{
		Phase:  string(engine.PhaseGameOver),
		Winner: string(state.Winner),
		Reason: string(state.WinReason),
	}, true
}
