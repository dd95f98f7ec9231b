package server

import (
	"time"

	"avalon/internal/engine"
)

// progressGame applies every due time-based transition. There are no
// background timers; deadlines are checked against the clock whenever the
// game is read or written.
func (s *Server) progressGame(game *Game, now time.Time) (bool, error) {
	state := game.State
	if state == nil {
		return false, nil
	}
	changed := false

	if state.Phase == engine.PhaseQuestResult {
		grace := time.Duration(s.cfg.ResultGraceSeconds) * time.Second
		if now.Sub(game.PhaseStartedAt) >= grace {
			if _, err := engine.AdvanceFromQuestResult(state); err != nil {
				return changed, err
			}
			game.PhaseStartedAt = now
			changed = true
		}
	}

	if state.Phase == engine.PhaseParallelQuiz {
		done, err := engine.TryCompleteEndgame(state, now)
		if err != nil {
			return changed, err
		}
		if done {
			game.PhaseStartedAt = now
			changed = true
		}
	}
	return changed, nil
}
