package engine

import (
	"errors"
	"fmt"
	"time"
)

// QuizWindow is how long the merlin quiz stays open once the first vote
// lands.
const QuizWindow = 60 * time.Second

var ErrAlreadySubmitted = errors.New("already submitted")

// QuizEligible decides whether one player takes part in the merlin quiz.
// The assassin sees the guess prompt instead; on an evil win merlin already
// knows the answer, and so does percival unless morgana muddied it.
func QuizEligible(outcome Winner, role Role, hasMorgana, hasAssassin bool) bool {
	if hasAssassin && role == RoleAssassin {
		return false
	}
	if outcome == WinnerEvil {
		if role == RoleMerlin {
			return false
		}
		if role == RolePercival && !hasMorgana {
			return false
		}
	}
	return true
}

// EligibleQuizVoters lists the seated players eligible for the quiz, given
// the outcome that sent the game into the endgame phase.
func EligibleQuizVoters(g *Game) []string {
	voters := make([]string, 0, len(g.Seating))
	for _, id := range g.Seating {
		if QuizEligible(g.Outcome, g.Assignments[id].Role, g.Config.Morgana, g.Config.Assassin) {
			voters = append(voters, id)
		}
	}
	return voters
}

// IsQuizComplete reports whether the quiz has resolved: either every
// eligible player voted, or the window elapsed since the first vote. A quiz
// with no votes is not started, not complete.
func IsQuizComplete(votesSubmitted, eligibleCount int, startedAt *time.Time, now time.Time) bool {
	if eligibleCount == 0 {
		return true
	}
	if votesSubmitted == 0 || startedAt == nil {
		return false
	}
	if votesSubmitted >= eligibleCount {
		return true
	}
	return now.Sub(*startedAt) >= QuizWindow
}

// CanCompletePhase is the two-condition join for the parallel endgame: the
// assassin's side is satisfied by an actual guess, by an evil outcome (no
// assassination happens), or by the assassin not being in the game at all.
func CanCompletePhase(outcome Winner, hasAssassin, assassinSubmitted, quizComplete bool) bool {
	assassinDone := assassinSubmitted || outcome == WinnerEvil || !hasAssassin
	return assassinDone && quizComplete
}

// EndgameWinner computes the final result once the endgame phase completes.
// An evil outcome stands as-is; a good outcome flips only when the assassin
// named merlin.
func EndgameWinner(outcome Winner, assassinGuess, merlinID string) (Winner, WinReason) {
	if outcome == WinnerEvil {
		return WinnerEvil, ReasonThreeFailures
	}
	if assassinGuess != "" && assassinGuess == merlinID {
		return WinnerEvil, ReasonAssassinFoundMerlin
	}
	return WinnerGood, ReasonMerlinSurvived
}

// RecordQuizVote stores one eligible player's suspicion. An empty suspect is
// an explicit skip and still counts as a submitted vote. The first vote
// starts the quiz window.
func RecordQuizVote(g *Game, voterID, suspectID string, now time.Time) error {
	if g.Phase != PhaseParallelQuiz {
		return ErrWrongPhase
	}
	if !g.Seated(voterID) {
		return fmt.Errorf("player %s is not seated in this game", voterID)
	}
	if !QuizEligible(g.Outcome, g.Assignments[voterID].Role, g.Config.Morgana, g.Config.Assassin) {
		return fmt.Errorf("player %s is not eligible for the quiz", voterID)
	}
	if suspectID != "" {
		if suspectID == voterID {
			return errors.New("quiz voters cannot name themselves")
		}
		if !g.Seated(suspectID) {
			return fmt.Errorf("player %s is not seated in this game", suspectID)
		}
	}
	for _, vote := range g.QuizVotes {
		if vote.VoterID == voterID {
			return ErrAlreadySubmitted
		}
	}
	if g.QuizStartedAt == nil {
		started := now
		g.QuizStartedAt = &started
	}
	g.QuizVotes = append(g.QuizVotes, QuizVote{VoterID: voterID, SuspectID: suspectID, SubmittedAt: now})
	return nil
}

// RecordAssassinGuess stores the assassin's one-shot guess. In the
// sequential endgame it resolves the game on the spot; in the parallel
// endgame resolution waits for TryCompleteEndgame.
func RecordAssassinGuess(g *Game, playerID, targetID string) error {
	if g.Phase != PhaseAssassin && g.Phase != PhaseParallelQuiz {
		return ErrWrongPhase
	}
	assassinID, ok := g.FindRole(RoleAssassin)
	if !ok {
		return errors.New("no assassin in this game")
	}
	if playerID != assassinID {
		return fmt.Errorf("player %s is not the assassin", playerID)
	}
	if g.AssassinSubmitted {
		return ErrAlreadySubmitted
	}
	if !g.Seated(targetID) {
		return fmt.Errorf("player %s is not seated in this game", targetID)
	}
	g.AssassinGuess = targetID
	g.AssassinSubmitted = true

	if g.Phase == PhaseAssassin {
		merlinID, _ := g.FindRole(RoleMerlin)
		winner, reason := EndgameWinner(g.Outcome, g.AssassinGuess, merlinID)
		next, err := NextPhase(g.Phase, EventGameOver)
		if err != nil {
			return err
		}
		g.Winner = winner
		g.WinReason = reason
		g.Phase = next
	}
	return nil
}

// TryCompleteEndgame is the idempotent join of the parallel quiz and the
// assassin's guess. It may be invoked by any number of concurrent pollers:
// the first call that finds both conditions satisfied resolves the game, and
// every later call sees game_over and reports nothing to do.
func TryCompleteEndgame(g *Game, now time.Time) (bool, error) {
	switch g.Phase {
	case PhaseGameOver:
		return false, nil
	case PhaseParallelQuiz:
	default:
		return false, ErrWrongPhase
	}
	quizComplete := IsQuizComplete(len(g.QuizVotes), len(EligibleQuizVoters(g)), g.QuizStartedAt, now)
	if !CanCompletePhase(g.Outcome, g.Config.Assassin, g.AssassinSubmitted, quizComplete) {
		return false, nil
	}
	merlinID, _ := g.FindRole(RoleMerlin)
	winner, reason := EndgameWinner(g.Outcome, g.AssassinGuess, merlinID)
	next, err := NextPhase(g.Phase, EventGameOver)
	if err != nil {
		return false, err
	}
	g.Winner = winner
	g.WinReason = reason
	g.Phase = next
	return true, nil
}
