package engine

import "fmt"

// PhaseEvent names a transition trigger in the phase state machine.
type PhaseEvent string

const (
	EventTeamProposed     PhaseEvent = "team_proposed"
	EventProposalApproved PhaseEvent = "proposal_approved"
	EventProposalRejected PhaseEvent = "proposal_rejected"
	EventFifthRejection   PhaseEvent = "fifth_rejection"
	EventQuestResolved    PhaseEvent = "quest_resolved"
	EventNextQuest        PhaseEvent = "next_quest"
	EventLadyOfLake       PhaseEvent = "lady_of_lake"
	EventBeginAssassin    PhaseEvent = "begin_assassin"
	EventBeginQuiz        PhaseEvent = "begin_quiz"
	EventGameOver         PhaseEvent = "game_over"
)

// phaseTransitions is the closed table of legal moves. game_over has no
// outgoing transitions.
var phaseTransitions = map[Phase]map[PhaseEvent]Phase{
	PhaseTeamBuilding: {
		EventTeamProposed: PhaseVoting,
	},
	PhaseVoting: {
		EventProposalApproved: PhaseQuest,
		EventProposalRejected: PhaseTeamBuilding,
		EventFifthRejection:   PhaseGameOver,
	},
	PhaseQuest: {
		EventQuestResolved: PhaseQuestResult,
		EventBeginAssassin: PhaseAssassin,
		EventBeginQuiz:     PhaseParallelQuiz,
	},
	PhaseQuestResult: {
		EventNextQuest:     PhaseTeamBuilding,
		EventLadyOfLake:    PhaseLadyOfLake,
		EventBeginAssassin: PhaseAssassin,
		EventBeginQuiz:     PhaseParallelQuiz,
		EventGameOver:      PhaseGameOver,
	},
	PhaseLadyOfLake: {
		EventNextQuest: PhaseTeamBuilding,
	},
	PhaseAssassin: {
		EventGameOver: PhaseGameOver,
	},
	PhaseParallelQuiz: {
		EventGameOver: PhaseGameOver,
	},
	PhaseGameOver: {},
}

// NextPhase resolves one transition. Anything not present in the table is an
// explicit error; the machine never coerces a phase.
func NextPhase(current Phase, event PhaseEvent) (Phase, error) {
	events, ok := phaseTransitions[current]
	if !ok {
		return "", fmt.Errorf("unknown phase %q", current)
	}
	next, ok := events[event]
	if !ok {
		return "", fmt.Errorf("no transition from %s on %s", current, event)
	}
	return next, nil
}
