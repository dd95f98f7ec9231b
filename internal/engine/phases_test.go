package engine

import "testing"

func TestNextPhaseLegalTransitions(t *testing.T) {
	cases := []struct {
		from  Phase
		event PhaseEvent
		to    Phase
	}{
		{PhaseTeamBuilding, EventTeamProposed, PhaseVoting},
		{PhaseVoting, EventProposalApproved, PhaseQuest},
		{PhaseVoting, EventProposalRejected, PhaseTeamBuilding},
		{PhaseVoting, EventFifthRejection, PhaseGameOver},
		{PhaseQuest, EventQuestResolved, PhaseQuestResult},
		{PhaseQuest, EventBeginAssassin, PhaseAssassin},
		{PhaseQuest, EventBeginQuiz, PhaseParallelQuiz},
		{PhaseQuestResult, EventNextQuest, PhaseTeamBuilding},
		{PhaseQuestResult, EventLadyOfLake, PhaseLadyOfLake},
		{PhaseQuestResult, EventBeginAssassin, PhaseAssassin},
		{PhaseQuestResult, EventBeginQuiz, PhaseParallelQuiz},
		{PhaseQuestResult, EventGameOver, PhaseGameOver},
		{PhaseLadyOfLake, EventNextQuest, PhaseTeamBuilding},
		{PhaseAssassin, EventGameOver, PhaseGameOver},
		{PhaseParallelQuiz, EventGameOver, PhaseGameOver},
	}
	for _, tc := range cases {
		got, err := NextPhase(tc.from, tc.event)
		if err != nil {
			t.Fatalf("%s on %s: %v", tc.from, tc.event, err)
		}
		if got != tc.to {
			t.Fatalf("%s on %s: got %s, want %s", tc.from, tc.event, got, tc.to)
		}
	}
}

func TestNextPhaseRejectsOffTableMoves(t *testing.T) {
	allPhases := []Phase{
		PhaseTeamBuilding, PhaseVoting, PhaseQuest, PhaseQuestResult,
		PhaseLadyOfLake, PhaseAssassin, PhaseParallelQuiz, PhaseGameOver,
	}
	allEvents := []PhaseEvent{
		EventTeamProposed, EventProposalApproved, EventProposalRejected,
		EventFifthRejection, EventQuestResolved, EventNextQuest,
		EventLadyOfLake, EventBeginAssassin, EventBeginQuiz, EventGameOver,
	}
	for _, from := range allPhases {
		for _, event := range allEvents {
			_, legal := phaseTransitions[from][event]
			_, err := NextPhase(from, event)
			if legal && err != nil {
				t.Fatalf("%s on %s unexpectedly rejected: %v", from, event, err)
			}
			if !legal && err == nil {
				t.Fatalf("%s on %s should be rejected", from, event)
			}
		}
	}
}

func TestGameOverIsTerminal(t *testing.T) {
	for _, event := range []PhaseEvent{
		EventTeamProposed, EventProposalApproved, EventNextQuest, EventGameOver,
	} {
		if _, err := NextPhase(PhaseGameOver, event); err == nil {
			t.Fatalf("game_over accepted event %s", event)
		}
	}
}

func TestNextPhaseUnknownPhase(t *testing.T) {
	if _, err := NextPhase(Phase("intermission"), EventNextQuest); err == nil {
		t.Fatalf("unknown phase should be rejected")
	}
}
