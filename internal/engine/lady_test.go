package engine

import "testing"

func TestValidateInvestigationTargetExclusions(t *testing.T) {
	seating := seats(5)
	holder := "player-5"
	prior := []string{"player-4"}
	investigated := []string{"player-3"}

	if err := ValidateInvestigationTarget("player-5", holder, investigated, prior, seating); err == nil {
		t.Fatalf("current holder should be rejected")
	}
	if err := ValidateInvestigationTarget("player-4", holder, investigated, prior, seating); err == nil {
		t.Fatalf("prior holder should be rejected")
	}
	if err := ValidateInvestigationTarget("player-3", holder, investigated, prior, seating); err == nil {
		t.Fatalf("already-investigated player should be rejected")
	}
	if err := ValidateInvestigationTarget("ghost", holder, investigated, prior, seating); err == nil {
		t.Fatalf("unseated player should be rejected")
	}
	for _, id := range []string{"player-1", "player-2"} {
		if err := ValidateInvestigationTarget(id, holder, investigated, prior, seating); err != nil {
			t.Fatalf("valid target %s rejected: %v", id, err)
		}
	}
}

func TestInvestigationCandidates(t *testing.T) {
	seating := seats(5)
	candidates := InvestigationCandidates("player-5", []string{"player-3"}, []string{"player-4"}, seating)
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %v", len(candidates), candidates)
	}
	none := InvestigationCandidates("player-5", []string{"player-1", "player-2", "player-3"}, []string{"player-4"}, seating)
	if len(none) != 0 {
		t.Fatalf("expected no candidates, got %v", none)
	}
}

func TestInvestigateReturnsAlignmentOnly(t *testing.T) {
	cfg := baseConfig()
	cfg.LadyOfLake = true
	g := newTestGame(t, 5, cfg)
	g.Phase = PhaseLadyOfLake
	g.QuestNumber = 2

	holder := g.LadyHolder
	var target string
	for _, id := range g.Seating {
		if id != holder {
			target = id
			break
		}
	}
	record, err := Investigate(g, holder, target)
	if err != nil {
		t.Fatalf("investigate: %v", err)
	}
	if record.Result != g.Assignments[target].Alignment {
		t.Fatalf("result %s, want target alignment %s", record.Result, g.Assignments[target].Alignment)
	}
	if g.LadyHolder != target {
		t.Fatalf("token did not transfer: holder %s", g.LadyHolder)
	}
	if len(g.PriorHolders) != 1 || g.PriorHolders[0] != holder {
		t.Fatalf("prior holders %v", g.PriorHolders)
	}

	// The new holder cannot hand the token straight back.
	g.Phase = PhaseLadyOfLake
	if _, err := Investigate(g, target, holder); err == nil {
		t.Fatalf("investigating a prior holder should be rejected")
	}
}

func TestInvestigateHolderOnly(t *testing.T) {
	cfg := baseConfig()
	cfg.LadyOfLake = true
	g := newTestGame(t, 5, cfg)
	g.Phase = PhaseLadyOfLake

	var notHolder string
	for _, id := range g.Seating {
		if id != g.LadyHolder {
			notHolder = id
			break
		}
	}
	if _, err := Investigate(g, notHolder, g.LadyHolder); err == nil {
		t.Fatalf("non-holder investigation should be rejected")
	}
}

func TestLadyTriggersAfterMiddleQuests(t *testing.T) {
	for quest, want := range map[int]bool{1: false, 2: true, 3: true, 4: true, 5: false} {
		if got := LadyTriggersAfter(quest); got != want {
			t.Fatalf("quest %d: got %v, want %v", quest, got, want)
		}
	}
}
