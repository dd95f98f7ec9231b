package engine

import (
	"testing"
)

func findPlayerWithRole(t *testing.T, assignments map[string]RoleAssignment, role Role) string {
	t.Helper()
	for id, assignment := range assignments {
		if assignment.Role == role {
			return id
		}
	}
	t.Fatalf("no player holds role %s", role)
	return ""
}

func TestVisibilityNeverIncludesSelf(t *testing.T) {
	cfg := RoleConfig{
		Merlin: true, Assassin: true, Percival: true, Morgana: true,
		Oberon: true, OberonMode: OberonChaos, Decoy: true,
	}
	_, visibility, err := AssignRoles(seats(10), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	for id, set := range visibility {
		for _, known := range set {
			if known.PlayerID == id {
				t.Fatalf("player %s sees themselves", id)
			}
		}
	}
}

func TestEvilSeesEvilExceptOberon(t *testing.T) {
	cfg := RoleConfig{Merlin: true, Assassin: true, Oberon: true, OberonMode: OberonStandard}
	assignments, visibility, err := AssignRoles(seats(10), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	oberonID := findPlayerWithRole(t, assignments, RoleOberon)
	merlinID := findPlayerWithRole(t, assignments, RoleMerlin)
	for id, assignment := range assignments {
		if assignment.Alignment != AlignmentEvil || id == oberonID {
			continue
		}
		// 10 players carry 4 evil; each non-oberon evil sees the other two.
		if len(visibility[id]) != 2 {
			t.Fatalf("evil player %s sees %d players, want 2", id, len(visibility[id]))
		}
		for _, known := range visibility[id] {
			if known.PlayerID == oberonID {
				t.Fatalf("oberon leaked into %s's visible set", id)
			}
			if known.Label != LabelEvil {
				t.Fatalf("unexpected label %q", known.Label)
			}
		}
	}
	if len(visibility[oberonID]) != 0 {
		t.Fatalf("standard oberon should see nobody, sees %d", len(visibility[oberonID]))
	}
	// Oberon is still evil, so merlin sees all four.
	if len(visibility[merlinID]) != 4 {
		t.Fatalf("merlin sees %d players, want 4", len(visibility[merlinID]))
	}
}

func TestMerlinDoesNotSeeMordred(t *testing.T) {
	cfg := RoleConfig{Merlin: true, Assassin: true, Mordred: true}
	assignments, visibility, err := AssignRoles(seats(7), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	merlinID := findPlayerWithRole(t, assignments, RoleMerlin)
	mordredID := findPlayerWithRole(t, assignments, RoleMordred)
	if len(visibility[merlinID]) != 2 {
		t.Fatalf("merlin sees %d players, want 2", len(visibility[merlinID]))
	}
	for _, known := range visibility[merlinID] {
		if known.PlayerID == mordredID {
			t.Fatalf("mordred leaked into merlin's visible set")
		}
	}
}

func TestPercivalSeesMerlinAndMorgana(t *testing.T) {
	cfg := RoleConfig{Merlin: true, Assassin: true, Percival: true, Morgana: true}
	assignments, visibility, err := AssignRoles(seats(7), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	percivalID := findPlayerWithRole(t, assignments, RolePercival)
	merlinID := findPlayerWithRole(t, assignments, RoleMerlin)
	morganaID := findPlayerWithRole(t, assignments, RoleMorgana)
	set := visibility[percivalID]
	if len(set) != 2 {
		t.Fatalf("percival sees %d players, want 2", len(set))
	}
	seen := map[string]bool{}
	for _, known := range set {
		if known.Label != LabelMagicSource {
			t.Fatalf("percival entry label %q, want %q", known.Label, LabelMagicSource)
		}
		seen[known.PlayerID] = true
	}
	if !seen[merlinID] || !seen[morganaID] {
		t.Fatalf("percival sees %v, want merlin %s and morgana %s", set, merlinID, morganaID)
	}
}

func TestDecoyAddsOneGoodPlayer(t *testing.T) {
	cfg := RoleConfig{Merlin: true, Assassin: true, Decoy: true}
	assignments, visibility, err := AssignRoles(seats(5), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	merlinID := findPlayerWithRole(t, assignments, RoleMerlin)
	set := visibility[merlinID]
	if len(set) != 3 {
		t.Fatalf("merlin sees %d players, want 2 evil plus 1 decoy", len(set))
	}
	goodSeen := 0
	for _, known := range set {
		if known.Label != LabelEvil {
			t.Fatalf("decoy entries carry the evil label, got %q", known.Label)
		}
		if assignments[known.PlayerID].Alignment == AlignmentGood {
			goodSeen++
			if known.PlayerID == merlinID {
				t.Fatalf("merlin decoyed by themselves")
			}
		}
	}
	if goodSeen != 1 {
		t.Fatalf("expected exactly one decoy, got %d", goodSeen)
	}
}

func TestSplitIntelPartition(t *testing.T) {
	cfg := RoleConfig{Merlin: true, Assassin: true, SplitIntel: SplitIntelMerlin}
	assignments, visibility, err := AssignRoles(seats(7), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	merlinID := findPlayerWithRole(t, assignments, RoleMerlin)
	certain, mixed := 0, 0
	mixedGood, mixedEvil := 0, 0
	for _, known := range visibility[merlinID] {
		switch known.Label {
		case LabelCertainEvil:
			certain++
			if assignments[known.PlayerID].Alignment != AlignmentEvil {
				t.Fatalf("good player %s labeled certain evil", known.PlayerID)
			}
		case LabelMixed:
			mixed++
			if assignments[known.PlayerID].Alignment == AlignmentGood {
				mixedGood++
			} else {
				mixedEvil++
			}
		default:
			t.Fatalf("unexpected label %q", known.Label)
		}
	}
	// Seven players carry 3 evil: one moves to the mixed pair, two stay certain.
	if certain != 2 || mixed != 2 {
		t.Fatalf("got %d certain and %d mixed entries", certain, mixed)
	}
	if mixedGood != 1 || mixedEvil != 1 {
		t.Fatalf("mixed pair holds %d good and %d evil, want exactly one of each", mixedGood, mixedEvil)
	}
}

func TestRingEachEvilSeesOneSuccessor(t *testing.T) {
	cfg := RoleConfig{Merlin: true, Assassin: true, Ring: true}
	assignments, visibility, err := AssignRoles(seats(7), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	successors := map[string]bool{}
	for id, assignment := range assignments {
		if assignment.Alignment != AlignmentEvil {
			continue
		}
		set := visibility[id]
		if len(set) != 1 {
			t.Fatalf("ring member %s sees %d players, want 1", id, len(set))
		}
		if set[0].Label != LabelSuccessor {
			t.Fatalf("ring entry label %q", set[0].Label)
		}
		if assignments[set[0].PlayerID].Alignment != AlignmentEvil {
			t.Fatalf("ring successor %s is not evil", set[0].PlayerID)
		}
		if successors[set[0].PlayerID] {
			t.Fatalf("player %s named as successor twice", set[0].PlayerID)
		}
		successors[set[0].PlayerID] = true
	}
	if len(successors) != 3 {
		t.Fatalf("ring covers %d members, want 3", len(successors))
	}
}

func TestChaosOberonSeesOtherEvil(t *testing.T) {
	cfg := RoleConfig{Merlin: true, Assassin: true, Oberon: true, OberonMode: OberonChaos}
	assignments, visibility, err := AssignRoles(seats(10), cfg, testRNG())
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	oberonID := findPlayerWithRole(t, assignments, RoleOberon)
	if len(visibility[oberonID]) != 3 {
		t.Fatalf("chaos oberon sees %d players, want 3", len(visibility[oberonID]))
	}
	for _, known := range visibility[oberonID] {
		if assignments[known.PlayerID].Alignment != AlignmentEvil {
			t.Fatalf("chaos oberon sees good player %s", known.PlayerID)
		}
	}
}
