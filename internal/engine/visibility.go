package engine

import (
	"errors"
	"math/rand"
)

// ResolveVisibility computes the per-player known-players sets from a fixed
// set of assignments. It runs once at game start; the sets are never mutated
// afterwards.
func ResolveVisibility(seating []string, assignments map[string]RoleAssignment, cfg RoleConfig, rng *rand.Rand) (map[string]VisibilitySet, error) {
	visibility := make(map[string]VisibilitySet, len(seating))

	evilIDs := playersByAlignment(seating, assignments, AlignmentEvil)
	goodIDs := playersByAlignment(seating, assignments, AlignmentGood)
	ringEvil := excludeRole(evilIDs, assignments, RoleOberon)

	if cfg.Ring {
		applyRing(visibility, ringEvil, rng)
	} else {
		for _, id := range ringEvil {
			for _, other := range ringEvil {
				if other == id {
					continue
				}
				visibility[id] = append(visibility[id], KnownPlayer{PlayerID: other, Label: LabelEvil})
			}
		}
	}

	if merlinID, ok := findRole(seating, assignments, RoleMerlin); ok {
		if err := applyMerlinSight(visibility, merlinID, seating, assignments, cfg, evilIDs, goodIDs, rng); err != nil {
			return nil, err
		}
	}

	if percivalID, ok := findRole(seating, assignments, RolePercival); ok {
		seen := make([]string, 0, 2)
		if merlinID, ok := findRole(seating, assignments, RoleMerlin); ok {
			seen = append(seen, merlinID)
		}
		if morganaID, ok := findRole(seating, assignments, RoleMorgana); ok {
			seen = append(seen, morganaID)
		}
		rng.Shuffle(len(seen), func(i, j int) { seen[i], seen[j] = seen[j], seen[i] })
		for _, id := range seen {
			visibility[percivalID] = append(visibility[percivalID], KnownPlayer{PlayerID: id, Label: LabelMagicSource})
		}
	}

	if oberonID, ok := findRole(seating, assignments, RoleOberon); ok {
		if err := applyOberonSight(visibility, oberonID, assignments, cfg, ringEvil, goodIDs, rng); err != nil {
			return nil, err
		}
	}

	for id, set := range visibility {
		for _, known := range set {
			if known.PlayerID == id {
				return nil, errors.New("visibility set includes the player itself")
			}
		}
	}
	return visibility, nil
}

// applyRing arranges the non-oberon evil players in a directed cycle; each
// member learns exactly one successor.
func applyRing(visibility map[string]VisibilitySet, members []string, rng *rand.Rand) {
	order := append([]string(nil), members...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	for i, id := range order {
		successor := order[(i+1)%len(order)]
		visibility[id] = append(visibility[id], KnownPlayer{PlayerID: successor, Label: LabelSuccessor})
	}
}

func applyMerlinSight(visibility map[string]VisibilitySet, merlinID string, seating []string, assignments map[string]RoleAssignment, cfg RoleConfig, evilIDs, goodIDs []string, rng *rand.Rand) error {
	visible := excludeRole(evilIDs, assignments, RoleMordred)

	if cfg.SplitIntel == SplitIntelMerlin {
		entries, err := splitIntelEntries(visible, goodIDs, []string{merlinID}, rng)
		if err != nil {
			return err
		}
		visibility[merlinID] = append(visibility[merlinID], entries...)
		return nil
	}

	entries := make([]KnownPlayer, 0, len(visible)+1)
	for _, id := range visible {
		entries = append(entries, KnownPlayer{PlayerID: id, Label: LabelEvil})
	}
	if cfg.Decoy {
		pool := excludeAll(goodIDs, []string{merlinID})
		if len(pool) == 0 {
			return errors.New("decoy mode needs a good player besides merlin")
		}
		decoyID := pool[rng.Intn(len(pool))]
		entries = append(entries, KnownPlayer{PlayerID: decoyID, Label: LabelEvil})
	}
	// Shuffled so the decoy cannot be spotted by position.
	rng.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	visibility[merlinID] = append(visibility[merlinID], entries...)
	return nil
}

func applyOberonSight(visibility map[string]VisibilitySet, oberonID string, assignments map[string]RoleAssignment, cfg RoleConfig, ringEvil, goodIDs []string, rng *rand.Rand) error {
	if cfg.SplitIntel == SplitIntelOberon {
		entries, err := splitIntelEntries(ringEvil, goodIDs, nil, rng)
		if err != nil {
			return err
		}
		visibility[oberonID] = append(visibility[oberonID], entries...)
		return nil
	}
	if cfg.OberonMode == OberonChaos {
		for _, id := range ringEvil {
			visibility[oberonID] = append(visibility[oberonID], KnownPlayer{PlayerID: id, Label: LabelEvil})
		}
	}
	return nil
}

// splitIntelEntries partitions a set of evil players into a certain-evil
// subgroup and a mixed pair holding exactly one evil and one good player.
func splitIntelEntries(visibleEvil, goodIDs, excludedGood []string, rng *rand.Rand) ([]KnownPlayer, error) {
	if len(visibleEvil) == 0 {
		return nil, errors.New("split intel needs at least one visible evil player")
	}
	goodPool := excludeAll(goodIDs, excludedGood)
	if len(goodPool) == 0 {
		return nil, errors.New("split intel needs an eligible good player")
	}

	mixedEvil := visibleEvil[rng.Intn(len(visibleEvil))]
	mixedGood := goodPool[rng.Intn(len(goodPool))]

	entries := make([]KnownPlayer, 0, len(visibleEvil)+1)
	for _, id := range visibleEvil {
		if id == mixedEvil {
			continue
		}
		entries = append(entries, KnownPlayer{PlayerID: id, Label: LabelCertainEvil})
	}
	mixed := []string{mixedEvil, mixedGood}
	rng.Shuffle(len(mixed), func(i, j int) { mixed[i], mixed[j] = mixed[j], mixed[i] })
	for _, id := range mixed {
		entries = append(entries, KnownPlayer{PlayerID: id, Label: LabelMixed})
	}
	return entries, nil
}

func playersByAlignment(seating []string, assignments map[string]RoleAssignment, alignment Alignment) []string {
	ids := make([]string, 0, len(seating))
	for _, id := range seating {
		if assignments[id].Alignment == alignment {
			ids = append(ids, id)
		}
	}
	return ids
}

func findRole(seating []string, assignments map[string]RoleAssignment, role Role) (string, bool) {
	for _, id := range seating {
		if assignments[id].Role == role {
			return id, true
		}
	}
	return "", false
}

func excludeRole(ids []string, assignments map[string]RoleAssignment, role Role) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if assignments[id].Role == role {
			continue
		}
		out = append(out, id)
	}
	return out
}

func excludeAll(ids, excluded []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		skip := false
		for _, ex := range excluded {
			if id == ex {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, id)
		}
	}
	return out
}
