package engine

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrDecoyWithSplitIntel = errors.New("decoy mode and split intel are mutually exclusive")
	ErrRingWithSplitIntel  = errors.New("ring mode and split intel cannot be combined")
)

// AssignRoles partitions the seating order into good and evil, fills the
// enabled special roles by sampling without replacement, and resolves every
// player's visibility set. The rand source is injected so assignments are
// reproducible under a fixed seed.
func AssignRoles(seating []string, cfg RoleConfig, rng *rand.Rand) (map[string]RoleAssignment, map[string]VisibilitySet, error) {
	if err := validateSeating(seating); err != nil {
		return nil, nil, err
	}
	if err := ValidateConfig(len(seating), cfg); err != nil {
		return nil, nil, err
	}

	goodCount, evilCount, err := AlignmentCounts(len(seating))
	if err != nil {
		return nil, nil, err
	}

	goodRoles := goodSpecialRoles(cfg)
	evilRoles := evilSpecialRoles(cfg)
	if len(goodRoles) > goodCount {
		return nil, nil, fmt.Errorf("role slots do not balance: %d good special roles for %d good players", len(goodRoles), goodCount)
	}
	if len(evilRoles) > evilCount {
		return nil, nil, fmt.Errorf("role slots do not balance: %d evil special roles for %d evil players", len(evilRoles), evilCount)
	}

	shuffled := append([]string(nil), seating...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	goodPool := shuffled[:goodCount]
	evilPool := shuffled[goodCount:]

	assignments := make(map[string]RoleAssignment, len(seating))
	fillAlignment(assignments, goodPool, goodRoles, RoleServant, AlignmentGood, rng)
	fillAlignment(assignments, evilPool, evilRoles, RoleMinion, AlignmentEvil, rng)

	visibility, err := ResolveVisibility(seating, assignments, cfg, rng)
	if err != nil {
		return nil, nil, err
	}
	return assignments, visibility, nil
}

// ValidateConfig rejects role configurations whose combined flags have no
// defined behavior, before any assignment happens.
func ValidateConfig(playerCount int, cfg RoleConfig) error {
	if cfg.Assassin && !cfg.Merlin {
		return errors.New("assassin requires merlin")
	}
	if cfg.Percival && !cfg.Merlin {
		return errors.New("percival requires merlin")
	}
	if cfg.Morgana && !cfg.Percival {
		return errors.New("morgana requires percival")
	}
	if cfg.Mordred && !cfg.Merlin {
		return errors.New("mordred requires merlin")
	}
	if cfg.Oberon && cfg.OberonMode != OberonStandard && cfg.OberonMode != OberonChaos {
		return fmt.Errorf("unknown oberon mode %q", cfg.OberonMode)
	}
	if cfg.ParallelQuiz && !cfg.Merlin {
		return errors.New("parallel quiz requires merlin")
	}
	switch cfg.SplitIntel {
	case SplitIntelNone, "":
	case SplitIntelMerlin:
		if !cfg.Merlin {
			return errors.New("merlin split intel requires merlin")
		}
	case SplitIntelOberon:
		if !cfg.Oberon {
			return errors.New("oberon split intel requires oberon")
		}
	default:
		return fmt.Errorf("unknown split intel mode %q", cfg.SplitIntel)
	}
	if cfg.Decoy {
		if !cfg.Merlin {
			return errors.New("decoy mode requires merlin")
		}
		if cfg.SplitIntel != SplitIntelNone && cfg.SplitIntel != "" {
			return ErrDecoyWithSplitIntel
		}
	}
	if cfg.Ring {
		if cfg.SplitIntel != SplitIntelNone && cfg.SplitIntel != "" {
			return ErrRingWithSplitIntel
		}
		_, evilCount, err := AlignmentCounts(playerCount)
		if err != nil {
			return err
		}
		ringSize := evilCount
		if cfg.Oberon {
			ringSize--
		}
		if ringSize < 3 {
			return fmt.Errorf("ring mode needs at least 3 non-oberon evil players, have %d", ringSize)
		}
	}
	return nil
}

func validateSeating(seating []string) error {
	if len(seating) < MinPlayers || len(seating) > MaxPlayers {
		return fmt.Errorf("player count %d outside %d-%d", len(seating), MinPlayers, MaxPlayers)
	}
	seen := make(map[string]struct{}, len(seating))
	for _, id := range seating {
		if id == "" {
			return errors.New("empty player identifier in seating order")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate player %s in seating order", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func goodSpecialRoles(cfg RoleConfig) []Role {
	roles := make([]Role, 0, 2)
	if cfg.Merlin {
		roles = append(roles, RoleMerlin)
	}
	if cfg.Percival {
		roles = append(roles, RolePercival)
	}
	return roles
}

func evilSpecialRoles(cfg RoleConfig) []Role {
	roles := make([]Role, 0, 6)
	if cfg.Assassin {
		roles = append(roles, RoleAssassin)
	}
	if cfg.Morgana {
		roles = append(roles, RoleMorgana)
	}
	if cfg.Mordred {
		roles = append(roles, RoleMordred)
	}
	if cfg.Oberon {
		roles = append(roles, RoleOberon)
	}
	if cfg.Lunatic {
		roles = append(roles, RoleLunatic)
	}
	if cfg.Brute {
		roles = append(roles, RoleBrute)
	}
	return roles
}

func fillAlignment(assignments map[string]RoleAssignment, pool []string, specials []Role, filler Role, alignment Alignment, rng *rand.Rand) {
	order := rng.Perm(len(pool))
	for i, poolIndex := range order {
		role := filler
		if i < len(specials) {
			role = specials[i]
		}
		assignments[pool[poolIndex]] = RoleAssignment{Alignment: alignment, Role: role}
	}
}
