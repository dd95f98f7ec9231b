package engine

import (
	"errors"
	"fmt"
)

// Lady of the Lake investigations trigger only after quests 2, 3 and 4.
func LadyTriggersAfter(questNumber int) bool {
	return questNumber >= 2 && questNumber <= 4
}

// ValidateInvestigationTarget rejects targets that are the current holder, a
// prior holder, already investigated, or not seated at all.
func ValidateInvestigationTarget(target, holder string, investigated, priorHolders, seating []string) error {
	if target == "" {
		return errors.New("investigation target is required")
	}
	seated := false
	for _, id := range seating {
		if id == target {
			seated = true
			break
		}
	}
	if !seated {
		return fmt.Errorf("player %s is not seated in this game", target)
	}
	if target == holder {
		return errors.New("the holder cannot investigate themselves")
	}
	for _, id := range priorHolders {
		if id == target {
			return fmt.Errorf("player %s has already held the lady of the lake", target)
		}
	}
	for _, id := range investigated {
		if id == target {
			return fmt.Errorf("player %s has already been investigated", target)
		}
	}
	return nil
}

// InvestigationCandidates lists every seated player the holder may still
// investigate. An empty list means the phase is skipped for this quest.
func InvestigationCandidates(holder string, investigated, priorHolders, seating []string) []string {
	candidates := make([]string, 0, len(seating))
	for _, id := range seating {
		if ValidateInvestigationTarget(id, holder, investigated, priorHolders, seating) == nil {
			candidates = append(candidates, id)
		}
	}
	return candidates
}

// Investigate records one use of the lady of the lake: the result is the
// target's alignment only, never the special role, and the token transfers
// to the target.
func Investigate(g *Game, investigatorID, targetID string) (Investigation, error) {
	if g.Phase != PhaseLadyOfLake {
		return Investigation{}, ErrWrongPhase
	}
	if investigatorID != g.LadyHolder {
		return Investigation{}, fmt.Errorf("player %s does not hold the lady of the lake", investigatorID)
	}
	investigatedIDs := make([]string, 0, len(g.Investigations))
	for _, past := range g.Investigations {
		investigatedIDs = append(investigatedIDs, past.TargetID)
	}
	if err := ValidateInvestigationTarget(targetID, g.LadyHolder, investigatedIDs, g.PriorHolders, g.Seating); err != nil {
		return Investigation{}, err
	}
	record := Investigation{
		QuestNumber:    g.QuestNumber,
		InvestigatorID: investigatorID,
		TargetID:       targetID,
		Result:         g.Assignments[targetID].Alignment,
	}
	g.Investigations = append(g.Investigations, record)
	g.PriorHolders = append(g.PriorHolders, g.LadyHolder)
	g.LadyHolder = targetID
	return record, nil
}
