package engine

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrDuplicateAction = errors.New("quest action already submitted")

// lateQuestStart is the first quest the brute may no longer fail.
const lateQuestStart = 4

// ValidateQuestAction enforces the alignment rule and the per-role
// quest-number constraints. Violations are rejected before persistence,
// never coerced into a different action.
func ValidateQuestAction(role Role, alignment Alignment, questNumber int, choice QuestChoice) error {
	if !choice.Valid() {
		return fmt.Errorf("unknown quest action %q", choice)
	}
	if alignment == AlignmentGood && choice == ChoiceFail {
		return errors.New("good players may only submit success")
	}
	switch role {
	case RoleLunatic:
		if choice == ChoiceSuccess {
			return errors.New("the lunatic must fail every quest")
		}
	case RoleBrute:
		if choice == ChoiceFail && questNumber >= lateQuestStart {
			return fmt.Errorf("the brute may not fail quest %d", questNumber)
		}
	}
	return nil
}

// RecordQuestAction stores one team member's action for the current quest,
// rejecting duplicates and non-members.
func RecordQuestAction(g *Game, playerID string, choice QuestChoice) error {
	if g.Phase != PhaseQuest {
		return ErrWrongPhase
	}
	proposal := g.CurrentProposal()
	if proposal == nil || proposal.Status != ProposalApproved {
		return errors.New("no approved team for this quest")
	}
	onTeam := false
	for _, id := range proposal.Team {
		if id == playerID {
			onTeam = true
			break
		}
	}
	if !onTeam {
		return fmt.Errorf("player %s is not on the approved team", playerID)
	}
	for _, action := range g.Actions {
		if action.PlayerID == playerID {
			return ErrDuplicateAction
		}
	}
	assignment := g.Assignments[playerID]
	if err := ValidateQuestAction(assignment.Role, assignment.Alignment, g.QuestNumber, choice); err != nil {
		return err
	}
	g.Actions = append(g.Actions, QuestSubmission{PlayerID: playerID, Choice: choice})
	return nil
}

type QuestTally struct {
	SuccessCount int           `json:"success_count"`
	FailCount    int           `json:"fail_count"`
	Outcome      QuestOutcome  `json:"outcome"`
	Display      []QuestChoice `json:"display"`
}

// ResolveQuest tallies the submitted actions against the fail threshold. The
// display list is shuffled so its ordering never reveals who played what.
func ResolveQuest(actions []QuestChoice, failThreshold int, rng *rand.Rand) QuestTally {
	tally := QuestTally{Display: make([]QuestChoice, 0, len(actions))}
	for _, choice := range actions {
		switch choice {
		case ChoiceFail:
			tally.FailCount++
		default:
			tally.SuccessCount++
		}
		tally.Display = append(tally.Display, choice)
	}
	rng.Shuffle(len(tally.Display), func(i, j int) {
		tally.Display[i], tally.Display[j] = tally.Display[j], tally.Display[i]
	})
	if tally.FailCount >= failThreshold {
		tally.Outcome = QuestFailed
	} else {
		tally.Outcome = QuestSucceeded
	}
	return tally
}
