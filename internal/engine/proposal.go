package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotLeader     = errors.New("only the current leader may propose a team")
	ErrWrongPhase    = errors.New("action not allowed in the current phase")
	ErrDuplicateVote = errors.New("vote already submitted")
)

// ValidateProposal checks a team proposal against the quest-size rules before
// any state is touched.
func ValidateProposal(team []string, questNumber int, leaderID string, g *Game) error {
	if g.Phase != PhaseTeamBuilding {
		return ErrWrongPhase
	}
	if leaderID != g.LeaderID {
		return ErrNotLeader
	}
	if questNumber != g.QuestNumber {
		return fmt.Errorf("proposal is for quest %d, current quest is %d", questNumber, g.QuestNumber)
	}
	required, err := QuestTeamSize(len(g.Seating), questNumber)
	if err != nil {
		return err
	}
	if len(team) != required {
		return fmt.Errorf("team size %d, quest %d needs exactly %d", len(team), questNumber, required)
	}
	seen := make(map[string]struct{}, len(team))
	for _, id := range team {
		if !g.Seated(id) {
			return fmt.Errorf("player %s is not seated in this game", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("player %s listed twice on the team", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// NewProposal builds the next proposal for the current quest. Proposal
// numbers are sequential within a quest, starting at 1.
func NewProposal(team []string, g *Game) Proposal {
	return Proposal{
		QuestNumber: g.QuestNumber,
		Number:      g.ProposalCount(g.QuestNumber) + 1,
		LeaderID:    g.LeaderID,
		Team:        append([]string(nil), team...),
		Status:      ProposalPending,
		Votes:       make(map[string]VoteChoice),
	}
}

type VoteOutcome struct {
	Approved bool
	Rejected bool
}

// ResolveVotes tallies a completed vote. Approval needs strictly more
// approvals than rejections; a tie rejects. A short tally is an error, never
// a silent resolution.
func ResolveVotes(approveCount, rejectCount, totalPlayers int) (VoteOutcome, error) {
	if approveCount < 0 || rejectCount < 0 {
		return VoteOutcome{}, errors.New("negative vote count")
	}
	if approveCount+rejectCount != totalPlayers {
		return VoteOutcome{}, fmt.Errorf("vote tally has %d votes for %d players", approveCount+rejectCount, totalPlayers)
	}
	if approveCount > rejectCount {
		return VoteOutcome{Approved: true}, nil
	}
	return VoteOutcome{Rejected: true}, nil
}

// RecordVote stores one player's vote on the pending proposal, rejecting
// duplicates.
func RecordVote(g *Game, playerID string, choice VoteChoice) error {
	if g.Phase != PhaseVoting {
		return ErrWrongPhase
	}
	if !choice.Valid() {
		return fmt.Errorf("unknown vote choice %q", choice)
	}
	if !g.Seated(playerID) {
		return fmt.Errorf("player %s is not seated in this game", playerID)
	}
	proposal := g.CurrentProposal()
	if proposal == nil || proposal.Status != ProposalPending {
		return errors.New("no pending proposal")
	}
	if _, voted := proposal.Votes[playerID]; voted {
		return ErrDuplicateVote
	}
	proposal.Votes[playerID] = choice
	return nil
}

// TallyVotes counts the pending proposal's votes.
func TallyVotes(proposal *Proposal) (approve, reject int) {
	for _, choice := range proposal.Votes {
		switch choice {
		case VoteApprove:
			approve++
		case VoteReject:
			reject++
		}
	}
	return approve, reject
}
