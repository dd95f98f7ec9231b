package engine

import "time"

type Alignment string

const (
	AlignmentGood Alignment = "good"
	AlignmentEvil Alignment = "evil"
)

type Role string

const (
	RoleMerlin   Role = "merlin"
	RolePercival Role = "percival"
	RoleServant  Role = "servant"
	RoleMorgana  Role = "morgana"
	RoleMordred  Role = "mordred"
	RoleOberon   Role = "oberon"
	RoleAssassin Role = "assassin"
	RoleLunatic  Role = "lunatic"
	RoleBrute    Role = "brute"
	RoleMinion   Role = "minion"
)

type OberonMode string

const (
	OberonStandard OberonMode = "standard"
	OberonChaos    OberonMode = "chaos"
)

type SplitIntel string

const (
	SplitIntelNone   SplitIntel = "none"
	SplitIntelMerlin SplitIntel = "merlin"
	SplitIntelOberon SplitIntel = "oberon"
)

type Phase string

const (
	PhaseTeamBuilding Phase = "team_building"
	PhaseVoting       Phase = "voting"
	PhaseQuest        Phase = "quest"
	PhaseQuestResult  Phase = "quest_result"
	PhaseLadyOfLake   Phase = "lady_of_lake"
	PhaseAssassin     Phase = "assassin"
	PhaseParallelQuiz Phase = "parallel_quiz"
	PhaseGameOver     Phase = "game_over"
)

type Winner string

const (
	WinnerNone Winner = ""
	WinnerGood Winner = "good"
	WinnerEvil Winner = "evil"
)

type WinReason string

const (
	ReasonFiveRejections      WinReason = "5_rejections"
	ReasonThreeSuccesses      WinReason = "3_quest_successes"
	ReasonThreeFailures       WinReason = "3_quest_failures"
	ReasonAssassinFoundMerlin WinReason = "assassin_found_merlin"
	ReasonMerlinSurvived      WinReason = "merlin_survived"
)

type QuestChoice string

const (
	ChoiceSuccess QuestChoice = "success"
	ChoiceFail    QuestChoice = "fail"
)

type QuestOutcome string

const (
	QuestSucceeded QuestOutcome = "success"
	QuestFailed    QuestOutcome = "fail"
)

type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

// RoleConfig selects the optional roles and visibility variants for one game.
type RoleConfig struct {
	Merlin       bool       `json:"merlin"`
	Assassin     bool       `json:"assassin"`
	Percival     bool       `json:"percival"`
	Morgana      bool       `json:"morgana"`
	Mordred      bool       `json:"mordred"`
	Oberon       bool       `json:"oberon"`
	OberonMode   OberonMode `json:"oberon_mode,omitempty"`
	Lunatic      bool       `json:"lunatic"`
	Brute        bool       `json:"brute"`
	LadyOfLake   bool       `json:"lady_of_lake"`
	Decoy        bool       `json:"decoy"`
	SplitIntel   SplitIntel `json:"split_intel,omitempty"`
	Ring         bool       `json:"ring"`
	ParallelQuiz bool       `json:"parallel_quiz"`
}

type RoleAssignment struct {
	Alignment Alignment `json:"alignment"`
	Role      Role      `json:"role"`
}

// KnownPlayer is one entry of a player's visibility set: another player's
// identity plus the label under which it is revealed.
type KnownPlayer struct {
	PlayerID string `json:"player_id"`
	Label    string `json:"label"`
}

const (
	LabelEvil        = "evil"
	LabelMagicSource = "merlin_or_morgana"
	LabelCertainEvil = "certain_evil"
	LabelMixed       = "mixed"
	LabelSuccessor   = "evil_successor"
)

type VisibilitySet []KnownPlayer

type Proposal struct {
	QuestNumber int                   `json:"quest_number"`
	Number      int                   `json:"number"`
	LeaderID    string                `json:"leader_id"`
	Team        []string              `json:"team"`
	Status      ProposalStatus        `json:"status"`
	Votes       map[string]VoteChoice `json:"votes"`
}

type QuestSubmission struct {
	PlayerID string      `json:"player_id"`
	Choice   QuestChoice `json:"choice"`
}

type QuestRecord struct {
	Number  int          `json:"number"`
	Outcome QuestOutcome `json:"outcome"`
	Tally   QuestTally   `json:"tally"`
}

type Investigation struct {
	QuestNumber    int       `json:"quest_number"`
	InvestigatorID string    `json:"investigator_id"`
	TargetID       string    `json:"target_id"`
	Result         Alignment `json:"result"`
}

type QuizVote struct {
	VoterID     string    `json:"voter_id"`
	SuspectID   string    `json:"suspect_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Game is the explicit state object every evaluator operates on. The engine
// never stores or locks it; the caller owns atomic commit of any mutation.
type Game struct {
	Seating           []string                  `json:"seating"`
	Config            RoleConfig                `json:"config"`
	Assignments       map[string]RoleAssignment `json:"assignments"`
	Visibility        map[string]VisibilitySet  `json:"visibility"`
	Phase             Phase                     `json:"phase"`
	QuestNumber       int                       `json:"quest_number"`
	LeaderID          string                    `json:"leader_id"`
	VoteTrack         int                       `json:"vote_track"`
	Proposals         []Proposal                `json:"proposals"`
	Actions           []QuestSubmission         `json:"actions"`
	History           []QuestRecord             `json:"history"`
	LadyHolder        string                    `json:"lady_holder,omitempty"`
	PriorHolders      []string                  `json:"prior_holders,omitempty"`
	Investigations    []Investigation           `json:"investigations,omitempty"`
	Outcome           Winner                    `json:"outcome,omitempty"`
	AssassinGuess     string                    `json:"assassin_guess,omitempty"`
	AssassinSubmitted bool                      `json:"assassin_submitted"`
	QuizVotes         []QuizVote                `json:"quiz_votes,omitempty"`
	QuizStartedAt     *time.Time                `json:"quiz_started_at,omitempty"`
	Winner            Winner                    `json:"winner,omitempty"`
	WinReason         WinReason                 `json:"win_reason,omitempty"`
}

func (a Alignment) Valid() bool {
	switch a {
	case AlignmentGood, AlignmentEvil:
		return true
	}
	return false
}

func (c QuestChoice) Valid() bool {
	switch c {
	case ChoiceSuccess, ChoiceFail:
		return true
	}
	return false
}

func (v VoteChoice) Valid() bool {
	switch v {
	case VoteApprove, VoteReject:
		return true
	}
	return false
}

// RoleAlignment is the alignment a special role always carries.
func RoleAlignment(role Role) Alignment {
	switch role {
	case RoleMerlin, RolePercival, RoleServant:
		return AlignmentGood
	case RoleMorgana, RoleMordred, RoleOberon, RoleAssassin, RoleLunatic, RoleBrute, RoleMinion:
		return AlignmentEvil
	}
	return ""
}

// Seated reports whether id appears in the seating order.
func (g *Game) Seated(id string) bool {
	for _, seat := range g.Seating {
		if seat == id {
			return true
		}
	}
	return false
}

// NextLeader returns the seat after current in rotation order.
func NextLeader(seating []string, current string) string {
	for i, seat := range seating {
		if seat == current {
			return seating[(i+1)%len(seating)]
		}
	}
	if len(seating) > 0 {
		return seating[0]
	}
	return ""
}

// CurrentProposal returns the newest proposal, which is the only one that can
// still collect votes.
func (g *Game) CurrentProposal() *Proposal {
	if len(g.Proposals) == 0 {
		return nil
	}
	return &g.Proposals[len(g.Proposals)-1]
}

// ProposalCount counts prior proposals for a quest, which fixes the next
// sequential proposal number.
func (g *Game) ProposalCount(questNumber int) int {
	count := 0
	for _, proposal := range g.Proposals {
		if proposal.QuestNumber == questNumber {
			count++
		}
	}
	return count
}

// FindRole returns the player holding a unique special role, if assigned.
func (g *Game) FindRole(role Role) (string, bool) {
	for _, id := range g.Seating {
		if g.Assignments[id].Role == role {
			return id, true
		}
	}
	return "", false
}
