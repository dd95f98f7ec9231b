package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID          uint           `gorm:"primaryKey"`
	JoinCode    string         `gorm:"size:12;uniqueIndex;not null"`
	Phase       string         `gorm:"size:32;not null"`
	QuestNumber int            `gorm:"not null;default:0"`
	LeaderKey   string         `gorm:"size:32"`
	VoteTrack   int            `gorm:"not null;default:0"`
	Winner      string         `gorm:"size:8"`
	WinReason   string         `gorm:"size:32"`
	Config      datatypes.JSON `gorm:"type:jsonb"`
	State       datatypes.JSON `gorm:"type:jsonb"`
	Version     int            `gorm:"not null;default:0"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
	Players     []Player
	Proposals   []Proposal
	Events      []Event
}

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_players_game_key"`
	PlayerKey string    `gorm:"size:32;not null;uniqueIndex:idx_players_game_key"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_name"`
	AuthToken string    `gorm:"size:36;not null;default:''"`
	Seat      int       `gorm:"not null"`
	IsHost    bool      `gorm:"not null;default:false"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RoleAssignment struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_assignments_game_player"`
	PlayerID  uint      `gorm:"not null;uniqueIndex:idx_assignments_game_player"`
	Alignment string    `gorm:"size:8;not null"`
	Role      string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Proposal struct {
	ID          uint           `gorm:"primaryKey"`
	GameID      uint           `gorm:"index;not null;uniqueIndex:idx_proposals_game_quest_number"`
	QuestNumber int            `gorm:"not null;uniqueIndex:idx_proposals_game_quest_number"`
	Number      int            `gorm:"not null;uniqueIndex:idx_proposals_game_quest_number"`
	LeaderKey   string         `gorm:"size:32;not null"`
	Team        datatypes.JSON `gorm:"type:jsonb;not null"`
	Status      string         `gorm:"size:16;not null"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
	Votes       []Vote
}

type Vote struct {
	ID         uint      `gorm:"primaryKey"`
	ProposalID uint      `gorm:"index;not null;uniqueIndex:idx_votes_proposal_player"`
	PlayerID   uint      `gorm:"not null;uniqueIndex:idx_votes_proposal_player"`
	Choice     string    `gorm:"size:8;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type QuestAction struct {
	ID          uint      `gorm:"primaryKey"`
	GameID      uint      `gorm:"index;not null;uniqueIndex:idx_quest_actions_game_quest_player"`
	QuestNumber int       `gorm:"not null;uniqueIndex:idx_quest_actions_game_quest_player"`
	PlayerID    uint      `gorm:"not null;uniqueIndex:idx_quest_actions_game_quest_player"`
	Choice      string    `gorm:"size:8;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Investigation struct {
	ID             uint      `gorm:"primaryKey"`
	GameID         uint      `gorm:"index;not null;uniqueIndex:idx_investigations_game_target"`
	QuestNumber    int       `gorm:"not null"`
	InvestigatorID uint      `gorm:"not null"`
	TargetID       uint      `gorm:"not null;uniqueIndex:idx_investigations_game_target"`
	Result         string    `gorm:"size:8;not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

type QuizVote struct {
	ID          uint      `gorm:"primaryKey"`
	GameID      uint      `gorm:"index;not null;uniqueIndex:idx_quiz_votes_game_voter"`
	VoterID     uint      `gorm:"not null;uniqueIndex:idx_quiz_votes_game_voter"`
	SuspectID   *uint     `gorm:"index"`
	SubmittedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uint           `gorm:"index;not null"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
