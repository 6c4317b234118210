package models

import (
	"time"
)

// SubContract is a temporary team role granted to a free agent
type SubContract struct {
	GuildID   string    `json:"guild_id"`
	PlayerID  string    `json:"player_id"`
	TeamName  string    `json:"team_name"`
	RoleID    string    `json:"role_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Key identifies a sub contract; a player may sub for one team at a time.
func (s *SubContract) Key() string {
	return s.PlayerID + ":" + s.TeamName
}

// Proposal is a pending match time in a scheduling channel
type Proposal struct {
	ProposerID   string    `json:"proposer_id"`
	ProposerName string    `json:"proposer_name"`
	Time         string    `json:"time"`
	ProposedAt   time.Time `json:"proposed_at"`
}

// TransactionType names a completed roster move in the ledger
type TransactionType string

const (
	TxAdd        TransactionType = "ADD"
	TxDrop       TransactionType = "DROP"
	TxTrade      TransactionType = "TRADE"
	TxSub        TransactionType = "SUB"
	TxWaiverWin  TransactionType = "WAIVER_CLAIM"
	TxWaiverFA   TransactionType = "WAIVER_CLEAR"
	TxRetire     TransactionType = "RETIRE"
	TxUnretire   TransactionType = "UNRETIRE"
	TxMove       TransactionType = "MOVE"
	TxUpdateUser TransactionType = "UPDATE_USER"
)

// Transaction is one completed roster move
type Transaction struct {
	ID         string
	Type       TransactionType
	PlayerID   string
	FromTeam   string
	ToTeam     string
	ApprovedBy string
	Timestamp  time.Time
	Detail     string
}
