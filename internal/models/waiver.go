package models

import (
	"time"
)

// WaiverWindow is how long a dropped player sits on waivers.
const WaiverWindow = 48 * time.Hour

// ClaimPromptTimeout is how long a claimant has to answer the expiry prompt.
const ClaimPromptTimeout = 30 * time.Minute

// MissingRank is used for a claim whose team has no waiver order entry.
const MissingRank = 9999

// ClaimStatus tracks a claimant's answer once the waiver window closes
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = ""
	ClaimPrompted  ClaimStatus = "prompted"
	ClaimConfirmed ClaimStatus = "confirmed"
	ClaimDeclined  ClaimStatus = "declined"
)

// Claim is a team's bid for a player on waivers
type Claim struct {
	TeamName          string      `json:"team_name"`
	TeamRank          int         `json:"team_rank"`
	ClaimedByID       string      `json:"claimed_by_id"`
	ClaimedAt         time.Time   `json:"claimed_at"`
	OriginChannelID   string      `json:"origin_channel_id"`
	Status            ClaimStatus `json:"status"`
	PromptedAt        *time.Time  `json:"prompted_at,omitempty"`
	ConfirmedAt       *time.Time  `json:"confirmed_at,omitempty"`
	ApprovalRequested bool        `json:"approval_requested"`
}

// EffectiveRank treats an unranked claim as the lowest priority.
func (c *Claim) EffectiveRank() int {
	if c == nil || c.TeamRank <= 0 {
		return MissingRank
	}
	return c.TeamRank
}

// Outranks reports whether c has strictly better priority than other.
// Rank 1 is the highest priority.
func (c *Claim) Outranks(other *Claim) bool {
	return c.EffectiveRank() < other.EffectiveRank()
}

// Waiver is a dropped player's waiver window
type Waiver struct {
	GuildID      string    `json:"guild_id"`
	PlayerID     string    `json:"player_id"`
	RequestedAt  time.Time `json:"requested_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	OriginalTeam string    `json:"original_team"`
	DroppedByID  string    `json:"dropped_by_id"`
	Claim        *Claim    `json:"claim"`
}

// IsExpired checks if the waiver period has ended at now
func (w *Waiver) IsExpired(now time.Time) bool {
	return !now.Before(w.ExpiresAt)
}

func (w *Waiver) HasClaim() bool {
	return w.Claim != nil
}
