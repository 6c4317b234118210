// Package roster holds the league's roster rules. Each rule runs against a
// fresh sheet snapshot both when a request is made and when it is approved.
package roster

import (
	"errors"
	"fmt"

	"github.com/qrls/qrls-bot/internal/models"
)

// RuleError is a rejected roster move with a message fit for the requester
type RuleError struct {
	Code    error
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func (e *RuleError) Unwrap() error {
	return e.Code
}

var (
	ErrNotInSheet     = errors.New("member not in sheet")
	ErrNoTeam         = errors.New("no team")
	ErrNotFreeAgent   = errors.New("not a free agent")
	ErrRosterFull     = errors.New("roster full")
	ErrNotOnTeam      = errors.New("not on team")
	ErrNotCaptain     = errors.New("not a captain")
	ErrSameTeam       = errors.New("same team")
	ErrIneligible     = errors.New("ineligible player")
	ErrNoCaptain      = errors.New("no opposing captain")
	ErrNotOnWaivers   = errors.New("not on waivers")
	ErrTradeChanged   = errors.New("trade no longer valid")
	ErrAlreadyRetired = errors.New("already retired")
	ErrUnranked       = errors.New("team missing from waiver order")
)

func reject(code error, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// captainTeam resolves the requesting captain's sheet row and real team
func captainTeam(r *models.Roster, captainID string) (*models.Member, error) {
	captain, ok := r.Find(captainID)
	if !ok {
		return nil, reject(ErrNotInSheet, "❌ Your Discord ID was not found in the sheet.")
	}
	if !models.IsRealTeam(captain.Team) {
		return nil, reject(ErrNoTeam, "❌ You are not on a team in the sheet (found **%s**).", displayTeam(captain.Team))
	}
	return captain, nil
}

func findPlayer(r *models.Roster, playerID string) (*models.Member, error) {
	player, ok := r.Find(playerID)
	if !ok {
		return nil, reject(ErrNotInSheet, "❌ <@%s> was not found in the sheet.", playerID)
	}
	return player, nil
}

func displayTeam(team string) string {
	if team == "" {
		return "blank"
	}
	return team
}

// AddRequest is a validated /add
type AddRequest struct {
	Captain *models.Member
	Player  *models.Member
	Team    string
}

// ValidateAdd checks that a captain can sign a free agent onto their team.
func ValidateAdd(r *models.Roster, captainID, playerID string) (*AddRequest, error) {
	captain, err := captainTeam(r, captainID)
	if err != nil {
		return nil, err
	}
	player, err := findPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	if !player.IsFreeAgent() {
		return nil, reject(ErrNotFreeAgent, "❌ <@%s> is not a Free Agent (currently **%s**).", playerID, displayTeam(player.Team))
	}
	if count := r.TeamCount(captain.Team); count >= models.MaxRosterSize {
		return nil, reject(ErrRosterFull, "❌ **%s** already has %d players (max %d).", captain.Team, count, models.MaxRosterSize)
	}
	return &AddRequest{Captain: captain, Player: player, Team: captain.Team}, nil
}

// ValidateAddStillValid re-checks an approved /add against the current sheet.
func ValidateAddStillValid(r *models.Roster, playerID, team string) (*models.Member, error) {
	player, err := findPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	if !player.IsFreeAgent() {
		return nil, reject(ErrNotFreeAgent, "❌ <@%s> is no longer a Free Agent (now **%s**).", playerID, displayTeam(player.Team))
	}
	if count := r.TeamCount(team); count >= models.MaxRosterSize {
		return nil, reject(ErrRosterFull, "❌ **%s** is now full (%d/%d).", team, count, models.MaxRosterSize)
	}
	return player, nil
}

// DropRequest is a validated /drop
type DropRequest struct {
	Captain *models.Member
	Player  *models.Member
	Team    string
}

// ValidateDrop checks that the player is on the captain's team.
func ValidateDrop(r *models.Roster, captainID, playerID string) (*DropRequest, error) {
	captain, err := captainTeam(r, captainID)
	if err != nil {
		return nil, err
	}
	player, err := findPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	if !models.SameTeam(player.Team, captain.Team) {
		return nil, reject(ErrNotOnTeam, "❌ <@%s> is not on **%s** (sheet says **%s**).", playerID, captain.Team, displayTeam(player.Team))
	}
	return &DropRequest{Captain: captain, Player: player, Team: captain.Team}, nil
}

// ValidateDropStillValid re-checks an approved /drop.
func ValidateDropStillValid(r *models.Roster, playerID, team string) (*models.Member, error) {
	player, err := findPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	if !models.SameTeam(player.Team, team) {
		return nil, reject(ErrNotOnTeam, "❌ <@%s> is no longer on **%s** (now **%s**).", playerID, team, displayTeam(player.Team))
	}
	return player, nil
}

// TradeRequest is a validated /trade
type TradeRequest struct {
	Requester       *models.Member
	Player1         *models.Member
	Player2         *models.Member
	Team1           string
	Team2           string
	OpposingCaptain *models.Member
}

// ValidateTrade checks a one-for-one trade proposed by a sheet captain.
func ValidateTrade(r *models.Roster, requesterID, player1ID, player2ID string) (*TradeRequest, error) {
	requester, ok := r.Find(requesterID)
	if !ok {
		return nil, reject(ErrNotInSheet, "❌ Your Discord ID was not found in the sheet.")
	}
	if !requester.Captain {
		return nil, reject(ErrNotCaptain, "🚫 Only team captains (Captain = TRUE in the sheet) can propose trades.")
	}
	p1, err := findPlayer(r, player1ID)
	if err != nil {
		return nil, err
	}
	p2, err := findPlayer(r, player2ID)
	if err != nil {
		return nil, err
	}
	for _, p := range []*models.Member{p1, p2} {
		if !models.IsRealTeam(p.Team) {
			return nil, reject(ErrIneligible, "❌ <@%s> is **%s** and cannot be traded.", p.DiscordID, displayTeam(p.Team))
		}
	}
	if !models.SameTeam(p1.Team, requester.Team) {
		return nil, reject(ErrNotOnTeam, "❌ <@%s> is not on your team (**%s**).", player1ID, displayTeam(requester.Team))
	}
	if models.SameTeam(p1.Team, p2.Team) {
		return nil, reject(ErrSameTeam, "❌ Both players are on **%s**.", p1.Team)
	}
	opposing, ok := r.CaptainOf(p2.Team)
	if !ok {
		return nil, reject(ErrNoCaptain, "❌ No captain found for **%s** in the sheet.", p2.Team)
	}
	return &TradeRequest{
		Requester:       requester,
		Player1:         p1,
		Player2:         p2,
		Team1:           p1.Team,
		Team2:           p2.Team,
		OpposingCaptain: opposing,
	}, nil
}

// ValidateTradeStillValid returns both players' current rows if neither has
// moved since the trade was proposed.
func ValidateTradeStillValid(r *models.Roster, player1ID, player2ID, team1, team2 string) (*models.Member, *models.Member, error) {
	p1, err := findPlayer(r, player1ID)
	if err != nil {
		return nil, nil, err
	}
	p2, err := findPlayer(r, player2ID)
	if err != nil {
		return nil, nil, err
	}
	if !models.SameTeam(p1.Team, team1) || !models.SameTeam(p2.Team, team2) {
		return nil, nil, reject(ErrTradeChanged,
			"❌ Trade no longer valid: <@%s> is on **%s** (expected **%s**), <@%s> is on **%s** (expected **%s**).",
			player1ID, displayTeam(p1.Team), team1, player2ID, displayTeam(p2.Team), team2)
	}
	return p1, p2, nil
}

// SubRequest is a validated /sub
type SubRequest struct {
	Captain *models.Member
	Player  *models.Member
	Team    string
}

// ValidateSub checks that a captain can borrow a free agent for the week.
func ValidateSub(r *models.Roster, captainID, playerID string) (*SubRequest, error) {
	captain, err := captainTeam(r, captainID)
	if err != nil {
		return nil, err
	}
	player, err := findPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	if !player.IsFreeAgent() {
		return nil, reject(ErrNotFreeAgent, "❌ <@%s> is not a Free Agent (currently **%s**).", playerID, displayTeam(player.Team))
	}
	return &SubRequest{Captain: captain, Player: player, Team: captain.Team}, nil
}

// ValidateClaim checks that a captain's team may claim a player on waivers.
// It returns the claimant's team.
func ValidateClaim(r *models.Roster, claimantID, playerID string) (string, error) {
	player, err := findPlayer(r, playerID)
	if err != nil {
		return "", err
	}
	if !player.IsOnWaivers() {
		return "", reject(ErrNotOnWaivers, "❌ <@%s> is not on Waivers in the sheet (currently **%s**).", playerID, displayTeam(player.Team))
	}
	claimant, err := captainTeam(r, claimantID)
	if err != nil {
		return "", err
	}
	return claimant.Team, nil
}

// RankLookup resolves a team's waiver priority
type RankLookup interface {
	Rank(team string) (int, bool)
}

// ClaimRank returns team's waiver priority. A team missing from the order
// cannot claim.
func ClaimRank(order RankLookup, team string) (int, error) {
	rank, ok := order.Rank(team)
	if !ok {
		return 0, reject(ErrUnranked, "❌ Your team (**%s**) was not found in the waiver order sheet.", team)
	}
	return rank, nil
}

// ValidateAward checks a winning claim can still be applied.
func ValidateAward(r *models.Roster, playerID, team string) (*models.Member, error) {
	player, err := findPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	if !player.IsOnWaivers() {
		return nil, reject(ErrNotOnWaivers, "❌ <@%s> is no longer on Waivers (now **%s**).", playerID, displayTeam(player.Team))
	}
	if count := r.TeamCount(team); count >= models.MaxRosterSize {
		return nil, reject(ErrRosterFull, "❌ **%s** is full (%d/%d). The captain must /drop a player before the claim can be approved.", team, count, models.MaxRosterSize)
	}
	return player, nil
}

// ValidateRetire checks a player can be retired.
func ValidateRetire(r *models.Roster, playerID string) (*models.Member, error) {
	player, err := findPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	if player.IsRetired() {
		return nil, reject(ErrAlreadyRetired, "ℹ️ <@%s> is already Retired.", playerID)
	}
	return player, nil
}
