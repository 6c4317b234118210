package roster

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrls/qrls-bot/internal/models"
)

func league() *models.Roster {
	return models.ParseRoster([][]string{
		{"discord_id", "nickname", "salary", "team", "captain"},
		{"k1", "KingCap", "100", "Kings", "TRUE"},
		{"k2", "King2", "100", "Kings", "FALSE"},
		{"k3", "King3", "100", "Kings", "FALSE"},
		{"a1", "AstroCap", "100", "Astro", "TRUE"},
		{"a2", "Astro2", "100", "Astro", "FALSE"},
		{"a3", "Astro3", "100", "Astro", "FALSE"},
		{"a4", "Astro4", "100", "Astro", "FALSE"},
		{"m1", "ArmadaNoCap", "100", "Armada", "FALSE"},
		{"fa1", "FreeOne", "50", "Free Agent", "FALSE"},
		{"fa2", "FreeTwo", "50", "free agent", "FALSE"},
		{"w1", "Waived", "50", "Waivers", "FALSE"},
		{"r1", "Old", "50", "Retired", "FALSE"},
		{"nt", "NoTeam", "50", "", "TRUE"},
	})
}

func ruleCode(t *testing.T, err error) error {
	t.Helper()
	var re *RuleError
	require.True(t, errors.As(err, &re), "expected RuleError, got %v", err)
	assert.NotEmpty(t, re.Message)
	return re.Code
}

func TestValidateAdd(t *testing.T) {
	r := league()

	req, err := ValidateAdd(r, "k1", "fa1")
	require.NoError(t, err)
	assert.Equal(t, "Kings", req.Team)
	assert.Equal(t, "fa1", req.Player.DiscordID)

	tests := []struct {
		name      string
		captainID string
		playerID  string
		want      error
	}{
		{"captain not in sheet", "zz", "fa1", ErrNotInSheet},
		{"captain has no team", "nt", "fa1", ErrNoTeam},
		{"player not in sheet", "k1", "zz", ErrNotInSheet},
		{"player on a team", "k1", "a2", ErrNotFreeAgent},
		{"player on waivers", "k1", "w1", ErrNotFreeAgent},
		{"roster full", "a1", "fa1", ErrRosterFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateAdd(r, tt.captainID, tt.playerID)
			assert.ErrorIs(t, ruleCode(t, err), tt.want)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateAddStillValid(t *testing.T) {
	r := league()

	_, err := ValidateAddStillValid(r, "fa2", "Kings")
	assert.NoError(t, err, "free agent match ignores case")

	_, err = ValidateAddStillValid(r, "fa1", "Astro")
	assert.ErrorIs(t, err, ErrRosterFull)

	_, err = ValidateAddStillValid(r, "k2", "Kings")
	assert.ErrorIs(t, err, ErrNotFreeAgent)
}

func TestValidateDrop(t *testing.T) {
	r := league()

	req, err := ValidateDrop(r, "k1", "k2")
	require.NoError(t, err)
	assert.Equal(t, "Kings", req.Team)

	_, err = ValidateDrop(r, "k1", "a2")
	assert.ErrorIs(t, err, ErrNotOnTeam)

	_, err = ValidateDrop(r, "k1", "fa1")
	assert.ErrorIs(t, err, ErrNotOnTeam)

	_, err = ValidateDropStillValid(r, "k2", "kings")
	assert.NoError(t, err)
	_, err = ValidateDropStillValid(r, "k2", "Astro")
	assert.ErrorIs(t, err, ErrNotOnTeam)
}

func TestValidateTrade(t *testing.T) {
	r := league()

	req, err := ValidateTrade(r, "k1", "k2", "a2")
	require.NoError(t, err)
	assert.Equal(t, "Kings", req.Team1)
	assert.Equal(t, "Astro", req.Team2)
	assert.Equal(t, "a1", req.OpposingCaptain.DiscordID)

	tests := []struct {
		name      string
		requester string
		p1, p2    string
		want      error
	}{
		{"requester not captain", "k2", "k3", "a2", ErrNotCaptain},
		{"requester not in sheet", "zz", "k2", "a2", ErrNotInSheet},
		{"player1 not on requester team", "k1", "a3", "a2", ErrNotOnTeam},
		{"same team", "k1", "k2", "k3", ErrSameTeam},
		{"free agent", "k1", "k2", "fa1", ErrIneligible},
		{"waivers", "k1", "k2", "w1", ErrIneligible},
		{"no opposing captain", "k1", "k2", "m1", ErrNoCaptain},
		{"player2 missing", "k1", "k2", "zz", ErrNotInSheet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTrade(r, tt.requester, tt.p1, tt.p2)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateTradeStillValid(t *testing.T) {
	r := league()

	p1, p2, err := ValidateTradeStillValid(r, "k2", "a2", "Kings", "Astro")
	require.NoError(t, err)
	assert.Equal(t, 3, p1.Row)
	assert.Equal(t, 6, p2.Row)

	_, _, err = ValidateTradeStillValid(r, "k2", "a2", "Kings", "Armada")
	assert.ErrorIs(t, err, ErrTradeChanged)
}

func TestValidateSub(t *testing.T) {
	r := league()

	req, err := ValidateSub(r, "a1", "fa1")
	require.NoError(t, err)
	assert.Equal(t, "Astro", req.Team, "subs do not count against the roster cap")

	_, err = ValidateSub(r, "a1", "k2")
	assert.ErrorIs(t, err, ErrNotFreeAgent)
}

func TestValidateClaimAndAward(t *testing.T) {
	r := league()

	team, err := ValidateClaim(r, "k1", "w1")
	require.NoError(t, err)
	assert.Equal(t, "Kings", team)

	_, err = ValidateClaim(r, "k1", "fa1")
	assert.ErrorIs(t, err, ErrNotOnWaivers)

	_, err = ValidateClaim(r, "nt", "w1")
	assert.ErrorIs(t, err, ErrNoTeam)

	_, err = ValidateAward(r, "w1", "Kings")
	assert.NoError(t, err)

	_, err = ValidateAward(r, "w1", "Astro")
	assert.ErrorIs(t, err, ErrRosterFull)

	_, err = ValidateAward(r, "fa1", "Kings")
	assert.ErrorIs(t, err, ErrNotOnWaivers)
}

type fixedOrder map[string]int

func (o fixedOrder) Rank(team string) (int, bool) {
	rank, ok := o[team]
	return rank, ok
}

func TestClaimRank(t *testing.T) {
	order := fixedOrder{"Kings": 2}

	rank, err := ClaimRank(order, "Kings")
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	_, err = ClaimRank(order, "Astro")
	assert.ErrorIs(t, err, ErrUnranked)
	assert.Contains(t, err.Error(), "(**Astro**) was not found in the waiver order sheet")
}

func TestValidateRetire(t *testing.T) {
	r := league()

	_, err := ValidateRetire(r, "k2")
	assert.NoError(t, err)

	_, err = ValidateRetire(r, "r1")
	assert.ErrorIs(t, err, ErrAlreadyRetired)
}

func TestSubDeadline(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"wednesday rolls to sunday",
			time.Date(2025, 10, 15, 12, 0, 0, 0, Eastern),
			time.Date(2025, 10, 19, 23, 59, 0, 0, Eastern),
		},
		{
			"sunday morning is same day",
			time.Date(2025, 10, 19, 9, 0, 0, 0, Eastern),
			time.Date(2025, 10, 19, 23, 59, 0, 0, Eastern),
		},
		{
			"saturday late",
			time.Date(2025, 10, 18, 23, 30, 0, 0, Eastern),
			time.Date(2025, 10, 19, 23, 59, 0, 0, Eastern),
		},
		{
			"utc monday early is still eastern sunday",
			time.Date(2025, 10, 20, 2, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 19, 23, 59, 0, 0, Eastern),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubDeadline(tt.now)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}
