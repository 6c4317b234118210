package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GUILD_ID", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", cfg.GoogleWorksheet)
	assert.Equal(t, "WaiverOrder", cfg.WaiverOrderWorksheet)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "scheduled-matches", cfg.ScheduledMatchesChannelName)
	assert.Equal(t, 5*time.Minute, cfg.CacheDuration())
	assert.Equal(t, 8*time.Second, cfg.CommandCooldown())
	assert.Equal(t, 5*time.Minute, cfg.WaiverCheckInterval())
	assert.Equal(t, 10*time.Minute, cfg.RosterCheckInterval())
}

func TestLoad_TeamRoleIDs(t *testing.T) {
	t.Setenv("TEAM_ROLE_IDS", "Tidal Wave:111, Night Owls : 222")

	cfg, err := Load()
	require.NoError(t, err)

	id, ok := cfg.TeamRoleID("tidal wave")
	assert.True(t, ok)
	assert.Equal(t, "111", id)

	id, ok = cfg.TeamRoleID("Night Owls")
	assert.True(t, ok)
	assert.Equal(t, "222", id)

	_, ok = cfg.TeamRoleID("Free Agent")
	assert.False(t, ok)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("CACHE_DURATION_MINUTES", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	cfg := &Config{WaiverCheckIntervalMinutes: 5}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN is required")
	assert.Contains(t, err.Error(), "GOOGLE_SHEET_ID is required")

	cfg = &Config{
		DiscordToken:               "t",
		GuildID:                    "g",
		GoogleSheetID:              "s",
		GoogleServiceAccountJSON:   "creds.json",
		WaiverCheckIntervalMinutes: 5,
	}
	assert.NoError(t, cfg.Validate())
}

func TestServiceAccountIsInline(t *testing.T) {
	assert.True(t, (&Config{GoogleServiceAccountJSON: ` {"type":"service_account"}`}).ServiceAccountIsInline())
	assert.False(t, (&Config{GoogleServiceAccountJSON: "/secrets/sa.json"}).ServiceAccountIsInline())
}
