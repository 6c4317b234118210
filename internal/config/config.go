package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"`

	AdminsRoleID    string `env:"ADMINS_ROLE_ID"`
	CaptainsRoleID  string `env:"CAPTAINS_ROLE_ID"`
	WaiversRoleID   string `env:"WAIVERS_ROLE_ID"`
	RetiredRoleID   string `env:"RETIRED_ROLE_ID"`
	FreeAgentRoleID string `env:"FREE_AGENT_ROLE_ID"`
	StreamerRoleID  string `env:"STREAMER_ROLE_ID"`

	// Team name -> role ID, e.g. "Tidal Wave:123,Night Owls:456"
	TeamRoleIDs map[string]string `env:"TEAM_ROLE_IDS" envSeparator:"," envKeyValSeparator:":"`

	TransactionsCategoryID       string `env:"TRANSACTIONS_CATEGORY_ID"`
	PendingTransactionsChannelID string `env:"PENDING_TRANSACTIONS_CHANNEL_ID"`
	TransactionsChannelID        string `env:"TRANSACTIONS_CHANNEL_ID"`
	ChangelogChannelID           string `env:"CHANGELOG_CHANNEL_ID"`
	SchedCategoryID              string `env:"SCHED_CATEGORY_ID"`
	SchedulingChannelName        string `env:"SCHEDULING_CHANNEL_NAME" envDefault:"💥・scheduling"`
	ScheduledMatchesChannelName  string `env:"SCHEDULED_MATCHES_CHANNEL_NAME" envDefault:"scheduled-matches"`

	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleSheetID            string `env:"GOOGLE_SHEET_ID"`
	GoogleWorksheet          string `env:"GOOGLE_WORKSHEET" envDefault:"Sheet1"`
	WaiverOrderWorksheet     string `env:"WAIVER_ORDER_WORKSHEET" envDefault:"WaiverOrder"`

	DataDir  string `env:"DATA_DIR" envDefault:"./data"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CacheDurationMinutes       int `env:"CACHE_DURATION_MINUTES" envDefault:"5"`
	CommandCooldownSeconds     int `env:"COMMAND_COOLDOWN_SECONDS" envDefault:"8"`
	WaiverCheckIntervalMinutes int `env:"WAIVER_CHECK_INTERVAL_MINUTES" envDefault:"5"`
	// Zero turns off the sheet edit monitor
	RosterCheckIntervalMinutes int `env:"ROSTER_CHECK_INTERVAL_MINUTES" envDefault:"10"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Trim keys so "Team A: 1, Team B: 2" still resolves
	if len(cfg.TeamRoleIDs) > 0 {
		trimmed := make(map[string]string, len(cfg.TeamRoleIDs))
		for team, id := range cfg.TeamRoleIDs {
			trimmed[strings.TrimSpace(team)] = strings.TrimSpace(id)
		}
		cfg.TeamRoleIDs = trimmed
	}

	return cfg, nil
}

// Validate reports every missing value the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"DISCORD_TOKEN":               c.DiscordToken,
		"GUILD_ID":                    c.GuildID,
		"GOOGLE_SHEET_ID":             c.GoogleSheetID,
		"GOOGLE_SERVICE_ACCOUNT_JSON": c.GoogleServiceAccountJSON,
	}
	for _, key := range []string{"DISCORD_TOKEN", "GUILD_ID", "GOOGLE_SHEET_ID", "GOOGLE_SERVICE_ACCOUNT_JSON"} {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.CommandCooldownSeconds < 0 {
		errs = append(errs, fmt.Errorf("COMMAND_COOLDOWN_SECONDS must be >= 0"))
	}
	if c.RosterCheckIntervalMinutes < 0 {
		errs = append(errs, fmt.Errorf("ROSTER_CHECK_INTERVAL_MINUTES must be >= 0"))
	}
	if c.WaiverCheckIntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("WAIVER_CHECK_INTERVAL_MINUTES must be > 0"))
	}
	return errors.Join(errs...)
}

func (c *Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheDurationMinutes) * time.Minute
}

func (c *Config) CommandCooldown() time.Duration {
	return time.Duration(c.CommandCooldownSeconds) * time.Second
}

func (c *Config) WaiverCheckInterval() time.Duration {
	return time.Duration(c.WaiverCheckIntervalMinutes) * time.Minute
}

func (c *Config) RosterCheckInterval() time.Duration {
	return time.Duration(c.RosterCheckIntervalMinutes) * time.Minute
}

// TeamRoleID looks up a team's role ID, ignoring case and surrounding space.
func (c *Config) TeamRoleID(team string) (string, bool) {
	team = strings.TrimSpace(team)
	if id, ok := c.TeamRoleIDs[team]; ok && id != "" {
		return id, true
	}
	for name, id := range c.TeamRoleIDs {
		if strings.EqualFold(name, team) && id != "" {
			return id, true
		}
	}
	return "", false
}

// ServiceAccountIsInline reports whether GOOGLE_SERVICE_ACCOUNT_JSON holds
// the credentials themselves rather than a path to them.
func (c *Config) ServiceAccountIsInline() bool {
	return strings.HasPrefix(strings.TrimSpace(c.GoogleServiceAccountJSON), "{")
}
