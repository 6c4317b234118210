package discord

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrls/qrls-bot/internal/config"
	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/roster"
	"github.com/qrls/qrls-bot/internal/storage"
	"github.com/qrls/qrls-bot/internal/waivers"
	"github.com/qrls/qrls-bot/pkg/logger"
)

func newTestHandlerManager() *HandlerManager {
	return NewHandlerManager(Dependencies{
		Config: &config.Config{CommandCooldownSeconds: 8},
		Logger: logger.NewWithOutput("error", io.Discard),
	})
}

func TestEveryCommandHasAHandler(t *testing.T) {
	hm := newTestHandlerManager()
	seen := make(map[string]bool)
	for _, cmd := range commandDefinitions() {
		assert.False(t, seen[cmd.Name], "duplicate command %s", cmd.Name)
		seen[cmd.Name] = true
		assert.Contains(t, hm.commands, cmd.Name)
		assert.LessOrEqual(t, len(cmd.Description), 100, "description too long for %s", cmd.Name)
	}
	assert.Len(t, hm.commands, len(seen))

	for _, prefix := range []string{prefixApproval, prefixTradeCaptain, prefixWaiverConfirm, prefixWaiverAdmin, prefixClearSchedule} {
		assert.Contains(t, hm.components, prefix)
	}
}

func TestCommandDefinitions_WorkflowOptions(t *testing.T) {
	byName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range commandDefinitions() {
		byName[cmd.Name] = cmd
	}

	trade := byName["trade"]
	require.Len(t, trade.Options, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionUser, trade.Options[0].Type)
	assert.True(t, trade.Options[1].Required)

	unretire := byName["unretire"]
	require.Len(t, unretire.Options, 2)
	require.NotNil(t, unretire.Options[1].MinValue)
	assert.Equal(t, 0.0, *unretire.Options[1].MinValue)

	teaminfo := byName["teaminfo"]
	require.Len(t, teaminfo.Options, 1)
	assert.True(t, teaminfo.Options[0].Autocomplete)
}

func TestCooldownMessage(t *testing.T) {
	assert.Equal(t, "⏳ You’re using commands too quickly! Please wait **6.5 seconds**.",
		cooldownMessage(6500*time.Millisecond))
}

func TestAllowCommand(t *testing.T) {
	tests := []struct {
		name        string
		member      *discordgo.Member
		secondAllow bool
	}{
		{
			name:        "captain blocked inside the cooldown",
			member:      &discordgo.Member{User: &discordgo.User{ID: "cap"}, Roles: []string{"caps"}},
			secondAllow: false,
		},
		{
			name:        "administrator permission skips the cooldown",
			member:      &discordgo.Member{User: &discordgo.User{ID: "owner"}, Permissions: discordgo.PermissionAdministrator},
			secondAllow: true,
		},
		{
			name:        "admin role skips the cooldown",
			member:      &discordgo.Member{User: &discordgo.User{ID: "mod"}, Roles: []string{"admins"}},
			secondAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm := NewHandlerManager(Dependencies{
				Config: &config.Config{CommandCooldownSeconds: 8, AdminsRoleID: "admins", CaptainsRoleID: "caps"},
				Logger: logger.NewWithOutput("error", io.Discard),
			})

			ok, _ := hm.allowCommand(tt.member)
			require.True(t, ok)

			ok, remaining := hm.allowCommand(tt.member)
			assert.Equal(t, tt.secondAllow, ok)
			if !tt.secondAllow {
				assert.Greater(t, remaining, 7*time.Second)
				assert.LessOrEqual(t, remaining, 8*time.Second)
			}
		})
	}
}

func TestProcessWaiverAction_SkipsStaleStep(t *testing.T) {
	store, err := storage.NewWaiverStorage(t.TempDir())
	require.NoError(t, err)
	now := time.Now().UTC()
	svc := waivers.NewService(store, waivers.WithClock(func() time.Time { return now }))

	_, err = svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)
	_, err = svc.PlaceClaim("p1", models.Claim{TeamName: "Astro", TeamRank: 1, ClaimedByID: "c1"})
	require.NoError(t, err)
	now = now.Add(models.WaiverWindow + time.Hour)
	_, err = svc.MarkPrompted("p1")
	require.NoError(t, err)
	now = now.Add(models.ClaimPromptTimeout + time.Minute)

	due, err := svc.Due()
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, waivers.ActionFinalize, due[0].Kind)

	_, err = svc.Confirm("p1", "c1")
	require.NoError(t, err)

	hm := NewHandlerManager(Dependencies{
		Config:  &config.Config{CommandCooldownSeconds: 8},
		Logger:  logger.NewWithOutput("error", io.Discard),
		Waivers: svc,
	})
	hm.processWaiverAction(context.Background(), due[0])

	w, err := svc.Get("p1")
	require.NoError(t, err, "a confirmed claim survives a stale finalize")
	assert.Equal(t, models.ClaimConfirmed, w.Claim.Status)
	assert.False(t, w.Claim.ApprovalRequested)
}

func TestTradeTransactions(t *testing.T) {
	txs := tradeTransactions(&tradeProposal{
		Player1ID: "1", Player2ID: "2", Team1: "Kings", Team2: "Astro",
	}, "admin")

	require.Len(t, txs, 2)
	assert.Equal(t, models.TxTrade, txs[0].Type)
	assert.Equal(t, "1", txs[0].PlayerID)
	assert.Equal(t, "Kings", txs[0].FromTeam)
	assert.Equal(t, "Astro", txs[0].ToTeam)
	assert.Equal(t, "2", txs[1].PlayerID)
	assert.Equal(t, "Astro", txs[1].FromTeam)
	assert.Equal(t, "Kings", txs[1].ToTeam)
	assert.Equal(t, "admin", txs[1].ApprovedBy)
}

func TestUserMessage(t *testing.T) {
	ruleErr := &roster.RuleError{Code: roster.ErrRosterFull, Message: "❌ full"}
	msg, ok := userMessage(fmt.Errorf("wrapped: %w", ruleErr))
	assert.True(t, ok)
	assert.Equal(t, "❌ full", msg)

	msg, ok = userMessage(waivers.ErrOutranked)
	assert.True(t, ok)
	assert.Contains(t, msg, "higher waiver priority")

	msg, ok = userMessage(NewUserError("nope"))
	assert.True(t, ok)
	assert.Equal(t, "nope", msg)

	_, ok = userMessage(NewSystemError(io.ErrUnexpectedEOF, "read sheet"))
	assert.False(t, ok, "system errors are logged, not shown verbatim")
}

func TestNewSystemError(t *testing.T) {
	err := NewSystemError(io.ErrUnexpectedEOF, "update sheet")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "❌ Failed at step **update sheet** (check bot console).", err.UserMessage)
	assert.Equal(t, "failed at step update sheet: unexpected EOF", err.Error())
}

func TestDescribeChanges(t *testing.T) {
	before := models.Member{DiscordID: "1", Nickname: "Ace", Salary: "500", Team: "Kings"}

	after := before
	after.Salary = "700"
	after.Team = "Astro"
	assert.Equal(t, "salary 500 → 700, team Kings → Astro", describeChanges(before, after, false))

	assert.Equal(t, "no changes", describeChanges(before, before, false))

	added := models.Member{DiscordID: "2", Nickname: "New", Team: "Free Agent"}
	assert.Equal(t, "added to sheet (nickname New, salary -, team Free Agent)", describeChanges(added, added, true))
}

func TestCheckConfirmation(t *testing.T) {
	p := &models.Proposal{ProposerID: "cap1", Time: " Friday 9pm "}

	assert.Error(t, checkConfirmation(nil, "cap2", "Friday 9pm"))
	assert.Error(t, checkConfirmation(p, "cap1", "Friday 9pm"), "proposer cannot confirm")
	assert.Error(t, checkConfirmation(p, "cap2", "Saturday 9pm"))
	assert.NoError(t, checkConfirmation(p, "cap2", "friday 9PM"))
}

func TestTeamChoices(t *testing.T) {
	var many []string
	for n := 0; n < 30; n++ {
		many = append(many, fmt.Sprintf("Team %02d", n))
	}
	choices := teamChoices(many, "")
	require.Len(t, choices, maxAutocompleteChoices)

	choices = teamChoices([]string{"Kings", "Local Heroes"}, "hero")
	require.Len(t, choices, 1)
	assert.Equal(t, "Local Heroes", choices[0].Name)

	choices = teamChoices(nil, "wai")
	require.Len(t, choices, 1)
	assert.Equal(t, models.TeamWaivers, choices[0].Value)

	choices = teamChoices([]string{"kings"}, "kings")
	assert.Len(t, choices, 1, "sheet and known names are merged ignoring case")
}

func TestMatchChannelOverwrites(t *testing.T) {
	ow := matchChannelOverwrites("g", "bot", "home", "", "streamer")
	require.Len(t, ow, 4)

	assert.Equal(t, "g", ow[0].ID)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), ow[0].Deny)
	assert.Equal(t, discordgo.PermissionOverwriteTypeMember, ow[1].Type)
	assert.Equal(t, "home", ow[2].ID)
	assert.Equal(t, "streamer", ow[3].ID)
	assert.NotZero(t, ow[3].Allow&discordgo.PermissionSendMessages)
}

func TestMatchEmbed_Preseason(t *testing.T) {
	m := models.Matchup{Home: "Kings", Away: "Astro"}

	regular := matchEmbed(3, m)
	assert.Equal(t, "Week 3: Kings vs Astro", regular.Title)

	pre := matchEmbed(21, m)
	assert.True(t, strings.HasPrefix(pre.Title, "Preseason Tournament Week 21"))
	assert.Contains(t, pre.Description, "Preseason")
}

func TestCaptainPing(t *testing.T) {
	r := models.ParseRoster([][]string{
		{"discord_id", "nickname", "salary", "team", "captain"},
		{"1", "Ace", "500", "Kings", "TRUE"},
	})
	got := captainPing(r, models.Matchup{Home: "Kings", Away: "Astro"})
	assert.Equal(t, "<@1> vs **Astro**, your match channel is ready.", got)
}

func TestTeamEmbed(t *testing.T) {
	r := models.ParseRoster([][]string{
		{"discord_id", "nickname", "salary", "team", "captain"},
		{"1", "Ace", "1,500", "Kings", "TRUE"},
		{"2", "Bolt", "2500", "Kings", "FALSE"},
		{"3", "Comet", "900", "Astro", "TRUE"},
	})
	embed := teamEmbed(r, "Kings", r.TeamMembers("Kings"))

	assert.Equal(t, "Kings", embed.Title)
	assert.Equal(t, models.GetTeamInfo("Kings").Color, embed.Color)
	assert.True(t, strings.Index(embed.Description, "Bolt") < strings.Index(embed.Description, "Ace"), "highest salary first")
	assert.Contains(t, embed.Description, "**Ace** ©: $1,500")
	assert.Equal(t, "2/4", embed.Fields[0].Value)
	assert.Equal(t, "$4,000", embed.Fields[1].Value)
	assert.Equal(t, "<@1>", embed.Fields[2].Value)
}
