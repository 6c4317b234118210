package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/qrls/qrls-bot/internal/models"
)

const (
	defaultTransactionCount = 10
	maxTransactionCount     = 25
)

func (hm *HandlerManager) handleUpdateUser(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	user, member := optionUser(i, "user")
	if user == nil {
		hm.respondEphemeral(s, i, "❌ Please choose a member.")
		return
	}
	nickname, hasNickname := optionString(i, "nickname")
	salary, hasSalary := optionInt(i, "salary")
	team, hasTeam := optionString(i, "team")
	if hasSalary && salary < 0 {
		hm.respondEphemeral(s, i, "❌ Salary must be 0 or more.")
		return
	}
	if !hm.deferEphemeral(s, i) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()
	r, err := hm.freshRoster(ctx)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}

	updated := models.Member{DiscordID: user.ID, Nickname: displayName(user, member), Team: models.TeamFreeAgent}
	if existing, found := r.Find(user.ID); found {
		updated = *existing
	}
	before := updated

	if hasNickname {
		updated.Nickname = strings.TrimSpace(nickname)
	}
	if hasSalary {
		updated.Salary = strconv.Itoa(salary)
	}
	if hasTeam {
		updated.Team = strings.TrimSpace(team)
	}

	appended, err := hm.sheet.Upsert(ctx, updated)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "write sheet"), true)
		return
	}
	hm.cache.Flush()

	changes := describeChanges(before, updated, appended)
	hm.logChange(fmt.Sprintf("📝 <@%s> updated **%s**: %s", i.Member.User.ID, updated.Nickname, changes))
	if _, err := hm.ledger.Append(models.Transaction{
		Type:       models.TxUpdateUser,
		PlayerID:   user.ID,
		FromTeam:   before.Team,
		ToTeam:     updated.Team,
		ApprovedBy: i.Member.User.ID,
		Detail:     changes,
	}); err != nil {
		hm.logger.Error("Failed to record user update:", err)
	}
	hm.followUp(s, i, fmt.Sprintf("✅ Updated <@%s>: %s", user.ID, changes))
}

// describeChanges lists the fields that differ between two versions of a row
func describeChanges(before, after models.Member, appended bool) string {
	if appended {
		return fmt.Sprintf("added to sheet (nickname %s, salary %s, team %s)", after.Nickname, orDash(after.Salary), after.Team)
	}
	var parts []string
	if before.Nickname != after.Nickname {
		parts = append(parts, fmt.Sprintf("nickname %s → %s", orDash(before.Nickname), after.Nickname))
	}
	if before.Salary != after.Salary {
		parts = append(parts, fmt.Sprintf("salary %s → %s", orDash(before.Salary), after.Salary))
	}
	if !models.SameTeam(before.Team, after.Team) {
		parts = append(parts, fmt.Sprintf("team %s → %s", orDash(before.Team), after.Team))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func (hm *HandlerManager) handleTransaction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	user, _ := optionUser(i, "player")
	team, _ := optionString(i, "team")
	team = strings.TrimSpace(team)
	if user == nil || team == "" {
		hm.respondEphemeral(s, i, "❌ Please choose a player and a team.")
		return
	}
	if !hm.deferEphemeral(s, i) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()
	r, err := hm.freshRoster(ctx)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	player, found := r.Find(user.ID)
	if !found {
		hm.followUp(s, i, fmt.Sprintf("❌ <@%s> was not found in the sheet.", user.ID))
		return
	}
	oldTeam := player.Team
	if models.SameTeam(oldTeam, team) {
		hm.followUp(s, i, fmt.Sprintf("ℹ️ <@%s> is already on **%s**.", user.ID, team))
		return
	}
	if err := hm.sheet.SetTeam(ctx, player.Row, team); err != nil {
		hm.handleError(s, i, NewSystemError(err, "update sheet"), true)
		return
	}
	hm.cache.Flush()

	var remove, add []string
	if id, ok := hm.roles.TeamRoleID(i.GuildID, oldTeam); ok {
		remove = append(remove, id)
	}
	if id, ok := hm.roles.TeamRoleID(i.GuildID, team); ok {
		add = append(add, id)
	}
	switch {
	case models.SameTeam(team, models.TeamFreeAgent):
		add = append(add, hm.config.FreeAgentRoleID)
	case models.IsRealTeam(team):
		remove = append(remove, hm.config.FreeAgentRoleID, hm.config.WaiversRoleID)
	}
	warnings := hm.roles.Apply(i.GuildID, user.ID, remove, add)

	hm.logTransaction(models.Transaction{
		Type:       models.TxMove,
		PlayerID:   user.ID,
		FromTeam:   oldTeam,
		ToTeam:     team,
		ApprovedBy: i.Member.User.ID,
	}, fmt.Sprintf("**%s** has been added to **%s** from **%s**.", player.Nickname, team, orDash(oldTeam)))

	hm.followUp(s, i, fmt.Sprintf("✅ Moved <@%s> from **%s** to **%s**.%s", user.ID, orDash(oldTeam), team, formatWarnings(warnings)))
}

func (hm *HandlerManager) handleTransactions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	count, ok := optionInt(i, "count")
	if !ok || count <= 0 {
		count = defaultTransactionCount
	}
	if count > maxTransactionCount {
		count = maxTransactionCount
	}

	recent, err := hm.ledger.Recent(count)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "read transactions"), false)
		return
	}
	if len(recent) == 0 {
		hm.respondEphemeral(s, i, "No transactions recorded yet.")
		return
	}

	var sb strings.Builder
	for _, tx := range recent {
		sb.WriteString(fmt.Sprintf("`%s` <@%s> %s → %s (%s)\n",
			tx.Type, tx.PlayerID, orDash(tx.FromTeam), orDash(tx.ToTeam), humanize.Time(tx.Timestamp)))
	}
	hm.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Last %d Transactions", len(recent)),
		Description: sb.String(),
		Color:       ColorInfo,
	}, true)
}

func (hm *HandlerManager) handleRefresh(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	dryRun := optionBool(i, "dry_run")
	if !hm.deferEphemeral(s, i) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()

	if dryRun {
		r, err := hm.sheet.Roster(ctx)
		if err != nil {
			hm.handleError(s, i, NewSystemError(err, "read sheet"), true)
			return
		}
		embed := &discordgo.MessageEmbed{
			Title: "🔍 Refresh dry run",
			Color: ColorSuccess,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Rows", Value: fmt.Sprintf("%d", len(r.Members)), Inline: true},
				{Name: "Teams", Value: fmt.Sprintf("%d", len(r.Teams())), Inline: true},
				{Name: "Header", Value: "✅ valid", Inline: true},
			},
		}
		if !r.HeaderValid() {
			embed.Color = ColorDanger
			embed.Fields[2].Value = "⚠️ expected " + strings.Join(models.RosterHeaders, ", ")
		}
		hm.followUpEmbed(s, i, embed, true)
		return
	}

	hm.cache.Flush()
	if err := hm.sheet.LoadInitialData(ctx, hm.cache); err != nil {
		hm.handleError(s, i, NewSystemError(err, "reload sheet"), true)
		return
	}
	r, _ := hm.cache.GetRoster()
	hm.followUp(s, i, fmt.Sprintf("✅ Roster reloaded (%d rows).", len(r.Members)))
}

func (hm *HandlerManager) handleSendMessage(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	opts := options(i)
	chOpt, ok := opts["channel"]
	message, _ := optionString(i, "message")
	if !ok || strings.TrimSpace(message) == "" {
		hm.respondEphemeral(s, i, "❌ Please choose a channel and a message.")
		return
	}
	channel := chOpt.ChannelValue(nil)

	if _, err := s.ChannelMessageSend(channel.ID, message); err != nil {
		hm.handleError(s, i, NewSystemError(err, "send message"), false)
		return
	}
	hm.logChange(fmt.Sprintf("📣 <@%s> sent a message in <#%s>:\n%s", i.Member.User.ID, channel.ID, message))
	hm.respondEphemeral(s, i, fmt.Sprintf("✅ Message sent to <#%s>.", channel.ID))
}
