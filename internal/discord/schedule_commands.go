package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/pkg/logger"
)

const (
	schedulingCategoryName = "╭────Scheduling────╮"
	clearScheduleTimeout   = 5 * time.Minute
)

const matchChannelAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

// schedulingCategory resolves SCHED_CATEGORY_ID or finds the category by
// name, creating it when create is set.
func (hm *HandlerManager) schedulingCategory(guildID string, create bool) (string, error) {
	if hm.config.SchedCategoryID != "" {
		return hm.config.SchedCategoryID, nil
	}
	channels, err := hm.session.GuildChannels(guildID)
	if err != nil {
		return "", err
	}
	if id, ok := findChannel(channels, discordgo.ChannelTypeGuildCategory, schedulingCategoryName, ""); ok {
		return id, nil
	}
	if !create {
		return "", fmt.Errorf("scheduling category not found")
	}
	ch, err := hm.session.GuildChannelCreate(guildID, schedulingCategoryName, discordgo.ChannelTypeGuildCategory)
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

// findChannel matches by type and exact name, optionally within a category
func findChannel(channels []*discordgo.Channel, kind discordgo.ChannelType, name, parentID string) (string, bool) {
	for _, ch := range channels {
		if ch.Type != kind || ch.Name != name {
			continue
		}
		if parentID != "" && ch.ParentID != parentID {
			continue
		}
		return ch.ID, true
	}
	return "", false
}

// matchChannelOverwrites hides a match channel from everyone except the two
// teams, streamers and the bot.
func matchChannelOverwrites(guildID, botID string, roleIDs ...string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
	}
	if botID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: botID, Type: discordgo.PermissionOverwriteTypeMember, Allow: matchChannelAccess,
		})
	}
	for _, id := range roleIDs {
		if id == "" {
			continue
		}
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: id, Type: discordgo.PermissionOverwriteTypeRole, Allow: matchChannelAccess,
		})
	}
	return overwrites
}

func matchEmbed(week int, m models.Matchup) *discordgo.MessageEmbed {
	home := models.GetTeamInfo(m.Home)
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Week %d: %s vs %s", week, m.Home, m.Away),
		Description: "Captains, use `/propose` to suggest a match time and `/confirm` to lock it in.\n" +
			"All times are EST.",
		Color: home.Color,
	}
	if models.IsPreseason(week) {
		embed.Title = fmt.Sprintf("Preseason Tournament Week %d: %s vs %s", week, m.Home, m.Away)
		embed.Description = "Preseason tournament match. Results do not count toward the regular season standings.\n" +
			"Captains, use `/propose` to suggest a match time and `/confirm` to lock it in. All times are EST."
	}
	if home.Logo != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: home.Logo}
	}
	return embed
}

func (hm *HandlerManager) handleStartWeek(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	week, _ := optionInt(i, "week")
	matchups, ok := models.Schedule[week]
	if !ok {
		hm.respondEphemeral(s, i, fmt.Sprintf("❌ There is no schedule for week %d.", week))
		return
	}
	if len(matchups) == 0 {
		hm.respondEphemeral(s, i, fmt.Sprintf("ℹ️ Week %d has no matchups yet.", week))
		return
	}
	if !hm.deferEphemeral(s, i) {
		return
	}

	categoryID, err := hm.schedulingCategory(i.GuildID, true)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "find scheduling category"), true)
		return
	}
	existing, err := s.GuildChannels(i.GuildID)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "list channels"), true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()
	r, err := hm.ensureRosterLoaded(ctx)
	if err != nil {
		hm.logger.Warn("Roster unavailable, skipping captain pings:", err)
		r = &models.Roster{}
	}

	var created, skipped, failed []string
	for _, m := range matchups {
		name := m.ChannelName(week)
		if _, ok := findChannel(existing, discordgo.ChannelTypeGuildText, name, categoryID); ok {
			skipped = append(skipped, name)
			continue
		}
		homeRole, _ := hm.roles.TeamRoleID(i.GuildID, m.Home)
		awayRole, _ := hm.roles.TeamRoleID(i.GuildID, m.Away)
		ch, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
			Name:                 name,
			Type:                 discordgo.ChannelTypeGuildText,
			ParentID:             categoryID,
			PermissionOverwrites: matchChannelOverwrites(i.GuildID, s.State.User.ID, homeRole, awayRole, hm.config.StreamerRoleID),
		})
		if err != nil {
			hm.logger.WithFields(logger.Fields{"channel": name}).Error("Failed to create match channel:", err)
			failed = append(failed, name)
			continue
		}
		created = append(created, "<#"+ch.ID+">")

		hm.send(ch.ID, &discordgo.MessageSend{
			Content:         captainPing(r, m),
			Embeds:          []*discordgo.MessageEmbed{matchEmbed(week, m)},
			AllowedMentions: mentionUsers,
		})
	}

	summary := fmt.Sprintf("✅ Week %d: created %d channel(s).", week, len(created))
	if len(created) > 0 {
		summary += "\n" + strings.Join(created, " ")
	}
	if len(skipped) > 0 {
		summary += fmt.Sprintf("\nℹ️ %d already existed.", len(skipped))
	}
	if len(failed) > 0 {
		summary += "\n⚠️ Failed: " + strings.Join(failed, ", ")
	}
	hm.followUp(s, i, summary)
}

// captainPing mentions both captains, falling back to team names
func captainPing(r *models.Roster, m models.Matchup) string {
	mention := func(team string) string {
		if c, ok := r.CaptainOf(team); ok {
			return "<@" + c.DiscordID + ">"
		}
		return "**" + team + "**"
	}
	return fmt.Sprintf("%s vs %s, your match channel is ready.", mention(m.Home), mention(m.Away))
}

type clearScheduleRequest struct {
	RequesterID string
	GuildID     string
}

func (hm *HandlerManager) requireScheduler(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if hm.isAdmin(i.Member) || hm.isCaptain(i.Member) {
		return true
	}
	hm.respondEphemeral(s, i, "🚫 Only admins and captains can use this command.")
	return false
}

func (hm *HandlerManager) handleClearSchedule(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireScheduler(s, i) {
		return
	}
	id := uuid.NewString()
	hm.pending.Put(pendingKey(prefixClearSchedule, id), &clearScheduleRequest{
		RequesterID: i.Member.User.ID,
		GuildID:     i.GuildID,
	}, clearScheduleTimeout)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "⚠️ This deletes every `week` channel in the scheduling category. Continue?",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: buttonRow(prefixClearSchedule, id,
				buttonSpec{Label: "Delete channels", Action: actionConfirm, Style: discordgo.DangerButton},
				buttonSpec{Label: "Cancel", Action: actionCancel, Style: discordgo.SecondaryButton},
			),
		},
	})
	if err != nil {
		hm.logger.Error("Failed to send clear schedule prompt:", err)
	}
}

func (hm *HandlerManager) handleClearScheduleClick(s *discordgo.Session, i *discordgo.InteractionCreate, id, action string) {
	key := pendingKey(prefixClearSchedule, id)
	v, ok := hm.pending.Peek(key)
	if !ok {
		hm.updateMessage(s, i, "⌛ This request has expired.")
		return
	}
	req := v.(*clearScheduleRequest)
	if i.Member.User.ID != req.RequesterID {
		hm.respondEphemeral(s, i, "🚫 Only the member who ran /clearschedule can confirm it.")
		return
	}
	if _, ok := hm.pending.Take(key); !ok {
		hm.updateMessage(s, i, "ℹ️ Already handled.")
		return
	}
	if action != actionConfirm {
		hm.updateMessage(s, i, "Cancelled.")
		return
	}
	hm.updateMessage(s, i, "🧹 Deleting scheduling channels...")

	deleted, failed, err := hm.clearSchedule(req.GuildID)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "list scheduling channels"), true)
		return
	}
	msg := fmt.Sprintf("✅ Deleted %d channel(s).", deleted)
	if failed > 0 {
		msg += fmt.Sprintf(" ⚠️ %d could not be deleted.", failed)
	}
	hm.followUp(s, i, msg)
}

func (hm *HandlerManager) clearSchedule(guildID string) (deleted, failed int, err error) {
	categoryID, err := hm.schedulingCategory(guildID, false)
	if err != nil {
		return 0, 0, err
	}
	channels, err := hm.session.GuildChannels(guildID)
	if err != nil {
		return 0, 0, err
	}
	for _, ch := range channels {
		if ch.ParentID != categoryID || !strings.HasPrefix(ch.Name, models.WeekChannelPrefix(0)) {
			continue
		}
		if _, err := hm.session.ChannelDelete(ch.ID); err != nil {
			hm.logger.WithFields(logger.Fields{"channel": ch.Name}).Error("Failed to delete channel:", err)
			failed++
			continue
		}
		deleted++
	}
	hm.logger.Infof("Cleared schedule: %d deleted, %d failed", deleted, failed)
	return deleted, failed, nil
}

// updateMessage replaces the clicked message, dropping its buttons
func (hm *HandlerManager) updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		hm.logger.Error("Failed to update message:", err)
	}
}

// matchChannel resolves the interaction's channel and its matchup, replying
// and returning false when it is not a match channel.
func (hm *HandlerManager) matchChannel(s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.Channel, models.Matchup, bool) {
	ch, err := baseChannel(hm.lookupChannel, i.ChannelID)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "look up channel"), false)
		return nil, models.Matchup{}, false
	}
	categoryID, err := hm.schedulingCategory(i.GuildID, false)
	if err != nil || ch.ParentID != categoryID {
		hm.respondEphemeral(s, i, "❌ Use this command in a match scheduling channel.")
		return nil, models.Matchup{}, false
	}
	m, ok := models.ParseMatchupChannel(ch.Name)
	if !ok {
		hm.respondEphemeral(s, i, "❌ This is not a match channel.")
		return nil, models.Matchup{}, false
	}
	return ch, m, true
}

func (hm *HandlerManager) handlePropose(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireScheduler(s, i) {
		return
	}
	proposed, _ := optionString(i, "time")
	proposed = strings.TrimSpace(proposed)
	if proposed == "" {
		hm.respondEphemeral(s, i, "❌ Please enter a time.")
		return
	}
	ch, _, ok := hm.matchChannel(s, i)
	if !ok {
		return
	}

	err := hm.proposals.Put(ch.ID, &models.Proposal{
		ProposerID:   i.Member.User.ID,
		ProposerName: displayName(i.Member.User, i.Member),
		Time:         proposed,
		ProposedAt:   time.Now().UTC(),
	})
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "save proposal"), false)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("📅 <@%s> proposed **%s** EST. The other captain can `/confirm time:%s` to lock it in.",
				i.Member.User.ID, proposed, proposed),
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err != nil {
		hm.logger.Error("Failed to announce proposal:", err)
	}
}

func (hm *HandlerManager) handleConfirm(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireScheduler(s, i) {
		return
	}
	confirmed, _ := optionString(i, "time")
	ch, matchup, ok := hm.matchChannel(s, i)
	if !ok {
		return
	}

	proposal, err := hm.proposals.Get(ch.ID)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "load proposal"), false)
		return
	}
	if err := checkConfirmation(proposal, i.Member.User.ID, confirmed); err != nil {
		hm.handleError(s, i, err, false)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("✅ Match confirmed for **%s** EST (proposed by <@%s>, confirmed by <@%s>).",
				proposal.Time, proposal.ProposerID, i.Member.User.ID),
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err != nil {
		hm.logger.Error("Failed to announce confirmation:", err)
	}

	announcement := hm.matchAnnouncement(i.GuildID, matchup, proposal.Time)
	channels, err := s.GuildChannels(i.GuildID)
	if err != nil {
		hm.logger.Error("Failed to list channels for match announcement:", err)
	} else {
		if id, ok := findChannel(channels, discordgo.ChannelTypeGuildText, hm.config.SchedulingChannelName, ""); ok {
			hm.send(id, &discordgo.MessageSend{Content: announcement, AllowedMentions: &discordgo.MessageAllowedMentions{}})
		}
		if id, ok := findChannel(channels, discordgo.ChannelTypeGuildText, hm.config.ScheduledMatchesChannelName, ""); ok {
			if msg := hm.send(id, &discordgo.MessageSend{Content: announcement, AllowedMentions: &discordgo.MessageAllowedMentions{}}); msg != nil {
				for _, emoji := range []string{"🎙️", "🎥"} {
					if err := s.MessageReactionAdd(id, msg.ID, emoji); err != nil {
						hm.logger.Warn("Failed to add reaction:", err)
					}
				}
			}
		} else {
			hm.logger.Warn("Scheduled matches channel not found:", hm.config.ScheduledMatchesChannelName)
		}
	}

	if err := hm.proposals.Delete(ch.ID); err != nil {
		hm.logger.Error("Failed to delete proposal:", err)
	}
}

// checkConfirmation validates a /confirm against the channel's proposal
func checkConfirmation(p *models.Proposal, confirmerID, confirmed string) error {
	if p == nil {
		return NewUserError("❌ There is no proposed time in this channel. Use `/propose` first.")
	}
	if p.ProposerID == confirmerID {
		return NewUserError("❌ You can't confirm your own proposal.")
	}
	if !strings.EqualFold(strings.TrimSpace(p.Time), strings.TrimSpace(confirmed)) {
		return NewUserError(fmt.Sprintf("❌ That doesn't match the proposed time **%s**.", p.Time))
	}
	return nil
}

// matchAnnouncement renders the scheduled-matches line for a confirmed match
func (hm *HandlerManager) matchAnnouncement(guildID string, m models.Matchup, when string) string {
	homeEmoji := hm.teamEmoji(guildID, m.Home)
	awayEmoji := hm.teamEmoji(guildID, m.Away)
	line := fmt.Sprintf("%s vs %s", hm.teamMention(guildID, m.Home), hm.teamMention(guildID, m.Away))
	if homeEmoji != "" {
		line = homeEmoji + " " + line
	}
	if awayEmoji != "" {
		line = line + " " + awayEmoji
	}
	return fmt.Sprintf("%s — %s EST", line, when)
}

// teamEmoji renders the team's custom guild emoji when the server has it
func (hm *HandlerManager) teamEmoji(guildID, team string) string {
	name := models.GetTeamInfo(team).Emoji
	if name == "" {
		return ""
	}
	g, err := hm.session.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, e := range g.Emojis {
		if e.Name == name {
			return e.MessageFormat()
		}
	}
	return ""
}
