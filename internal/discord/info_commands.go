package discord

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/qrls/qrls-bot/internal/models"
)

const maxAutocompleteChoices = 25

func (hm *HandlerManager) cachedRoster(s *discordgo.Session, i *discordgo.InteractionCreate) (*models.Roster, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()
	r, err := hm.ensureRosterLoaded(ctx)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "load roster"), false)
		return nil, false
	}
	return r, true
}

func formatSalary(m *models.Member) string {
	if v, ok := m.SalaryValue(); ok {
		return "$" + humanize.Comma(int64(v))
	}
	return orDash(m.Salary)
}

func (hm *HandlerManager) handleSalary(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user, _ := optionUser(i, "user")
	if user == nil {
		hm.respondEphemeral(s, i, "❌ Please choose a player.")
		return
	}
	r, ok := hm.cachedRoster(s, i)
	if !ok {
		return
	}
	m, found := r.Find(user.ID)
	if !found {
		hm.respondEphemeral(s, i, fmt.Sprintf("❌ <@%s> was not found in the sheet.", user.ID))
		return
	}
	hm.respondEphemeral(s, i, fmt.Sprintf("💰 **%s** (%s): %s", m.Nickname, m.Team, formatSalary(m)))
}

func (hm *HandlerManager) handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user, member := optionUser(i, "user")
	if user == nil {
		user, member = i.Member.User, i.Member
	}
	r, ok := hm.cachedRoster(s, i)
	if !ok {
		return
	}
	m, found := r.Find(user.ID)
	if !found {
		hm.respondEphemeral(s, i, fmt.Sprintf("❌ <@%s> was not found in the sheet.", user.ID))
		return
	}

	info := models.GetTeamInfo(m.Team)
	captain := "No"
	if m.Captain {
		captain = "Yes"
	}
	embed := &discordgo.MessageEmbed{
		Title: m.Nickname,
		Color: info.Color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Team", Value: orDash(m.Team), Inline: true},
			{Name: "Salary", Value: formatSalary(m), Inline: true},
			{Name: "Captain", Value: captain, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Discord: " + displayName(user, member)},
	}
	if info.Logo != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.Logo}
	}
	hm.respondEmbed(s, i, embed, true)
}

func (hm *HandlerManager) handleTeamInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	team, _ := optionString(i, "team")
	team = strings.TrimSpace(team)
	if team == "" {
		hm.respondEphemeral(s, i, "❌ Please choose a team.")
		return
	}
	r, ok := hm.cachedRoster(s, i)
	if !ok {
		return
	}
	members := r.TeamMembers(team)
	if len(members) == 0 {
		hm.respondEphemeral(s, i, fmt.Sprintf("❌ No players found for **%s**.", team))
		return
	}
	hm.respondEmbed(s, i, teamEmbed(r, team, members), false)
}

// teamEmbed lists a team's members with salaries, payroll and captain
func teamEmbed(r *models.Roster, team string, members []models.Member) *discordgo.MessageEmbed {
	info := models.GetTeamInfo(team)
	sort.Slice(members, func(a, b int) bool {
		va, _ := members[a].SalaryValue()
		vb, _ := members[b].SalaryValue()
		return va > vb
	})

	var sb strings.Builder
	for idx := range members {
		m := &members[idx]
		marker := ""
		if m.Captain {
			marker = " ©"
		}
		sb.WriteString(fmt.Sprintf("<@%s> **%s**%s: %s\n", m.DiscordID, m.Nickname, marker, formatSalary(m)))
	}

	captain := "None"
	if c, ok := r.CaptainOf(team); ok {
		captain = fmt.Sprintf("<@%s>", c.DiscordID)
	}
	embed := &discordgo.MessageEmbed{
		Title:       info.Name,
		Description: sb.String(),
		Color:       info.Color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Players", Value: fmt.Sprintf("%d/%d", len(members), models.MaxRosterSize), Inline: true},
			{Name: "Total Salary", Value: "$" + humanize.Comma(int64(r.Payroll(team))), Inline: true},
			{Name: "Captain", Value: captain, Inline: true},
		},
	}
	if !models.IsRealTeam(team) {
		embed.Fields[0].Value = fmt.Sprintf("%d", len(members))
	}
	if info.Logo != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.Logo}
	}
	return embed
}

func (hm *HandlerManager) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	hm.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "QRLS Bot Commands",
		Description: helpText,
		Color:       ColorPrimary,
	}, true)
}

const helpText = "**Captains** (transactions channels)\n" +
	"`/add player` - Sign a Free Agent\n" +
	"`/drop player` - Drop a player to 2 Day Waivers\n" +
	"`/trade player1 player2` - Propose a one-for-one trade\n" +
	"`/sub player` - Sign a Free Agent through Sunday 11:59 PM ET\n" +
	"`/waiverclaim player` - Claim a player on waivers\n\n" +
	"**Scheduling**\n" +
	"`/propose time` - Propose a match time\n" +
	"`/confirm time` - Confirm the other captain's time\n" +
	"`/clearschedule` - Delete the weekly match channels\n\n" +
	"**Everyone**\n" +
	"`/salary user` `/profile [user]` `/teaminfo team` `/help`\n\n" +
	"**Admins**\n" +
	"`/retire` `/unretire` `/updateuser` `/transaction` `/transactions` `/refresh` `/startweek` `/sendmessage`"

func (hm *HandlerManager) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, o := range i.ApplicationCommandData().Options {
		if o.Focused {
			focused = o
			break
		}
	}
	if focused == nil || focused.Name != "team" {
		return
	}

	var names []string
	if r, found := hm.cache.GetRoster(); found {
		names = r.Teams()
	}
	choices := teamChoices(names, focused.StringValue())

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		hm.logger.Debug("Autocomplete response failed:", err)
	}
}

// teamChoices merges sheet teams with the known teams and the holding states,
// filtered by a case-insensitive substring.
func teamChoices(sheetTeams []string, typed string) []*discordgo.ApplicationCommandOptionChoice {
	seen := make(map[string]bool)
	var all []string
	add := func(name string) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		all = append(all, name)
	}
	for _, t := range sheetTeams {
		add(t)
	}
	for _, t := range models.KnownTeamNames() {
		add(t)
	}
	sort.Strings(all)
	all = append(all, models.TeamFreeAgent, models.TeamWaivers, models.TeamRetired)

	typed = strings.ToLower(strings.TrimSpace(typed))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxAutocompleteChoices)
	for _, name := range all {
		if typed != "" && !strings.Contains(strings.ToLower(name), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
		if len(choices) == maxAutocompleteChoices {
			break
		}
	}
	return choices
}
