package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/roster"
	"github.com/qrls/qrls-bot/internal/waivers"
)

func (hm *HandlerManager) handleRetire(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	user, _ := optionUser(i, "player")
	if user == nil {
		hm.respondEphemeral(s, i, "❌ Please choose a player.")
		return
	}
	reason, _ := optionString(i, "reason")
	reason = strings.TrimSpace(reason)
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
	player, err := roster.ValidateRetire(r, user.ID)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	formerTeam := player.Team

	if err := hm.sheet.SetTeam(ctx, player.Row, models.TeamRetired); err != nil {
		hm.handleError(s, i, NewSystemError(err, "update sheet"), true)
		return
	}
	if err := hm.sheet.SetCaptain(ctx, player.Row, false); err != nil {
		hm.handleError(s, i, NewSystemError(err, "update captain"), true)
		return
	}
	hm.cache.Flush()

	// A retiring player leaves any waiver they were on
	if err := hm.waivers.Resolve(user.ID); err != nil && !errors.Is(err, waivers.ErrNoWaiver) {
		hm.logger.Warn("Failed to clear waiver for retired player:", err)
	}

	remove := append(hm.roles.AllTeamRoleIDs(i.GuildID),
		hm.config.CaptainsRoleID, hm.config.WaiversRoleID, hm.config.FreeAgentRoleID)
	warnings := hm.roles.Apply(i.GuildID, user.ID, remove, []string{hm.config.RetiredRoleID})

	content := fmt.Sprintf("<@%s> is retiring from the QRLS.", user.ID)
	if reason != "" {
		content += "\nReason: " + reason
	}
	hm.logTransaction(models.Transaction{
		Type:       models.TxRetire,
		PlayerID:   user.ID,
		FromTeam:   formerTeam,
		ToTeam:     models.TeamRetired,
		ApprovedBy: i.Member.User.ID,
		Detail:     reason,
	}, content)

	hm.followUp(s, i, fmt.Sprintf("✅ <@%s> has been retired.%s", user.ID, formatWarnings(warnings)))
}

func (hm *HandlerManager) handleUnretire(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireAdmin(s, i) {
		return
	}
	user, member := optionUser(i, "player")
	salary, ok := optionInt(i, "salary")
	if user == nil || !ok {
		hm.respondEphemeral(s, i, "❌ Please choose a player and a salary.")
		return
	}
	if salary < 0 {
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

	formerTeam := ""
	if existing, found := r.Find(user.ID); found {
		formerTeam = existing.Team
		if err := hm.sheet.SetSalary(ctx, existing.Row, salary); err != nil {
			hm.handleError(s, i, NewSystemError(err, "update salary"), true)
			return
		}
		if err := hm.sheet.SetTeam(ctx, existing.Row, models.TeamWaivers); err != nil {
			hm.handleError(s, i, NewSystemError(err, "update sheet"), true)
			return
		}
	} else {
		_, err := hm.sheet.Upsert(ctx, models.Member{
			DiscordID: user.ID,
			Nickname:  displayName(user, member),
			Salary:    strconv.Itoa(salary),
			Team:      models.TeamWaivers,
		})
		if err != nil {
			hm.handleError(s, i, NewSystemError(err, "append sheet row"), true)
			return
		}
	}
	hm.cache.Flush()

	warnings := hm.roles.Apply(i.GuildID, user.ID, []string{hm.config.RetiredRoleID}, []string{hm.config.WaiversRoleID})
	if _, err := hm.waivers.RecordDrop(i.GuildID, user.ID, models.TeamRetired, i.Member.User.ID); err != nil {
		hm.logger.Error("Failed to record waiver for unretired player:", err)
		warnings = append(warnings, "waiver record not saved")
	}

	hm.logTransaction(models.Transaction{
		Type:       models.TxUnretire,
		PlayerID:   user.ID,
		FromTeam:   formerTeam,
		ToTeam:     models.TeamWaivers,
		ApprovedBy: i.Member.User.ID,
		Detail:     "salary " + strconv.Itoa(salary),
	}, fmt.Sprintf("<@%s> has unretired and will be placed on 2 Day Waivers.", user.ID))

	hm.followUp(s, i, fmt.Sprintf("✅ <@%s> is back on waivers with a salary of %d.%s", user.ID, salary, formatWarnings(warnings)))
}
