package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/roster"
)

// beginCaptainWorkflow runs the checks shared by captain roster commands and
// defers the response. It returns the named player and a fresh sheet snapshot.
func (hm *HandlerManager) beginCaptainWorkflow(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, option string) (*discordgo.User, *discordgo.Member, *models.Roster, bool) {
	if !hm.requireCaptain(s, i) || !hm.requireTransactionsChannel(s, i) {
		return nil, nil, nil, false
	}
	user, member := optionUser(i, option)
	if user == nil {
		hm.respondEphemeral(s, i, "❌ Please choose a player.")
		return nil, nil, nil, false
	}
	if !hm.deferEphemeral(s, i) {
		return nil, nil, nil, false
	}
	r, err := hm.freshRoster(ctx)
	if err != nil {
		hm.handleError(s, i, err, true)
		return nil, nil, nil, false
	}
	return user, member, r, true
}

func (hm *HandlerManager) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()

	user, _, r, ok := hm.beginCaptainWorkflow(ctx, s, i, "player")
	if !ok {
		return
	}
	captainID := i.Member.User.ID
	req, err := roster.ValidateAdd(r, captainID, user.ID)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}

	guildID := i.GuildID
	team, playerID := req.Team, user.ID
	err = hm.requestApproval(&approvalRequest{
		Kind:            "Add",
		Summary:         fmt.Sprintf("**%s** wants to add <@%s> from Free Agency.", team, playerID),
		RequesterID:     captainID,
		OriginChannelID: i.ChannelID,
		Timeout:         addApprovalTimeout,
		Apply: func(ctx context.Context, adminID string) ([]string, error) {
			return hm.applyAdd(ctx, guildID, playerID, team, adminID)
		},
	})
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	hm.followUp(s, i, fmt.Sprintf("✅ Request to add <@%s> to **%s** sent for admin approval.", playerID, team))
}

func (hm *HandlerManager) applyAdd(ctx context.Context, guildID, playerID, team, adminID string) ([]string, error) {
	r, err := hm.freshRoster(ctx)
	if err != nil {
		return nil, err
	}
	player, err := roster.ValidateAddStillValid(r, playerID, team)
	if err != nil {
		return nil, err
	}
	if err := hm.sheet.SetTeam(ctx, player.Row, team); err != nil {
		return nil, NewSystemError(err, "update sheet")
	}
	hm.cache.Flush()

	teamRole, _ := hm.roles.TeamRoleID(guildID, team)
	warnings := hm.roles.Apply(guildID, playerID, []string{hm.config.FreeAgentRoleID}, []string{teamRole})

	hm.logTransaction(models.Transaction{
		Type:       models.TxAdd,
		PlayerID:   playerID,
		FromTeam:   models.TeamFreeAgent,
		ToTeam:     team,
		ApprovedBy: adminID,
	}, fmt.Sprintf("%s adds <@%s> to their roster from Free Agency.", hm.teamMention(guildID, team), playerID))
	return warnings, nil
}

func (hm *HandlerManager) handleDrop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()

	user, _, r, ok := hm.beginCaptainWorkflow(ctx, s, i, "player")
	if !ok {
		return
	}
	captainID := i.Member.User.ID
	req, err := roster.ValidateDrop(r, captainID, user.ID)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}

	guildID := i.GuildID
	team, playerID := req.Team, user.ID
	err = hm.requestApproval(&approvalRequest{
		Kind:            "Drop",
		Summary:         fmt.Sprintf("**%s** wants to drop <@%s> to 2 Day Waivers.", team, playerID),
		RequesterID:     captainID,
		OriginChannelID: i.ChannelID,
		Timeout:         dropApprovalTimeout,
		Apply: func(ctx context.Context, adminID string) ([]string, error) {
			return hm.applyDrop(ctx, guildID, playerID, team, captainID, adminID)
		},
	})
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	hm.followUp(s, i, fmt.Sprintf("✅ Request to drop <@%s> from **%s** sent for admin approval.", playerID, team))
}

func (hm *HandlerManager) applyDrop(ctx context.Context, guildID, playerID, team, captainID, adminID string) ([]string, error) {
	r, err := hm.freshRoster(ctx)
	if err != nil {
		return nil, err
	}
	player, err := roster.ValidateDropStillValid(r, playerID, team)
	if err != nil {
		return nil, err
	}
	if err := hm.sheet.SetTeam(ctx, player.Row, models.TeamWaivers); err != nil {
		return nil, NewSystemError(err, "update sheet")
	}
	hm.cache.Flush()

	teamRole, _ := hm.roles.TeamRoleID(guildID, team)
	warnings := hm.roles.Apply(guildID, playerID,
		[]string{teamRole},
		[]string{hm.config.FreeAgentRoleID, hm.config.WaiversRoleID})

	if _, err := hm.waivers.RecordDrop(guildID, playerID, team, captainID); err != nil {
		hm.logger.Error("Failed to record waiver for dropped player:", err)
		warnings = append(warnings, "waiver record not saved")
	}

	hm.logTransaction(models.Transaction{
		Type:       models.TxDrop,
		PlayerID:   playerID,
		FromTeam:   team,
		ToTeam:     models.TeamWaivers,
		ApprovedBy: adminID,
	}, fmt.Sprintf("%s drops <@%s> to **2 Day Waivers**.", hm.teamMention(guildID, team), playerID))
	return warnings, nil
}

func (hm *HandlerManager) handleSub(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()

	user, _, r, ok := hm.beginCaptainWorkflow(ctx, s, i, "player")
	if !ok {
		return
	}
	captainID := i.Member.User.ID
	req, err := roster.ValidateSub(r, captainID, user.ID)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	guildID := i.GuildID
	team, playerID := req.Team, user.ID
	if _, ok := hm.roles.TeamRoleID(guildID, team); !ok {
		hm.followUp(s, i, fmt.Sprintf("❌ No Discord role found for **%s**.", team))
		return
	}

	deadline := roster.SubDeadline(time.Now())
	err = hm.requestApproval(&approvalRequest{
		Kind:            "Sub",
		Summary:         fmt.Sprintf("**%s** wants to sign <@%s> on a sub deal until <t:%d:F>.", team, playerID, deadline.Unix()),
		RequesterID:     captainID,
		OriginChannelID: i.ChannelID,
		Timeout:         subApprovalTimeout,
		Apply: func(ctx context.Context, adminID string) ([]string, error) {
			return hm.applySub(ctx, guildID, playerID, captainID, adminID)
		},
	})
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	hm.followUp(s, i, fmt.Sprintf("✅ Sub request for <@%s> sent for admin approval.", playerID))
}

// applySub grants the team role until the weekly deadline. The sheet is not
// touched; a sub stays a Free Agent.
func (hm *HandlerManager) applySub(ctx context.Context, guildID, playerID, captainID, adminID string) ([]string, error) {
	r, err := hm.freshRoster(ctx)
	if err != nil {
		return nil, err
	}
	req, err := roster.ValidateSub(r, captainID, playerID)
	if err != nil {
		return nil, err
	}
	roleID, ok := hm.roles.TeamRoleID(guildID, req.Team)
	if !ok {
		return nil, NewUserError(fmt.Sprintf("❌ No Discord role found for **%s**.", req.Team))
	}
	if err := hm.session.GuildMemberRoleAdd(guildID, playerID, roleID); err != nil {
		return nil, NewSystemError(err, "add sub role")
	}

	deadline := roster.SubDeadline(time.Now())
	contract := &models.SubContract{
		GuildID:   guildID,
		PlayerID:  playerID,
		TeamName:  req.Team,
		RoleID:    roleID,
		ExpiresAt: deadline,
	}
	var warnings []string
	if err := hm.subs.Schedule(contract); err != nil {
		hm.logger.Error("Failed to schedule sub role removal:", err)
		warnings = append(warnings, "role removal not scheduled, remove it manually after the deadline")
	}

	hm.logTransaction(models.Transaction{
		Type:       models.TxSub,
		PlayerID:   playerID,
		FromTeam:   models.TeamFreeAgent,
		ToTeam:     req.Team,
		ApprovedBy: adminID,
		Detail:     "until " + deadline.Format(time.RFC3339),
	}, fmt.Sprintf("%s signs <@%s> on a sub deal", hm.teamMention(guildID, req.Team), playerID))
	return warnings, nil
}
