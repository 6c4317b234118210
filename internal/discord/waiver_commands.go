package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/roster"
	"github.com/qrls/qrls-bot/internal/waivers"
	"github.com/qrls/qrls-bot/pkg/logger"
)

func (hm *HandlerManager) handleWaiverClaim(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireCaptain(s, i) || !hm.requireTransactionsChannel(s, i) {
		return
	}
	user, member := optionUser(i, "player")
	if user == nil {
		hm.respondEphemeral(s, i, "❌ Please choose a player.")
		return
	}
	if member != nil && hm.config.WaiversRoleID != "" && !hasRole(member, hm.config.WaiversRoleID) {
		hm.respondEphemeral(s, i, fmt.Sprintf("❌ <@%s> is not on waivers.", user.ID))
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
	claimantID := i.Member.User.ID
	team, err := roster.ValidateClaim(r, claimantID, user.ID)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}

	order, err := hm.sheet.WaiverOrder(ctx)
	if err != nil {
		hm.handleError(s, i, NewSystemError(err, "read waiver order"), true)
		return
	}
	rank, err := roster.ClaimRank(order, team)
	if err != nil {
		hm.logger.Warnf("Team %s missing from waiver order", team)
		hm.handleError(s, i, err, true)
		return
	}

	res, err := hm.waivers.PlaceClaim(user.ID, models.Claim{
		TeamName:        team,
		TeamRank:        rank,
		ClaimedByID:     claimantID,
		OriginChannelID: i.ChannelID,
	})
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}

	hm.logger.WithFields(logger.Fields{
		"player_id": user.ID,
		"team":      team,
		"rank":      rank,
		"replaced":  res.Outcome == waivers.ClaimReplaced,
	}).Info("Waiver claim placed")

	expires := res.Waiver.ExpiresAt.Unix()
	if res.Outcome == waivers.ClaimReplaced {
		prev := res.Replaced
		hm.send(prev.OriginChannelID, &discordgo.MessageSend{
			Content: fmt.Sprintf("<@%s> your claim on <@%s> for **%s** was replaced by a team with higher waiver priority.",
				prev.ClaimedByID, user.ID, prev.TeamName),
			AllowedMentions: mentionUsers,
		})
		hm.followUp(s, i, fmt.Sprintf("✅ **%s** (rank %d) now holds the claim on <@%s>, replacing **%s** (rank %d). Waivers end <t:%d:F>.",
			team, rank, user.ID, prev.TeamName, prev.EffectiveRank(), expires))
		return
	}
	hm.followUp(s, i, fmt.Sprintf("✅ **%s** (rank %d) has placed a claim on <@%s>. Waivers end <t:%d:F>.",
		team, rank, user.ID, expires))
}

// ProcessDueWaivers carries out the next step for every expired waiver. The
// waiver monitor calls it on a ticker; overlapping sweeps are skipped.
func (hm *HandlerManager) ProcessDueWaivers(ctx context.Context) {
	if !hm.sweepMu.TryLock() {
		hm.logger.Debug("Waiver sweep already running")
		return
	}
	defer hm.sweepMu.Unlock()

	actions, err := hm.waivers.Due()
	if err != nil {
		hm.logger.Error("Failed to load waivers:", err)
		if len(actions) == 0 {
			return
		}
	}
	for _, a := range actions {
		if ctx.Err() != nil {
			return
		}
		hm.processWaiverAction(ctx, a)
	}
}

// processWaiverAction re-reads the record under the player's lock and acts
// only if the step found by the sweep still applies.
func (hm *HandlerManager) processWaiverAction(ctx context.Context, due waivers.Action) {
	playerID := due.Waiver.PlayerID
	unlock, ok := hm.lockWaiver(playerID)
	if !ok {
		return
	}
	defer unlock()

	a, ok, err := hm.waivers.NextAction(playerID)
	if err != nil {
		if !errors.Is(err, waivers.ErrNoWaiver) {
			hm.logger.Error("Failed to reload waiver:", err)
		}
		return
	}
	if !ok || a.Kind != due.Kind {
		hm.logger.Debugf("Waiver for %s changed since the sweep started, skipping", playerID)
		return
	}

	w := a.Waiver
	hm.logger.WithFields(logger.Fields{
		"player_id": w.PlayerID,
		"action":    a.Kind.String(),
		"reason":    a.Reason,
	}).Info("Processing expired waiver")

	ctx, cancel := context.WithTimeout(ctx, sheetTimeout)
	defer cancel()

	switch a.Kind {
	case waivers.ActionFinalize:
		hm.finalizeWaiver(ctx, w)
	case waivers.ActionPrompt:
		hm.promptClaimant(w)
	case waivers.ActionRequestApproval:
		hm.requestWaiverApproval(w)
	}
}

// finalizeWaiver clears a player to Free Agency. The record survives a failed
// sheet write so the next sweep retries.
func (hm *HandlerManager) finalizeWaiver(ctx context.Context, w *models.Waiver) bool {
	r, err := hm.freshRoster(ctx)
	if err != nil {
		hm.logger.Error("Failed to read sheet for waiver finalize:", err)
		return false
	}
	player, found := r.Find(w.PlayerID)
	if found && player.IsOnWaivers() {
		if err := hm.sheet.SetTeam(ctx, player.Row, models.TeamFreeAgent); err != nil {
			hm.logger.Error("Failed to move player to Free Agent:", err)
			return false
		}
		hm.cache.Flush()
	} else if found {
		hm.logger.Warnf("Player %s left waivers outside the bot (now %s)", w.PlayerID, player.Team)
	}

	if warnings := hm.roles.Apply(w.GuildID, w.PlayerID, []string{hm.config.WaiversRoleID}, []string{hm.config.FreeAgentRoleID}); len(warnings) > 0 {
		hm.logger.Warn("Waiver finalize role sync:", warnings)
	}
	if err := hm.waivers.Resolve(w.PlayerID); err != nil {
		hm.logger.Error("Failed to delete waiver record:", err)
		return false
	}

	if found && player.IsOnWaivers() {
		hm.logTransaction(models.Transaction{
			Type:     models.TxWaiverFA,
			PlayerID: w.PlayerID,
			FromTeam: models.TeamWaivers,
			ToTeam:   models.TeamFreeAgent,
		}, fmt.Sprintf("<@%s> has cleared waivers and is now a Free Agent.", w.PlayerID))
	}
	return true
}

func (hm *HandlerManager) promptClaimant(w *models.Waiver) {
	c := w.Claim
	msg := hm.send(c.OriginChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> the waiver period for <@%s> has ended and **%s** holds the top claim. Do you still want to claim them?",
			c.ClaimedByID, w.PlayerID, c.TeamName),
		Components: buttonRow(prefixWaiverConfirm, w.PlayerID,
			buttonSpec{Label: "Yes", Action: actionYes, Style: discordgo.SuccessButton},
			buttonSpec{Label: "No", Action: actionNo, Style: discordgo.DangerButton},
		),
		AllowedMentions: mentionUsers,
	})
	if msg == nil {
		return
	}
	if _, err := hm.waivers.MarkPrompted(w.PlayerID); err != nil {
		hm.logger.Error("Failed to mark claim prompted:", err)
	}
}

// requestWaiverApproval sends a confirmed claim to the admins. The buttons
// carry the player ID so they keep working after a restart.
func (hm *HandlerManager) requestWaiverApproval(w *models.Waiver) {
	c := w.Claim
	channelID := hm.config.PendingTransactionsChannelID
	if channelID == "" {
		channelID = c.OriginChannelID
	}
	content := fmt.Sprintf("**Waiver Claim**\n**%s** (rank %d) claims <@%s>. Confirmed by <@%s>.",
		c.TeamName, c.EffectiveRank(), w.PlayerID, c.ClaimedByID)
	if hm.config.AdminsRoleID != "" {
		content = fmt.Sprintf("<@&%s>\n%s", hm.config.AdminsRoleID, content)
	}
	msg := hm.send(channelID, &discordgo.MessageSend{
		Content:         content,
		Components:      approveRejectButtons(prefixWaiverAdmin, w.PlayerID),
		AllowedMentions: mentionRolesAndUsers,
	})
	if msg == nil {
		return
	}
	if _, err := hm.waivers.MarkApprovalRequested(w.PlayerID); err != nil {
		hm.logger.Error("Failed to mark waiver approval requested:", err)
		return
	}
	hm.send(c.OriginChannelID, &discordgo.MessageSend{Content: pendingAdminApproval})
}

func (hm *HandlerManager) handleWaiverConfirmClick(s *discordgo.Session, i *discordgo.InteractionCreate, playerID, action string) {
	if !hm.deferUpdate(s, i) {
		return
	}
	unlock, ok := hm.lockWaiver(playerID)
	if !ok {
		hm.followUp(s, i, "⏳ This waiver is being processed, try again in a moment.")
		return
	}
	defer unlock()

	clicker := i.Member.User.ID
	if action == actionYes {
		w, err := hm.waivers.Confirm(playerID, clicker)
		if err != nil {
			hm.handleError(s, i, err, true)
			return
		}
		hm.editDecided(i.Message, fmt.Sprintf("✅ <@%s> confirmed the claim on <@%s>. Waiting on admin approval.", clicker, playerID))
		hm.requestWaiverApproval(w)
		return
	}

	w, err := hm.waivers.Decline(playerID, clicker)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	hm.editDecided(i.Message, fmt.Sprintf("❌ <@%s> declined the claim on <@%s>.", clicker, playerID))
	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()
	if !hm.finalizeWaiver(ctx, w) {
		hm.followUp(s, i, "⚠️ The claim was declined but the player could not be moved to Free Agency yet. The bot will retry.")
	}
}

func (hm *HandlerManager) handleWaiverAdminClick(s *discordgo.Session, i *discordgo.InteractionCreate, playerID, action string) {
	if !hm.isAdmin(i.Member) {
		hm.respondEphemeral(s, i, "🚫 Only admins can approve or reject waiver claims.")
		return
	}
	if !hm.deferUpdate(s, i) {
		return
	}
	unlock, ok := hm.lockWaiver(playerID)
	if !ok {
		hm.followUp(s, i, "⏳ This waiver is being processed, try again in a moment.")
		return
	}
	defer unlock()

	adminID := i.Member.User.ID
	w, err := hm.waivers.Get(playerID)
	if err != nil || w.Claim == nil || w.Claim.Status != models.ClaimConfirmed {
		if err != nil && !errors.Is(err, waivers.ErrNoWaiver) {
			hm.logger.Error("Failed to load waiver:", err)
		}
		hm.followUp(s, i, "ℹ️ This waiver claim was already handled.")
		hm.editDecided(i.Message, i.Message.Content+"\n\nℹ️ Already handled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()

	if action != actionApprove {
		hm.editDecided(i.Message, fmt.Sprintf("%s\n\n❌ Rejected by <@%s>", i.Message.Content, adminID))
		hm.send(w.Claim.OriginChannelID, &discordgo.MessageSend{
			Content:         fmt.Sprintf("❌ <@%s> your waiver claim on <@%s> was rejected by an admin.", w.Claim.ClaimedByID, playerID),
			AllowedMentions: mentionUsers,
		})
		if !hm.finalizeWaiver(ctx, w) {
			hm.followUp(s, i, "⚠️ Rejected, but the player could not be moved to Free Agency yet. The bot will retry.")
		}
		return
	}

	warnings, err := hm.awardClaim(ctx, w, adminID)
	if err != nil {
		if _, failErr := hm.waivers.ApprovalFailed(playerID); failErr != nil {
			hm.logger.Error("Failed to requeue waiver claim:", failErr)
		}
		msg, isUser := userMessage(err)
		if !isUser {
			hm.logger.Error("Waiver award failed:", err)
			msg = fmt.Sprintf("❌ Approval failed: %v", err)
		}
		hm.editDecided(i.Message, fmt.Sprintf("%s\n\n⚠️ Approved by <@%s> but not applied: %s", i.Message.Content, adminID, msg))
		hm.send(w.Claim.OriginChannelID, &discordgo.MessageSend{
			Content:         fmt.Sprintf("⚠️ <@%s> your waiver claim on <@%s> could not be completed: %s", w.Claim.ClaimedByID, playerID, msg),
			AllowedMentions: mentionUsers,
		})
		hm.followUp(s, i, msg)
		return
	}
	hm.editDecided(i.Message, fmt.Sprintf("%s\n\n✅ Approved by <@%s>%s", i.Message.Content, adminID, formatWarnings(warnings)))
}

// awardClaim moves the player to the claiming team and ends the waiver
func (hm *HandlerManager) awardClaim(ctx context.Context, w *models.Waiver, adminID string) ([]string, error) {
	team := w.Claim.TeamName
	r, err := hm.freshRoster(ctx)
	if err != nil {
		return nil, err
	}
	player, err := roster.ValidateAward(r, w.PlayerID, team)
	if err != nil {
		return nil, err
	}
	if err := hm.sheet.SetTeam(ctx, player.Row, team); err != nil {
		return nil, NewSystemError(err, "update sheet")
	}
	hm.cache.Flush()

	teamRole, _ := hm.roles.TeamRoleID(w.GuildID, team)
	warnings := hm.roles.Apply(w.GuildID, w.PlayerID,
		[]string{hm.config.WaiversRoleID, hm.config.FreeAgentRoleID},
		[]string{teamRole})

	if err := hm.waivers.Resolve(w.PlayerID); err != nil {
		hm.logger.Error("Failed to delete awarded waiver:", err)
	}

	hm.logTransaction(models.Transaction{
		Type:       models.TxWaiverWin,
		PlayerID:   w.PlayerID,
		FromTeam:   models.TeamWaivers,
		ToTeam:     team,
		ApprovedBy: adminID,
	}, fmt.Sprintf("%s has won the waiver claim for <@%s>", hm.teamMention(w.GuildID, team), w.PlayerID))
	return warnings, nil
}
