package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/roster"
)

// tradeProposal waits for the opposing captain before it goes to the admins
type tradeProposal struct {
	GuildID           string
	RequesterID       string
	OpposingCaptainID string
	Player1ID         string
	Player2ID         string
	Team1             string
	Team2             string
	OriginChannelID   string
}

const captainChannelAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

func (hm *HandlerManager) handleTrade(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hm.requireCaptain(s, i) || !hm.requireTransactionsChannel(s, i) {
		return
	}
	p1, _ := optionUser(i, "player1")
	p2, _ := optionUser(i, "player2")
	if p1 == nil || p2 == nil {
		hm.respondEphemeral(s, i, "❌ Please choose both players.")
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
	req, err := roster.ValidateTrade(r, i.Member.User.ID, p1.ID, p2.ID)
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}

	proposal := &tradeProposal{
		GuildID:           i.GuildID,
		RequesterID:       req.Requester.DiscordID,
		OpposingCaptainID: req.OpposingCaptain.DiscordID,
		Player1ID:         p1.ID,
		Player2ID:         p2.ID,
		Team1:             req.Team1,
		Team2:             req.Team2,
		OriginChannelID:   i.ChannelID,
	}

	// The opposing captain needs to see the request channel to answer
	if ch, err := baseChannel(hm.lookupChannel, i.ChannelID); err == nil {
		if err := s.ChannelPermissionSet(ch.ID, proposal.OpposingCaptainID, discordgo.PermissionOverwriteTypeMember, captainChannelAccess, 0); err != nil {
			hm.logger.Warn("Failed to grant opposing captain channel access:", err)
		}
	}

	id := uuid.NewString()
	info := models.GetTeamInfo(req.Team1)
	embed := &discordgo.MessageEmbed{
		Title:       "Trade Proposal",
		Description: fmt.Sprintf("**%s** sends <@%s> to **%s** for <@%s>.", req.Team1, p1.ID, req.Team2, p2.ID),
		Color:       info.Color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: req.Team1 + " receives", Value: fmt.Sprintf("<@%s>", p2.ID), Inline: true},
			{Name: req.Team2 + " receives", Value: fmt.Sprintf("<@%s>", p1.ID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Only the opposing captain can respond. Expires in 24 hours."},
	}
	msg := hm.send(i.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>, <@%s> has proposed a trade.", proposal.OpposingCaptainID, proposal.RequesterID),
		Embeds:  []*discordgo.MessageEmbed{embed},
		Components: buttonRow(prefixTradeCaptain, id,
			buttonSpec{Label: "Approve", Action: actionApprove, Style: discordgo.SuccessButton},
			buttonSpec{Label: "Decline", Action: actionDecline, Style: discordgo.DangerButton},
		),
		AllowedMentions: mentionUsers,
	})
	if msg == nil {
		hm.handleError(s, i, NewSystemError(fmt.Errorf("trade proposal not posted"), "post trade proposal"), true)
		return
	}
	hm.pending.Put(pendingKey(prefixTradeCaptain, id), proposal, tradeCaptainTimeout)
	hm.followUp(s, i, fmt.Sprintf("✅ Trade proposal sent to <@%s>.", proposal.OpposingCaptainID))
}

func (hm *HandlerManager) handleTradeCaptainClick(s *discordgo.Session, i *discordgo.InteractionCreate, id, action string) {
	key := pendingKey(prefixTradeCaptain, id)
	v, ok := hm.pending.Peek(key)
	if !ok {
		hm.respondEphemeral(s, i, "⌛ This trade proposal has expired or was already answered.")
		return
	}
	proposal := v.(*tradeProposal)
	clicker := i.Member.User.ID
	if clicker != proposal.OpposingCaptainID {
		hm.respondEphemeral(s, i, "🚫 Only the opposing captain can respond to this trade.")
		return
	}
	if !hm.deferUpdate(s, i) {
		return
	}
	if _, ok := hm.pending.Take(key); !ok {
		hm.followUp(s, i, "⌛ This trade proposal was already answered.")
		return
	}

	if action != actionApprove {
		hm.editDecided(i.Message, fmt.Sprintf("❌ <@%s> declined the trade.", clicker))
		hm.send(proposal.OriginChannelID, &discordgo.MessageSend{
			Content:         fmt.Sprintf("<@%s> your trade proposal was declined.", proposal.RequesterID),
			AllowedMentions: mentionUsers,
		})
		return
	}

	p := *proposal
	err := hm.requestApproval(&approvalRequest{
		Kind: "Trade",
		Summary: fmt.Sprintf("**%s** trades <@%s> to **%s** for <@%s>. Accepted by <@%s>.",
			p.Team1, p.Player1ID, p.Team2, p.Player2ID, clicker),
		RequesterID:     p.RequesterID,
		OriginChannelID: p.OriginChannelID,
		Timeout:         tradeApprovalTimeout,
		Apply: func(ctx context.Context, adminID string) ([]string, error) {
			return hm.applyTrade(ctx, &p, adminID)
		},
	})
	if err != nil {
		hm.handleError(s, i, err, true)
		return
	}
	hm.editDecided(i.Message, fmt.Sprintf("✅ <@%s> accepted the trade. Waiting on admin approval.", clicker))
}

// applyTrade swaps the two players' team cells, then their team roles
func (hm *HandlerManager) applyTrade(ctx context.Context, p *tradeProposal, adminID string) ([]string, error) {
	r, err := hm.freshRoster(ctx)
	if err != nil {
		return nil, err
	}
	m1, m2, err := roster.ValidateTradeStillValid(r, p.Player1ID, p.Player2ID, p.Team1, p.Team2)
	if err != nil {
		return nil, err
	}

	if err := hm.sheet.SetTeam(ctx, m1.Row, p.Team2); err != nil {
		return nil, NewSystemError(err, "update sheet")
	}
	if err := hm.sheet.SetTeam(ctx, m2.Row, p.Team1); err != nil {
		// Put the first player back so the sheet never shows a half trade
		if revertErr := hm.sheet.SetTeam(ctx, m1.Row, p.Team1); revertErr != nil {
			hm.logger.Error("Failed to revert half-applied trade:", revertErr)
		}
		return nil, NewSystemError(err, "update sheet")
	}
	hm.cache.Flush()

	role1, _ := hm.roles.TeamRoleID(p.GuildID, p.Team1)
	role2, _ := hm.roles.TeamRoleID(p.GuildID, p.Team2)
	warnings := hm.roles.Apply(p.GuildID, p.Player1ID, []string{role1}, []string{role2})
	warnings = append(warnings, hm.roles.Apply(p.GuildID, p.Player2ID, []string{role2}, []string{role1})...)

	txs := tradeTransactions(p, adminID)
	hm.logTransaction(txs[0], fmt.Sprintf("%s trades <@%s> to %s for <@%s>",
		hm.teamMention(p.GuildID, p.Team1), p.Player1ID, hm.teamMention(p.GuildID, p.Team2), p.Player2ID))
	hm.recordTransaction(txs[1])
	return warnings, nil
}

// tradeTransactions returns one ledger row per player moved by p
func tradeTransactions(p *tradeProposal, adminID string) []models.Transaction {
	return []models.Transaction{
		{
			Type:       models.TxTrade,
			PlayerID:   p.Player1ID,
			FromTeam:   p.Team1,
			ToTeam:     p.Team2,
			ApprovedBy: adminID,
			Detail:     "for " + p.Player2ID,
		},
		{
			Type:       models.TxTrade,
			PlayerID:   p.Player2ID,
			FromTeam:   p.Team2,
			ToTeam:     p.Team1,
			ApprovedBy: adminID,
			Detail:     "for " + p.Player1ID,
		},
	}
}
