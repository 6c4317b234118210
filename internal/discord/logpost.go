package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/pkg/logger"
)

// teamMention pings the team role when one exists
func (hm *HandlerManager) teamMention(guildID, team string) string {
	if id, ok := hm.roles.TeamRoleID(guildID, team); ok {
		return fmt.Sprintf("<@&%s>", id)
	}
	return fmt.Sprintf("**%s**", team)
}

// logTransaction announces a completed move and records it in the ledger.
func (hm *HandlerManager) logTransaction(tx models.Transaction, content string) {
	hm.send(hm.config.TransactionsChannelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: mentionRolesAndUsers,
	})

	hm.recordTransaction(tx)
}

// recordTransaction appends tx to the ledger without posting
func (hm *HandlerManager) recordTransaction(tx models.Transaction) {
	saved, err := hm.ledger.Append(tx)
	if err != nil {
		hm.logger.Error("Failed to record transaction:", err)
		return
	}
	hm.logger.WithFields(logger.Fields{
		"tx_id":     saved.ID,
		"type":      saved.Type,
		"player_id": saved.PlayerID,
		"from":      saved.FromTeam,
		"to":        saved.ToTeam,
	}).Info("Transaction recorded")
}

// logChange posts an admin edit to the changelog channel
func (hm *HandlerManager) logChange(content string) {
	hm.send(hm.config.ChangelogChannelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}
