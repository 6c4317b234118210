package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/qrls/qrls-bot/pkg/logger"
)

// Approval timeouts per workflow
const (
	addApprovalTimeout    = 24 * time.Hour
	dropApprovalTimeout   = time.Hour
	subApprovalTimeout    = time.Hour
	tradeCaptainTimeout   = 24 * time.Hour
	tradeApprovalTimeout  = 24 * time.Hour
	defaultApprovalExpiry = time.Hour
)

const pendingAdminApproval = `Your transaction is pending "Admin Approval"`

// approvalRequest is a roster move waiting on an admin's button click
type approvalRequest struct {
	Kind            string
	Summary         string
	RequesterID     string
	OriginChannelID string
	Timeout         time.Duration

	// Apply re-validates against the sheet and performs the move. It returns
	// role warnings that did not stop the move.
	Apply func(ctx context.Context, adminID string) ([]string, error)
}

// requestApproval posts the request for admins and tells the origin channel
// it is pending.
func (hm *HandlerManager) requestApproval(req *approvalRequest) error {
	id := uuid.NewString()
	channelID := hm.config.PendingTransactionsChannelID
	if channelID == "" {
		channelID = req.OriginChannelID
	}

	content := fmt.Sprintf("**%s Request**\n%s\nRequested by <@%s>", req.Kind, req.Summary, req.RequesterID)
	if hm.config.AdminsRoleID != "" {
		content = fmt.Sprintf("<@&%s>\n%s", hm.config.AdminsRoleID, content)
	}
	msg, err := hm.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		Components:      approveRejectButtons(prefixApproval, id),
		AllowedMentions: mentionRolesAndUsers,
	})
	if err != nil {
		return NewSystemError(err, "post approval request")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultApprovalExpiry
	}
	hm.pending.Put(pendingKey(prefixApproval, id), req, timeout)

	hm.logger.WithFields(logger.Fields{
		"approval_id": id,
		"kind":        req.Kind,
		"requester":   req.RequesterID,
		"message_id":  msg.ID,
	}).Info("Approval requested")

	hm.send(req.OriginChannelID, &discordgo.MessageSend{Content: pendingAdminApproval})
	return nil
}

func pendingKey(prefix, id string) string {
	return prefix + ":" + id
}

func (hm *HandlerManager) handleApprovalClick(s *discordgo.Session, i *discordgo.InteractionCreate, id, action string) {
	if !hm.isAdmin(i.Member) {
		hm.respondEphemeral(s, i, "🚫 Only admins can approve or reject transactions.")
		return
	}
	if !hm.deferUpdate(s, i) {
		return
	}

	v, ok := hm.pending.Take(pendingKey(prefixApproval, id))
	if !ok {
		hm.followUp(s, i, "⌛ This request has expired or was already handled.")
		hm.editDecided(i.Message, i.Message.Content+"\n\n⌛ Expired")
		return
	}
	req := v.(*approvalRequest)
	adminID := i.Member.User.ID
	log := hm.logger.WithFields(logger.Fields{"approval_id": id, "kind": req.Kind, "admin_id": adminID})

	if action != actionApprove {
		log.Info("Approval rejected")
		hm.editDecided(i.Message, fmt.Sprintf("%s\n\n❌ Rejected by <@%s>", i.Message.Content, adminID))
		hm.send(req.OriginChannelID, &discordgo.MessageSend{
			Content:         fmt.Sprintf("❌ <@%s> your %s request was rejected by an admin.", req.RequesterID, req.Kind),
			AllowedMentions: mentionUsers,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sheetTimeout)
	defer cancel()
	warnings, err := req.Apply(ctx, adminID)
	if err != nil {
		msg, isUser := userMessage(err)
		if !isUser {
			log.Error("Approved request failed:", err)
			msg = fmt.Sprintf("❌ Approval failed: %v", err)
		}
		hm.editDecided(i.Message, fmt.Sprintf("%s\n\n⚠️ Approved by <@%s> but not applied: %s", i.Message.Content, adminID, msg))
		hm.send(req.OriginChannelID, &discordgo.MessageSend{
			Content:         fmt.Sprintf("⚠️ <@%s> your %s request could not be completed: %s", req.RequesterID, req.Kind, msg),
			AllowedMentions: mentionUsers,
		})
		hm.followUp(s, i, msg)
		return
	}

	log.Info("Approval applied")
	hm.editDecided(i.Message, fmt.Sprintf("%s\n\n✅ Approved by <@%s>%s", i.Message.Content, adminID, formatWarnings(warnings)))
	hm.send(req.OriginChannelID, &discordgo.MessageSend{
		Content:         fmt.Sprintf("✅ <@%s> your %s request was approved.", req.RequesterID, req.Kind),
		AllowedMentions: mentionUsers,
	})
}
