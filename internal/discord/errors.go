package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/roster"
	"github.com/qrls/qrls-bot/internal/waivers"
	"github.com/qrls/qrls-bot/pkg/logger"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Step        string // Workflow step that failed
	Err         error  // Underlying error
}

func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string) *BotError {
	return &BotError{UserMessage: userMessage, LogMessage: "rejected: " + userMessage}
}

// NewSystemError creates an error for system issues (sheet, Discord API, files)
func NewSystemError(err error, step string) *BotError {
	return &BotError{
		UserMessage: fmt.Sprintf("❌ Failed at step **%s** (check bot console).", step),
		LogMessage:  "failed at step " + step,
		Step:        step,
		Err:         err,
	}
}

// userMessage maps domain errors to what the requester sees
func userMessage(err error) (string, bool) {
	var ruleErr *roster.RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.Message, true
	}
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.Err == nil {
		return botErr.UserMessage, true
	}
	switch {
	case errors.Is(err, waivers.ErrNoWaiver):
		return "❌ No active waiver record exists for that player.", true
	case errors.Is(err, waivers.ErrWaiverExpired):
		return "⏰ The waiver period for that player has ended.", true
	case errors.Is(err, waivers.ErrOutranked):
		return "❌ A team with higher waiver priority has already claimed this player.", true
	case errors.Is(err, waivers.ErrTiedRank):
		return "❌ A team with the same waiver priority has already claimed this player.", true
	case errors.Is(err, waivers.ErrNotClaimant):
		return "🚫 Only the captain who placed the claim can answer.", true
	case errors.Is(err, waivers.ErrAnswered):
		return "ℹ️ This claim has already been answered.", true
	case errors.Is(err, waivers.ErrNoClaim):
		return "❌ That waiver has no claim.", true
	}
	return "", false
}

// handleError logs system failures and tells the user what went wrong.
// deferred selects a follow-up over an initial response.
func (hm *HandlerManager) handleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	msg, isUser := userMessage(err)
	if !isUser {
		fields := logger.Fields{"user_id": interactionUserID(i)}
		if i.Type == discordgo.InteractionApplicationCommand {
			fields["command"] = i.ApplicationCommandData().Name
		}
		var botErr *BotError
		if errors.As(err, &botErr) {
			fields["step"] = botErr.Step
			msg = botErr.UserMessage
		} else {
			msg = "❌ Something went wrong (check bot console)."
		}
		hm.logger.WithFields(fields).Error("Interaction failed:", err)
	}

	if deferred {
		hm.followUp(s, i, msg)
	} else {
		hm.respondEphemeral(s, i, msg)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
