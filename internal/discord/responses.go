package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Discord color constants
const (
	ColorPrimary = 0x5865F2
	ColorSuccess = 0x57F287
	ColorDanger  = 0xED4245
	ColorWarning = 0xFEE75C
	ColorInfo    = 0x3498DB
)

var mentionRolesAndUsers = &discordgo.MessageAllowedMentions{
	Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeRoles, discordgo.AllowedMentionTypeUsers},
}

var mentionUsers = &discordgo.MessageAllowedMentions{
	Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
}

func (hm *HandlerManager) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		hm.logger.Error("Failed to send response:", err)
	}
}

func (hm *HandlerManager) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		hm.logger.Error("Failed to send embed response:", err)
	}
}

// deferEphemeral acknowledges a slow command; answers go through followUp.
func (hm *HandlerManager) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		hm.logger.Error("Failed to defer interaction:", err)
		return false
	}
	return true
}

// deferUpdate acknowledges a button click without changing the message yet.
func (hm *HandlerManager) deferUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		hm.logger.Error("Failed to acknowledge button:", err)
		return false
	}
	return true
}

func (hm *HandlerManager) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		hm.logger.Error("Failed to send follow-up message:", err)
	}
}

func (hm *HandlerManager) followUpEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, false, params); err != nil {
		hm.logger.Error("Failed to send follow-up embed:", err)
	}
}

// send posts to a channel, logging rather than returning failures
func (hm *HandlerManager) send(channelID string, msg *discordgo.MessageSend) *discordgo.Message {
	if channelID == "" {
		return nil
	}
	m, err := hm.session.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		hm.logger.Error("Failed to send message to channel", channelID+":", err)
		return nil
	}
	return m
}

// editDecided replaces a request message's content and disables its buttons
func (hm *HandlerManager) editDecided(msg *discordgo.Message, content string) {
	if msg == nil {
		return
	}
	edit := &discordgo.MessageEdit{
		ID:         msg.ID,
		Channel:    msg.ChannelID,
		Content:    &content,
		Components: disableComponents(msg.Components),
	}
	if _, err := hm.session.ChannelMessageEditComplex(edit); err != nil {
		hm.logger.Error("Failed to update decided request:", err)
	}
}
