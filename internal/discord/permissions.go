package discord

import (
	"github.com/bwmarrin/discordgo"
)

// channelLookup resolves a channel ID, normally from the state cache with a
// REST fallback.
type channelLookup func(id string) (*discordgo.Channel, error)

func hasRole(member *discordgo.Member, roleID string) bool {
	if member == nil || roleID == "" {
		return false
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// isAdmin is true for members with the Administrator permission or the
// configured admin role.
func (hm *HandlerManager) isAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return hasRole(member, hm.config.AdminsRoleID)
}

func (hm *HandlerManager) isCaptain(member *discordgo.Member) bool {
	return hasRole(member, hm.config.CaptainsRoleID)
}

// baseChannel returns the channel itself, or its parent when it is a thread.
func baseChannel(lookup channelLookup, channelID string) (*discordgo.Channel, error) {
	ch, err := lookup(channelID)
	if err != nil {
		return nil, err
	}
	if ch.IsThread() && ch.ParentID != "" {
		return lookup(ch.ParentID)
	}
	return ch, nil
}

// inCategory reports whether channelID sits under categoryID. Threads count
// as their parent channel.
func inCategory(lookup channelLookup, channelID, categoryID string) bool {
	if categoryID == "" {
		return false
	}
	ch, err := baseChannel(lookup, channelID)
	if err != nil {
		return false
	}
	return ch.ParentID == categoryID
}

func (hm *HandlerManager) lookupChannel(id string) (*discordgo.Channel, error) {
	if ch, err := hm.session.State.Channel(id); err == nil {
		return ch, nil
	}
	return hm.session.Channel(id)
}

// requireAdmin answers non-admins and reports whether to continue
func (hm *HandlerManager) requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if hm.isAdmin(i.Member) {
		return true
	}
	hm.respondEphemeral(s, i, "🚫 You must be an admin to use this command.")
	return false
}

func (hm *HandlerManager) requireCaptain(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if hm.isCaptain(i.Member) || hm.isAdmin(i.Member) {
		return true
	}
	hm.respondEphemeral(s, i, "🚫 Only team captains can use this command.")
	return false
}

// requireTransactionsChannel keeps workflow commands inside the transactions
// category.
func (hm *HandlerManager) requireTransactionsChannel(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if inCategory(hm.lookupChannel, i.ChannelID, hm.config.TransactionsCategoryID) {
		return true
	}
	hm.respondEphemeral(s, i, "❌ This command can only be used in the transactions category.")
	return false
}
