package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrls/qrls-bot/internal/config"
)

func testState(t *testing.T) *discordgo.State {
	t.Helper()
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "g"}))
	for _, ch := range []*discordgo.Channel{
		{ID: "tx-cat", GuildID: "g", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "other-cat", GuildID: "g", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "tx-chan", GuildID: "g", Type: discordgo.ChannelTypeGuildText, ParentID: "tx-cat"},
		{ID: "general", GuildID: "g", Type: discordgo.ChannelTypeGuildText, ParentID: "other-cat"},
		{ID: "tx-thread", GuildID: "g", Type: discordgo.ChannelTypeGuildPublicThread, ParentID: "tx-chan"},
	} {
		require.NoError(t, state.ChannelAdd(ch))
	}
	return state
}

func TestInCategory(t *testing.T) {
	state := testState(t)
	lookup := func(id string) (*discordgo.Channel, error) { return state.Channel(id) }

	assert.True(t, inCategory(lookup, "tx-chan", "tx-cat"))
	assert.True(t, inCategory(lookup, "tx-thread", "tx-cat"), "threads count as their parent channel")
	assert.False(t, inCategory(lookup, "general", "tx-cat"))
	assert.False(t, inCategory(lookup, "missing", "tx-cat"))
	assert.False(t, inCategory(lookup, "tx-chan", ""), "an unset category never matches")
}

func TestBaseChannel(t *testing.T) {
	state := testState(t)
	lookup := func(id string) (*discordgo.Channel, error) { return state.Channel(id) }

	ch, err := baseChannel(lookup, "tx-thread")
	require.NoError(t, err)
	assert.Equal(t, "tx-chan", ch.ID)

	ch, err = baseChannel(lookup, "general")
	require.NoError(t, err)
	assert.Equal(t, "general", ch.ID)
}

func TestIsAdminAndCaptain(t *testing.T) {
	hm := &HandlerManager{config: &config.Config{AdminsRoleID: "admins", CaptainsRoleID: "caps"}}

	assert.True(t, hm.isAdmin(&discordgo.Member{Permissions: discordgo.PermissionAdministrator}))
	assert.True(t, hm.isAdmin(&discordgo.Member{Roles: []string{"x", "admins"}}))
	assert.False(t, hm.isAdmin(&discordgo.Member{Roles: []string{"caps"}}))
	assert.False(t, hm.isAdmin(nil))

	assert.True(t, hm.isCaptain(&discordgo.Member{Roles: []string{"caps"}}))
	assert.False(t, hm.isCaptain(&discordgo.Member{Roles: []string{"admins"}}))
}

func TestHasRole_EmptyRoleID(t *testing.T) {
	assert.False(t, hasRole(&discordgo.Member{Roles: []string{""}}, ""))
}

func TestRoleByName(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "1", Name: "Kings"},
		{ID: "2", Name: "Speed Demons "},
	}
	id, ok := roleByName(roles, "kings")
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	id, ok = roleByName(roles, "Speed Demons")
	assert.True(t, ok)
	assert.Equal(t, "2", id)

	_, ok = roleByName(roles, "Astro")
	assert.False(t, ok)
}

func TestFormatWarnings(t *testing.T) {
	assert.Empty(t, formatWarnings(nil))
	assert.Equal(t, "\n⚠️ Role sync: a; b", formatWarnings([]string{"a", "b"}))
}
