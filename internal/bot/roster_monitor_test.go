package bot

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/storage"
	"github.com/qrls/qrls-bot/pkg/logger"
)

func TestWithoutBotMoves(t *testing.T) {
	ledger, err := storage.NewTransactionStorage(t.TempDir())
	require.NoError(t, err)
	b := &Bot{ledger: ledger, logger: logger.NewWithOutput("error", io.Discard)}

	since := time.Now().UTC().Add(-time.Minute)
	_, err = ledger.Append(models.Transaction{Type: models.TxAdd, PlayerID: "1", ToTeam: "Kings"})
	require.NoError(t, err)
	_, err = ledger.Append(models.Transaction{
		Type: models.TxDrop, PlayerID: "2", ToTeam: "Waivers", Timestamp: since.Add(-time.Hour),
	})
	require.NoError(t, err)

	changes := []models.RosterChange{
		{DiscordID: "1", OldTeam: "Free Agent", NewTeam: "kings"},
		{DiscordID: "2", OldTeam: "Astro", NewTeam: "Waivers"},
		{DiscordID: "3", OldTeam: "Astro", NewTeam: "Armada"},
	}
	got := b.withoutBotMoves(changes, since)

	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].DiscordID, "ledger entries before the last check do not hide changes")
	assert.Equal(t, "3", got[1].DiscordID)
}

func TestWithoutBotMoves_Trade(t *testing.T) {
	ledger, err := storage.NewTransactionStorage(t.TempDir())
	require.NoError(t, err)
	b := &Bot{ledger: ledger, logger: logger.NewWithOutput("error", io.Discard)}

	since := time.Now().UTC().Add(-time.Minute)
	for _, tx := range []models.Transaction{
		{Type: models.TxTrade, PlayerID: "1", FromTeam: "Kings", ToTeam: "Astro"},
		{Type: models.TxTrade, PlayerID: "2", FromTeam: "Astro", ToTeam: "Kings"},
	} {
		_, err = ledger.Append(tx)
		require.NoError(t, err)
	}

	changes := []models.RosterChange{
		{DiscordID: "1", OldTeam: "Kings", NewTeam: "Astro"},
		{DiscordID: "2", OldTeam: "Astro", NewTeam: "Kings"},
	}
	assert.Empty(t, b.withoutBotMoves(changes, since), "both sides of a bot trade are hidden")
}

func TestRosterChangesEmbed(t *testing.T) {
	embed := rosterChangesEmbed([]models.RosterChange{
		{DiscordID: "1", Nickname: "Ace", OldTeam: "Kings", NewTeam: "Astro"},
		{DiscordID: "2", Nickname: "Bolt", NewTeam: "Waivers", Added: true},
		{DiscordID: "3", Nickname: "Comet", OldTeam: "", Removed: true},
	})

	assert.Contains(t, embed.Description, "🔁 **Ace** (<@1>) **Kings** → **Astro**")
	assert.Contains(t, embed.Description, "➕ **Bolt** (<@2>) added to the sheet on **Waivers**")
	assert.Contains(t, embed.Description, "➖ **Comet** (<@3>) removed from the sheet (was **blank**)")
}
