package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/discord"
	"github.com/qrls/qrls-bot/internal/models"
)

// maxChangesPerEmbed keeps a single post under Discord's description limit
const maxChangesPerEmbed = 25

// startRosterMonitor watches the sheet for edits made outside the bot
func (b *Bot) startRosterMonitor() {
	if b.config.RosterCheckInterval() <= 0 {
		b.logger.Info("Roster monitor disabled")
		return
	}
	b.wg.Add(1)
	go b.rosterMonitorLoop()
}

func (b *Bot) rosterMonitorLoop() {
	defer b.wg.Done()
	b.logger.Info("Starting roster monitor")

	// The first snapshot is the baseline; nothing is posted for it
	lastCheck := time.Now().UTC()
	b.checkRosterChanges(lastCheck)

	ticker := time.NewTicker(b.config.RosterCheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			since := lastCheck
			lastCheck = time.Now().UTC()
			b.checkRosterChanges(since)
		case <-b.stopChan:
			b.logger.Info("Stopping roster monitor")
			return
		}
	}
}

// checkRosterChanges reloads the sheet, refreshes the cache and posts team
// changes the bot did not make itself since the previous check.
func (b *Bot) checkRosterChanges(since time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), sheetLoadTimeout)
	defer cancel()

	current, err := b.sheet.Roster(ctx)
	if err != nil {
		b.logger.Error("Failed to fetch roster for monitor:", err)
		return
	}
	b.dataCache.SetRoster(current)

	previous := b.lastRoster
	b.lastRoster = current
	if previous == nil {
		b.logger.Infof("Roster monitor baseline: %d rows", len(current.Members))
		return
	}

	changes := models.DiffRosters(previous, current)
	if len(changes) == 0 {
		return
	}
	changes = b.withoutBotMoves(changes, since)
	if len(changes) == 0 {
		return
	}

	b.logger.Info("Detected", len(changes), "manual sheet change(s)")
	b.postRosterChanges(changes)
}

// withoutBotMoves drops changes already recorded in the ledger since the
// previous check.
func (b *Bot) withoutBotMoves(changes []models.RosterChange, since time.Time) []models.RosterChange {
	txs, err := b.ledger.GetAllTransactions()
	if err != nil {
		b.logger.Warn("Failed to read ledger for roster monitor:", err)
		return changes
	}
	recorded := make(map[string]bool)
	for _, tx := range txs {
		if !tx.Timestamp.Before(since) {
			recorded[tx.PlayerID+"|"+strings.ToLower(tx.ToTeam)] = true
		}
	}
	var out []models.RosterChange
	for _, c := range changes {
		if !recorded[c.DiscordID+"|"+strings.ToLower(c.NewTeam)] {
			out = append(out, c)
		}
	}
	return out
}

func (b *Bot) postRosterChanges(changes []models.RosterChange) {
	channelID := b.config.ChangelogChannelID
	if channelID == "" {
		return
	}
	for start := 0; start < len(changes); start += maxChangesPerEmbed {
		end := start + maxChangesPerEmbed
		if end > len(changes) {
			end = len(changes)
		}
		embed := rosterChangesEmbed(changes[start:end])
		if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
			b.logger.Error("Failed to send roster changes to Discord:", err)
			return
		}
	}
}

// rosterChangesEmbed creates a Discord embed listing sheet edits
func rosterChangesEmbed(changes []models.RosterChange) *discordgo.MessageEmbed {
	var description strings.Builder
	for _, c := range changes {
		switch {
		case c.Added:
			description.WriteString(fmt.Sprintf("➕ **%s** (<@%s>) added to the sheet on **%s**\n", c.Nickname, c.DiscordID, blankAs(c.NewTeam)))
		case c.Removed:
			description.WriteString(fmt.Sprintf("➖ **%s** (<@%s>) removed from the sheet (was **%s**)\n", c.Nickname, c.DiscordID, blankAs(c.OldTeam)))
		default:
			description.WriteString(fmt.Sprintf("🔁 **%s** (<@%s>) **%s** → **%s**\n", c.Nickname, c.DiscordID, blankAs(c.OldTeam), blankAs(c.NewTeam)))
		}
	}
	return &discordgo.MessageEmbed{
		Title:       "📝 Sheet Edits",
		Description: description.String(),
		Color:       discord.ColorWarning,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func blankAs(team string) string {
	if strings.TrimSpace(team) == "" {
		return "blank"
	}
	return team
}
