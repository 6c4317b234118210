package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/cache"
	"github.com/qrls/qrls-bot/internal/config"
	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/sheets"
	"github.com/qrls/qrls-bot/internal/storage"
	"github.com/qrls/qrls-bot/internal/subs"
	"github.com/qrls/qrls-bot/internal/waivers"
	"github.com/qrls/qrls-bot/pkg/logger"
)

// sheetTimeout bounds one workflow's sheet reads and writes
const sheetTimeout = 45 * time.Second

type HandlerManager struct {
	session   *discordgo.Session
	config    *config.Config
	logger    *logger.Logger
	cache     *cache.Cache
	sheet     *sheets.RosterSheet
	waivers   *waivers.Service
	subs      *subs.Scheduler
	ledger    *storage.TransactionStorage
	proposals *storage.ProposalStorage
	roles     *RoleManager

	cooldown   *cache.Cooldown
	pending    *cache.Pending
	commands   map[string]CommandHandler
	components map[string]ComponentHandler

	// players with a waiver decision in flight
	waiverLocks sync.Map
	sweepMu     sync.Mutex
}

type CommandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// ComponentHandler handles a button click routed by CustomID prefix
type ComponentHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, key, action string)

// Dependencies are the services the handlers act on
type Dependencies struct {
	Session   *discordgo.Session
	Config    *config.Config
	Logger    *logger.Logger
	Cache     *cache.Cache
	Sheet     *sheets.RosterSheet
	Waivers   *waivers.Service
	Subs      *subs.Scheduler
	Ledger    *storage.TransactionStorage
	Proposals *storage.ProposalStorage
	Roles     *RoleManager
}

func NewHandlerManager(deps Dependencies) *HandlerManager {
	hm := &HandlerManager{
		session:    deps.Session,
		config:     deps.Config,
		logger:     deps.Logger,
		cache:      deps.Cache,
		sheet:      deps.Sheet,
		waivers:    deps.Waivers,
		subs:       deps.Subs,
		ledger:     deps.Ledger,
		proposals:  deps.Proposals,
		roles:      deps.Roles,
		cooldown:   cache.NewCooldown(deps.Config.CommandCooldown()),
		pending:    cache.NewPending(),
		commands:   make(map[string]CommandHandler),
		components: make(map[string]ComponentHandler),
	}

	hm.registerCommands()

	return hm
}

func (hm *HandlerManager) RegisterHandlers() {
	hm.session.AddHandler(hm.interactionCreate)
}

func (hm *HandlerManager) registerCommands() {
	hm.commands["add"] = hm.handleAdd
	hm.commands["drop"] = hm.handleDrop
	hm.commands["trade"] = hm.handleTrade
	hm.commands["sub"] = hm.handleSub
	hm.commands["waiverclaim"] = hm.handleWaiverClaim
	hm.commands["retire"] = hm.handleRetire
	hm.commands["unretire"] = hm.handleUnretire
	hm.commands["updateuser"] = hm.handleUpdateUser
	hm.commands["transaction"] = hm.handleTransaction
	hm.commands["transactions"] = hm.handleTransactions
	hm.commands["refresh"] = hm.handleRefresh
	hm.commands["sendmessage"] = hm.handleSendMessage
	hm.commands["startweek"] = hm.handleStartWeek
	hm.commands["clearschedule"] = hm.handleClearSchedule
	hm.commands["propose"] = hm.handlePropose
	hm.commands["confirm"] = hm.handleConfirm
	hm.commands["salary"] = hm.handleSalary
	hm.commands["profile"] = hm.handleProfile
	hm.commands["teaminfo"] = hm.handleTeamInfo
	hm.commands["help"] = hm.handleHelp

	hm.components[prefixApproval] = hm.handleApprovalClick
	hm.components[prefixTradeCaptain] = hm.handleTradeCaptainClick
	hm.components[prefixWaiverConfirm] = hm.handleWaiverConfirmClick
	hm.components[prefixWaiverAdmin] = hm.handleWaiverAdminClick
	hm.components[prefixClearSchedule] = hm.handleClearScheduleClick
}

// RegisterCommands overwrites the guild's slash commands with ours
func (hm *HandlerManager) RegisterCommands() error {
	appID := hm.session.State.User.ID
	registered, err := hm.session.ApplicationCommandBulkOverwrite(appID, hm.config.GuildID, commandDefinitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	hm.logger.Infof("Registered %d slash commands", len(registered))
	return nil
}

func (hm *HandlerManager) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		hm.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		hm.handleComponent(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		hm.handleAutocomplete(s, i)
	}
}

func (hm *HandlerManager) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil {
		hm.respondEphemeral(s, i, "❌ Commands only work inside the server.")
		return
	}
	name := i.ApplicationCommandData().Name
	handler, exists := hm.commands[name]
	if !exists {
		hm.logger.Warn("Unknown command:", name)
		return
	}

	if ok, remaining := hm.allowCommand(i.Member); !ok {
		hm.respondEphemeral(s, i, cooldownMessage(remaining))
		return
	}

	hm.logger.WithFields(logger.Fields{
		"command": name,
		"user_id": i.Member.User.ID,
		"channel": i.ChannelID,
	}).Debug("Slash command")
	handler(s, i)
}

// allowCommand applies the per-user cooldown. Admins are never limited.
func (hm *HandlerManager) allowCommand(member *discordgo.Member) (bool, time.Duration) {
	if hm.isAdmin(member) {
		return true, 0
	}
	return hm.cooldown.Allow(member.User.ID)
}

func cooldownMessage(remaining time.Duration) string {
	return fmt.Sprintf("⏳ You’re using commands too quickly! Please wait **%.1f seconds**.", remaining.Seconds())
}

func (hm *HandlerManager) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id := i.MessageComponentData().CustomID
	prefix, key, action, ok := parseCustomID(id)
	if !ok {
		hm.logger.Warn("Unrecognised component:", id)
		return
	}
	handler, exists := hm.components[prefix]
	if !exists {
		hm.logger.Warn("No handler for component:", id)
		return
	}
	if i.Member == nil {
		hm.respondEphemeral(s, i, "❌ Buttons only work inside the server.")
		return
	}
	handler(s, i, key, action)
}

// ensureRosterLoaded returns the cached roster, reloading it from the sheet
// once the cache has expired
func (hm *HandlerManager) ensureRosterLoaded(ctx context.Context) (*models.Roster, error) {
	r, found := hm.cache.GetRoster()
	if !found {
		hm.logger.Info("Cache expired, auto-reloading roster...")
		if err := hm.sheet.LoadInitialData(ctx, hm.cache); err != nil {
			return nil, err
		}
		r, found = hm.cache.GetRoster()
		if !found {
			return nil, fmt.Errorf("failed to load roster after reload")
		}
	}
	return r, nil
}

// freshRoster reads the sheet for a workflow and refreshes the cache on the way
func (hm *HandlerManager) freshRoster(ctx context.Context) (*models.Roster, error) {
	r, err := hm.sheet.Roster(ctx)
	if err != nil {
		return nil, NewSystemError(err, "read sheet")
	}
	hm.cache.SetRoster(r)
	return r, nil
}

// lockWaiver guards a player's waiver against concurrent decisions
func (hm *HandlerManager) lockWaiver(playerID string) (unlock func(), ok bool) {
	if _, busy := hm.waiverLocks.LoadOrStore(playerID, struct{}{}); busy {
		return nil, false
	}
	return func() { hm.waiverLocks.Delete(playerID) }, true
}
