package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/cache"
	"github.com/qrls/qrls-bot/internal/config"
	"github.com/qrls/qrls-bot/internal/discord"
	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/sheets"
	"github.com/qrls/qrls-bot/internal/storage"
	"github.com/qrls/qrls-bot/internal/subs"
	"github.com/qrls/qrls-bot/internal/waivers"
	"github.com/qrls/qrls-bot/pkg/logger"
)

type Bot struct {
	session   *discordgo.Session
	config    *config.Config
	logger    *logger.Logger
	dataCache *cache.Cache
	sheet     *sheets.RosterSheet
	waiverSvc *waivers.Service
	subs      *subs.Scheduler
	ledger    *storage.TransactionStorage
	handlers  *discord.HandlerManager

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// last roster the sheet monitor saw
	lastRoster *models.Roster
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Guild members for role changes, guild messages for channel posts
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	sheetsClient, err := sheets.NewClient(ctx, cfg.GoogleSheetID, cfg.GoogleServiceAccountJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	rosterSheet := sheets.NewRosterSheet(
		sheetsClient.Worksheet(cfg.GoogleWorksheet),
		sheetsClient.Worksheet(cfg.WaiverOrderWorksheet),
	)

	waiverStore, err := storage.NewWaiverStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open waiver storage: %w", err)
	}
	subStore, err := storage.NewSubStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open sub storage: %w", err)
	}
	proposals, err := storage.NewProposalStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open proposal storage: %w", err)
	}
	ledger, err := storage.NewTransactionStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction ledger: %w", err)
	}

	roles := discord.NewRoleManager(session, cfg, log)

	b := &Bot{
		session:   session,
		config:    cfg,
		logger:    log,
		dataCache: cache.New(cfg.CacheDuration()),
		sheet:     rosterSheet,
		waiverSvc: waivers.NewService(waiverStore),
		subs:      subs.NewScheduler(subStore, roles, log),
		ledger:    ledger,
		stopChan:  make(chan struct{}),
	}

	b.handlers = discord.NewHandlerManager(discord.Dependencies{
		Session:   session,
		Config:    cfg,
		Logger:    log,
		Cache:     b.dataCache,
		Sheet:     rosterSheet,
		Waivers:   b.waiverSvc,
		Subs:      b.subs,
		Ledger:    ledger,
		Proposals: proposals,
		Roles:     roles,
	})

	return b, nil
}

func (b *Bot) Start() error {
	b.handlers.RegisterHandlers()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	if err := b.handlers.RegisterCommands(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sheetLoadTimeout)
	defer cancel()
	if err := b.sheet.LoadInitialData(ctx, b.dataCache); err != nil {
		b.logger.Error("Failed to load initial data from sheets:", err)
	}

	n, err := b.subs.Rehydrate()
	if err != nil {
		b.logger.Error("Failed to rehydrate sub contracts:", err)
	} else {
		b.logger.Infof("Rehydrated %d sub contract(s)", n)
	}

	b.startWaiverMonitor()
	b.startRosterMonitor()

	return nil
}

func (b *Bot) Stop() error {
	b.stopOnce.Do(func() { close(b.stopChan) })
	b.wg.Wait()
	b.subs.Stop()
	return b.session.Close()
}
