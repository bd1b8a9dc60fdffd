package bot

import (
	"fmt"
	"sync"

	"guildkeeper/application"
	"guildkeeper/bot/features/economy"
	"guildkeeper/bot/features/leaderboard"
	"guildkeeper/bot/features/moderation"
	"guildkeeper/bot/features/settings"
	"guildkeeper/bot/features/shop"
	"guildkeeper/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildVoiceStates

// messageCacheSize is how many messages per channel the state keeps so
// deletions can still be shown in the audit log
const messageCacheSize = 200

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // Register commands for one guild; empty registers globally
}

// Bot manages the Discord session, gateway event handlers and feature modules
type Bot struct {
	// Core components
	config     Config
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
	gateway    *Gateway
	auditLog   *AuditLog

	// Application coordinators
	activity    *application.ActivityRecorder
	reconciler  *application.VoiceReconciler
	enforcement *application.EnforcementCoordinator

	// Feature modules
	economy     *economy.Feature
	shop        *shop.Feature
	leaderboard *leaderboard.Feature
	moderation  *moderation.Feature
	settings    *settings.Feature

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a bot with all features wired. The gateway connection is
// opened separately by Open.
func New(config Config, uowFactory application.UnitOfWorkFactory, roller interfaces.DiceRoller) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = intents
	dg.State.MaxMessageCount = messageCacheSize

	gateway := NewGateway(dg)
	transactions := application.NewEconomyTransactions(uowFactory, gateway, roller, application.NewMemberLocks())

	bot := &Bot{
		config:      config,
		session:     dg,
		uowFactory:  uowFactory,
		gateway:     gateway,
		auditLog:    NewAuditLog(dg, uowFactory),
		activity:    application.NewActivityRecorder(uowFactory),
		reconciler:  application.NewVoiceReconciler(uowFactory, gateway),
		enforcement: application.NewEnforcementCoordinator(uowFactory, gateway),
		ready:       make(chan struct{}),
	}

	bot.economy = economy.New(uowFactory, transactions)
	bot.shop = shop.New(uowFactory, transactions)
	bot.leaderboard = leaderboard.New(uowFactory)
	bot.moderation = moderation.New(uowFactory, bot.enforcement)
	bot.settings = settings.New(uowFactory)

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleVoiceStateUpdate)
	dg.AddHandler(bot.handleGuildMemberAdd)
	dg.AddHandler(bot.handleGuildMemberRemove)
	dg.AddHandler(bot.handleGuildMemberUpdate)
	dg.AddHandler(bot.handleMessageDelete)

	return bot, nil
}

// Open connects to the gateway and registers slash commands
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	log.Info("Discord session opened")
	return nil
}

// Close gracefully shuts down the gateway connection
func (b *Bot) Close() error {
	return b.session.Close()
}

// Ready is closed once the gateway has delivered its first Ready event
func (b *Bot) Ready() <-chan struct{} {
	return b.ready
}

// Gateway exposes the platform adapter for background jobs
func (b *Bot) Gateway() *Gateway {
	return b.gateway
}

// Enforcement returns the coordinator shared with the ban expiry job
func (b *Bot) Enforcement() *application.EnforcementCoordinator {
	return b.enforcement
}

// AuditLog returns the audit log poster for event subscriptions
func (b *Bot) AuditLog() *AuditLog {
	return b.auditLog
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}
