package cmd

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/application"
	"guildkeeper/bot"
	"guildkeeper/config"
	"guildkeeper/database"
	"guildkeeper/domain/events"
	"guildkeeper/domain/services"
	"guildkeeper/infrastructure"
	"guildkeeper/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting guildkeeper...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize NATS; local handlers still run when it is disabled
	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.Errorf("Error closing NATS connection: %v", err)
			}
		}()
	}

	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := eventPublisher.EnsureDomainEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Error("Failed to initialize metrics, continuing without them")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.Errorf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.GuildID,
	}, uowFactory, services.NewRandomRoller())
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	auditLog := discordBot.AuditLog()
	uowFactory.RegisterLocalHandler(events.EventTypeEnforcementApplied, auditLog.HandleEnforcementApplied)
	uowFactory.RegisterLocalHandler(events.EventTypeEnforcementReversed, auditLog.HandleEnforcementReversed)

	if err := discordBot.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer func() {
		if err := discordBot.Close(); err != nil {
			log.Errorf("Error closing Discord bot: %v", err)
		}
	}()

	// Start background jobs once the gateway is ready
	gateway := discordBot.Gateway()
	scheduler := application.NewScheduler(discordBot.Ready(),
		application.NewVoiceScanJob(uowFactory, gateway, gateway, cfg.VoiceScanInterval),
		application.NewMonthlyResetJob(uowFactory, gateway, cfg.MonthlyResetInterval),
		application.NewBanExpiryJob(discordBot.Enforcement(), cfg.BanSweepInterval),
	)
	stopScheduler := scheduler.Start(ctx)
	log.Info("Background jobs started")

	log.Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	stopScheduler()
	log.Info("Background jobs stopped")

	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
