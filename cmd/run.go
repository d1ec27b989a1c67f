package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"pointsbot/application"
	"pointsbot/bot"
	"pointsbot/config"
	"pointsbot/database"
	"pointsbot/events"
	"pointsbot/filestore"
	"pointsbot/infrastructure"
	"pointsbot/infrastructure/observability"
	"pointsbot/repository"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageBackend,
	}).Info("Starting pointsbot...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	eventBus := events.NewBus()
	observability.GetMetrics().RegisterEventMetrics(eventBus)

	uowFactory, storage, err := openStorage(ctx, cfg, eventBus)
	if err != nil {
		return err
	}

	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		natsClient, err = connectNATS(ctx, cfg, eventBus)
		if err != nil {
			storage.Close()
			return err
		}
	}

	botConfig := bot.Config{
		Token:      cfg.DiscordToken,
		GuildID:    cfg.GuildID,
		AdminRoles: cfg.AdminRoles,
	}
	discordBot, err := bot.New(botConfig, uowFactory)
	if err != nil {
		storage.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Tier roles follow every committed balance change
	roleSync := application.NewRoleSyncHandler(uowFactory, discordBot.RoleManager(), discordBot.RoleManager())
	roleSync.Register(eventBus)
	discordBot.SetRoleSync(roleSync)

	if err := discordBot.Start(); err != nil {
		storage.Close()
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	shutdown(discordBot, eventBus, natsClient, storage)
	return nil
}

// openStorage returns the unit of work factory of the configured backend and its closer
func openStorage(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (application.UnitOfWorkFactory, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendJSONFile:
		store, err := filestore.Open(cfg.DataFile, eventBus)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data file: %w", err)
		}
		return store, store, nil

	default:
		databaseURL := cfg.GetDatabaseURL()

		log.Info("Running database migrations...")
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")

		return repository.NewUnitOfWorkFactory(db, eventBus), closerFunc(func() error {
			db.Close()
			return nil
		}), nil
	}
}

// connectNATS mirrors committed domain events to JetStream
func connectNATS(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (*infrastructure.NATSClient, error) {
	client := infrastructure.NewNATSClient(cfg.NATSServers)

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureEventStream(client, mapper); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	infrastructure.NewNATSEventPublisher(client, mapper).Register(eventBus)
	log.WithField("servers", cfg.NATSServers).Info("Publishing domain events to NATS")
	return client, nil
}

func shutdown(discordBot *bot.Bot, eventBus *events.Bus, natsClient *infrastructure.NATSClient, storage io.Closer) {
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	// Let in-flight role syncs and event publishes finish
	done := make(chan struct{})
	go func() {
		eventBus.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("Timed out waiting for event handlers")
	}

	if natsClient != nil {
		natsClient.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	if err := storage.Close(); err != nil {
		log.WithError(err).Error("Error closing storage")
	}

	log.Info("Shutdown completed")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
