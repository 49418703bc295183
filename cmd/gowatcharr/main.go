package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/amaumene/gowatcharr/internal/api"
	"github.com/amaumene/gowatcharr/internal/config"
	"github.com/amaumene/gowatcharr/internal/controllers"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/amaumene/gowatcharr/internal/scheduler"
	"github.com/amaumene/gowatcharr/internal/services/omdb"
	"github.com/amaumene/gowatcharr/internal/services/tmdb"
	"github.com/amaumene/gowatcharr/internal/services/trakt"
	"github.com/amaumene/gowatcharr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Gowatcharr")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	traktClient, err := trakt.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Trakt client: %w", err)
	}
	logger.Info("Trakt client initialized")

	// Check if we need to authenticate
	_, err = traktClient.GetToken()
	if err != nil {
		logger.Info("Trakt authentication required")
		ctx := context.Background()
		if err := traktClient.Authenticate(ctx); err != nil {
			return fmt.Errorf("failed to authenticate with Trakt: %w", err)
		}
	}

	tmdbClient := tmdb.NewClient(cfg, logger)
	logger.Info("TMDB client initialized")

	// The secondary rating provider is optional; without a key rating
	// fields simply stay absent
	var ratings controllers.RatingProvider
	if cfg.OMDBAPIKey != "" {
		ratings = omdb.NewClient(cfg, logger)
		logger.Info("OMDb client initialized")
	} else {
		logger.Info("No OMDb API key configured, skipping secondary ratings")
	}

	// 5. Initialize controllers
	syncCtrl := controllers.NewSyncController(db, traktClient, tmdbClient, ratings, cfg.EnrichDelay, logger)
	enrichCtrl := controllers.NewEnrichController(db, tmdbClient, cfg.EnrichBatchSize, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(syncCtrl, enrichCtrl, traktClient, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, syncCtrl, enrichCtrl, traktClient, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Gowatcharr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Gowatcharr stopped")
	return nil
}
