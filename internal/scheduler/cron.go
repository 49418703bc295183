package scheduler

import (
	"context"
	"fmt"

	"github.com/amaumene/gowatcharr/internal/controllers"
	"github.com/amaumene/gowatcharr/internal/services/trakt"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	syncCtrl    *controllers.SyncController
	enrichCtrl  *controllers.EnrichController
	traktClient *trakt.Client
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(syncCtrl *controllers.SyncController, enrichCtrl *controllers.EnrichController, traktClient *trakt.Client, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		syncCtrl:    syncCtrl,
		enrichCtrl:  enrichCtrl,
		traktClient: traktClient,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 6 hours: full library sync
	_, err := s.cron.AddFunc("0 */6 * * *", func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to add sync job: %w", err)
	}

	// Every 15 minutes: one re-enrichment batch while a backlog exists
	_, err = s.cron.AddFunc("*/15 * * * *", func() {
		s.runEnrichBatch()
	})
	if err != nil {
		return fmt.Errorf("failed to add enrich job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial sync immediately when already authenticated
	go s.runSync()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runSync executes the sync job with a log-based progress sink
func (s *Scheduler) runSync() {
	if _, err := s.traktClient.GetToken(); err != nil {
		s.logger.Debug("Skipping scheduled sync, not authenticated with Trakt")
		return
	}

	s.logger.Info("Running scheduled sync")
	ctx := context.Background()

	emit := func(event controllers.Event) {
		s.logger.WithFields(logrus.Fields{
			"stage":   event.Stage,
			"percent": event.Percent,
		}).Debug(event.Message)
	}

	count, err := s.syncCtrl.Run(ctx, emit)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled sync failed")
		return
	}
	s.logger.WithField("count", count).Info("Scheduled sync completed")
}

// runEnrichBatch executes one re-enrichment batch when needed
func (s *Scheduler) runEnrichBatch() {
	status, err := s.enrichCtrl.Status()
	if err != nil {
		s.logger.WithError(err).Error("Failed to check enrichment backlog")
		return
	}
	if status.TotalNeeding == 0 {
		s.logger.Debug("No enrichment backlog")
		return
	}

	s.logger.WithField("backlog", status.TotalNeeding).Info("Running scheduled re-enrichment batch")

	if _, err := s.enrichCtrl.RunBatch(context.Background()); err != nil {
		s.logger.WithError(err).Error("Scheduled re-enrichment batch failed")
	}
}
