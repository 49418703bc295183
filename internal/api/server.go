package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/gowatcharr/internal/api/handlers"
	"github.com/amaumene/gowatcharr/internal/api/middleware"
	"github.com/amaumene/gowatcharr/internal/config"
	"github.com/amaumene/gowatcharr/internal/controllers"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/amaumene/gowatcharr/internal/services/trakt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	db          *models.Database
	syncCtrl    *controllers.SyncController
	enrichCtrl  *controllers.EnrichController
	traktClient *trakt.Client
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, syncCtrl *controllers.SyncController, enrichCtrl *controllers.EnrichController, traktClient *trakt.Client, logger *logrus.Logger) *Server {
	s := &Server{
		db:          db,
		syncCtrl:    syncCtrl,
		enrichCtrl:  enrichCtrl,
		traktClient: traktClient,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     middleware.Logging(middleware.Metrics(mux), logger),
		ReadTimeout: 15 * time.Second,
		// No write timeout: the sync endpoint streams for as long as
		// enrichment takes
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Collection statistics
	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Sync progress stream
	syncHandler := handlers.NewSyncHandler(s.syncCtrl, s.traktClient, s.logger)
	mux.HandleFunc("/api/sync", syncHandler.ServeHTTP)

	// Re-enrichment batch + status
	enrichHandler := handlers.NewEnrichHandler(s.enrichCtrl, s.logger)
	mux.HandleFunc("/api/enrich", enrichHandler.ServeHTTP)
	enrichStatusHandler := handlers.NewEnrichStatusHandler(s.enrichCtrl, s.logger)
	mux.HandleFunc("/api/enrich/status", enrichStatusHandler.ServeHTTP)

	// Export and reports
	exportHandler := handlers.NewExportHandler(s.db, s.logger)
	mux.HandleFunc("/api/export", exportHandler.ServeHTTP)
	reportHandler := handlers.NewReportHandler(s.db, s.logger)
	mux.HandleFunc("/api/report/year", reportHandler.ServeHTTP)

	// Manual entries
	itemsHandler := handlers.NewItemsHandler(s.db, s.logger)
	mux.HandleFunc("/api/items", itemsHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
