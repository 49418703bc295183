package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/gowatcharr/internal/controllers"
	"github.com/amaumene/gowatcharr/internal/services/trakt"
	"github.com/sirupsen/logrus"
)

// SyncHandler triggers a sync run and streams its progress. The response
// is newline-delimited JSON, one event per line, flushed as the pipeline
// advances; the stream always ends with exactly one done or error event.
type SyncHandler struct {
	syncCtrl    *controllers.SyncController
	traktClient *trakt.Client
	logger      *logrus.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncCtrl *controllers.SyncController, traktClient *trakt.Client, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncCtrl:    syncCtrl,
		traktClient: traktClient,
		logger:      logger,
	}
}

// ServeHTTP handles the sync endpoint
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Credentials are checked before the stream opens; a misconfigured
	// client gets a plain 401, never a streaming response
	if _, err := h.traktClient.GetToken(); err != nil {
		h.logger.WithError(err).Warn("Sync requested without Trakt authentication")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "trakt authentication required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	encoder := json.NewEncoder(w)
	emit := func(event controllers.Event) {
		if err := encoder.Encode(event); err != nil {
			h.logger.WithError(err).Debug("Failed to write progress event")
			return
		}
		flusher.Flush()
	}

	count, err := h.syncCtrl.Run(r.Context(), emit)
	if err != nil {
		h.logger.WithError(err).Error("Sync run failed")
		emit(controllers.ErrorEvent(err))
		return
	}

	emit(controllers.DoneEvent(count))
}
