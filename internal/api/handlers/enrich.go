package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/gowatcharr/internal/controllers"
	"github.com/sirupsen/logrus"
)

// EnrichHandler triggers one re-enrichment batch. Each call is
// independently safe to re-invoke; clients loop until remaining == 0.
type EnrichHandler struct {
	enrichCtrl *controllers.EnrichController
	logger     *logrus.Logger
}

// NewEnrichHandler creates a new enrich handler
func NewEnrichHandler(enrichCtrl *controllers.EnrichController, logger *logrus.Logger) *EnrichHandler {
	return &EnrichHandler{
		enrichCtrl: enrichCtrl,
		logger:     logger,
	}
}

// enrichResponse wraps a batch result with the success flag
type enrichResponse struct {
	Success bool `json:"success"`
	*controllers.BatchResult
}

// ServeHTTP handles the re-enrich trigger endpoint
func (h *EnrichHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.enrichCtrl.RunBatch(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Re-enrichment batch failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(enrichResponse{Success: true, BatchResult: result})
}

// EnrichStatusHandler reports the re-enrichment backlog without mutating
// anything
type EnrichStatusHandler struct {
	enrichCtrl *controllers.EnrichController
	logger     *logrus.Logger
}

// NewEnrichStatusHandler creates a new enrich status handler
func NewEnrichStatusHandler(enrichCtrl *controllers.EnrichController, logger *logrus.Logger) *EnrichStatusHandler {
	return &EnrichStatusHandler{
		enrichCtrl: enrichCtrl,
		logger:     logger,
	}
}

// ServeHTTP handles the re-enrich status endpoint
func (h *EnrichStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := h.enrichCtrl.Status()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute enrichment status")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
