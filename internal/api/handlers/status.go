package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/gowatcharr/internal/library"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports collection statistics
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalItems        int            `json:"total_items"`
	InLibrary         int            `json:"in_library"`
	Enriched          int            `json:"enriched"`
	MissingEnrichment int            `json:"missing_enrichment"`
	ItemsByType       map[string]int `json:"items_by_type"`
	ItemsByList       map[string]int `json:"items_by_list"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items, err := h.db.GetAllItems()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get items")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalItems:  len(items),
		ItemsByType: make(map[string]int),
		ItemsByList: make(map[string]int),
	}

	for _, item := range items {
		response.ItemsByType[string(item.MediaType)]++
		response.ItemsByList[string(item.List.Membership())]++

		if library.InLibrary(item) {
			response.InLibrary++
		}
		if item.Director != "" {
			response.Enriched++
		} else {
			response.MissingEnrichment++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
