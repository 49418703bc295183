package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/sirupsen/logrus"
)

// ItemsHandler adds manual entries to the collection. Manual entries get a
// synthetic watch time and survive sync merges unless a remote record
// later claims the same key.
type ItemsHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(db *models.Database, logger *logrus.Logger) *ItemsHandler {
	return &ItemsHandler{
		db:     db,
		logger: logger,
	}
}

// addItemRequest is the manual-entry payload
type addItemRequest struct {
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Type       string `json:"type"`
	ExternalID string `json:"externalId"`
	List       string `json:"list"`
	UserRating *int   `json:"userRating"`
	UserNote   string `json:"userNote"`
}

// ServeHTTP handles the manual add endpoint
func (h *ItemsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WithError(err).Error("Failed to decode add-item payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if payload.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	mediaType := models.MediaType(payload.Type)
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeSeries {
		http.Error(w, "type must be movie or series", http.StatusBadRequest)
		return
	}

	list := models.ListMembership(payload.List)
	switch list {
	case "", models.ListWatched, models.ListWatchlist, models.ListWatching:
	default:
		http.Error(w, "invalid list", http.StatusBadRequest)
		return
	}

	externalID := payload.ExternalID
	if externalID == "" {
		externalID = manualKey(payload.Title, payload.Year)
	}

	item := &models.LibraryItem{
		ExternalID: externalID,
		Title:      payload.Title,
		Year:       payload.Year,
		MediaType:  mediaType,
		Provenance: models.ProvenanceManualEntry,
		List:       list,
		WatchedAt:  time.Now(),
		UserRating: payload.UserRating,
		UserNote:   payload.UserNote,
	}

	if err := h.db.UpsertItem(item); err != nil {
		h.logger.WithError(err).Error("Failed to save manual entry")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"title":       item.Title,
		"external_id": item.ExternalID,
	}).Info("Added manual entry")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"externalId": item.ExternalID})
}

// manualKey derives a stable key for entries without a provider id
func manualKey(title string, year int) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Join(strings.Fields(slug), "-")
	return fmt.Sprintf("manual-%s-%d", slug, year)
}
