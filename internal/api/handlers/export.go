package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/amaumene/gowatcharr/internal/library"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/sirupsen/logrus"
)

// ExportHandler serves the collection as JSON (default) or CSV
type ExportHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(db *models.Database, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{
		db:     db,
		logger: logger,
	}
}

// ServeHTTP handles the export endpoint
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	switch format := r.URL.Query().Get("format"); format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="library.csv"`)
		if err := library.WriteCSV(w, items); err != nil {
			h.logger.WithError(err).Error("Failed to write CSV export")
		}
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(library.BuildExport(items))
	default:
		http.Error(w, "Unsupported format: "+format, http.StatusBadRequest)
	}
}

// ReportHandler serves the year-in-review aggregation
type ReportHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *models.Database, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		db:     db,
		logger: logger,
	}
}

// ServeHTTP handles the year-in-review endpoint
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	year := time.Now().Year()
	if param := r.URL.Query().Get("year"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil {
			http.Error(w, "Invalid year: "+param, http.StatusBadRequest)
			return
		}
		year = parsed
	}

	items, err := h.db.GetAllItems()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get items")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(library.YearInReview(items, year))
}
