package library

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/amaumene/gowatcharr/internal/models"
)

// placeholder is rendered for absent fields at the export boundary only;
// core logic never produces or compares against it.
const placeholder = "N/A"

// csvHeader is the fixed 12-column export layout
var csvHeader = []string{
	"Title", "Year", "Type", "ExternalId", "ExternalRating", "Genre",
	"Director", "Runtime", "WatchDate", "List", "UserRating", "UserNote",
}

// ExportRecord is one flattened item in the JSON export payload
type ExportRecord struct {
	ExternalID     string  `json:"externalId"`
	Title          string  `json:"title"`
	Year           int     `json:"year"`
	Type           string  `json:"type"`
	List           string  `json:"list"`
	WatchedAt      string  `json:"watchedAt,omitempty"`
	Genre          string  `json:"genre,omitempty"`
	Director       string  `json:"director,omitempty"`
	Runtime        string  `json:"runtime,omitempty"`
	ExternalRating float64 `json:"externalRating,omitempty"`
	PosterURL      string  `json:"posterUrl,omitempty"`
	UserRating     *int    `json:"userRating,omitempty"`
	UserNote       string  `json:"userNote,omitempty"`
}

// Export is the JSON export payload
type Export struct {
	ExportDate time.Time      `json:"exportDate"`
	TotalItems int            `json:"totalItems"`
	Movies     int            `json:"movies"`
	Shows      int            `json:"shows"`
	Items      []ExportRecord `json:"items"`
}

// BuildExport flattens the deduplicated collection into the JSON export shape
func BuildExport(items []*models.LibraryItem) *Export {
	items = Dedupe(items)

	export := &Export{
		ExportDate: time.Now(),
		TotalItems: len(items),
		Items:      make([]ExportRecord, 0, len(items)),
	}

	for _, item := range items {
		switch item.MediaType {
		case models.MediaTypeMovie:
			export.Movies++
		case models.MediaTypeSeries:
			export.Shows++
		}

		record := ExportRecord{
			ExternalID: Key(item),
			Title:      item.Title,
			Year:       item.Year,
			Type:       string(item.MediaType),
			List:       string(item.List.Membership()),
			Genre:      item.Genre,
			Director:   item.Director,
			Runtime:    item.Runtime,
			PosterURL:  item.PosterURL,
			UserRating: item.UserRating,
			UserNote:   item.UserNote,
		}
		if !item.WatchedAt.IsZero() {
			record.WatchedAt = item.WatchedAt.Format(time.RFC3339)
		}
		if item.ScoreExternal != nil {
			record.ExternalRating = *item.ScoreExternal
		}

		export.Items = append(export.Items, record)
	}

	return export
}

// WriteCSV writes the deduplicated collection as CSV. Quoting follows
// standard CSV rules (handled by encoding/csv); embedded newlines are
// stripped from the note field so each record stays on one line.
func WriteCSV(w io.Writer, items []*models.LibraryItem) error {
	items = Dedupe(items)

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range items {
		rating := placeholder
		if item.ScoreExternal != nil {
			rating = fmt.Sprintf("%.1f", *item.ScoreExternal)
		}

		watchDate := ""
		if !item.WatchedAt.IsZero() {
			watchDate = item.WatchedAt.Format("2006-01-02")
		}

		userRating := ""
		if item.UserRating != nil {
			userRating = fmt.Sprintf("%d", *item.UserRating)
		}

		note := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(item.UserNote)

		row := []string{
			item.Title,
			fmt.Sprintf("%d", item.Year),
			string(item.MediaType),
			Key(item),
			rating,
			orPlaceholder(item.Genre),
			orPlaceholder(item.Director),
			orPlaceholder(item.Runtime),
			watchDate,
			string(item.List.Membership()),
			userRating,
			note,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// orPlaceholder renders absent fields as the export placeholder
func orPlaceholder(value string) string {
	if value == "" {
		return placeholder
	}
	return value
}
