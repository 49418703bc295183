package library

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/amaumene/gowatcharr/internal/models"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	trickyTitle := `Monday, "Tuesday"
and Wednesday`
	items := []*models.LibraryItem{
		{
			ExternalID: "tt0000001",
			Title:      trickyTitle,
			Year:       2020,
			MediaType:  models.MediaTypeMovie,
			UserNote:   "line one\nline two",
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected header + 1 row, got %d records", len(records))
	}
	if len(records[0]) != 12 {
		t.Errorf("Expected 12 columns, got %d", len(records[0]))
	}
	if records[0][0] != "Title" || records[0][11] != "UserNote" {
		t.Errorf("Header mismatch: %v", records[0])
	}
	if records[1][0] != trickyTitle {
		t.Errorf("Title did not round-trip: got %q", records[1][0])
	}
	// Note newlines are flattened to spaces
	if records[1][11] != "line one line two" {
		t.Errorf("Note newlines should become spaces, got %q", records[1][11])
	}
}

func TestWriteCSVPlaceholders(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt0000002", Title: "Bare", Year: 1999, MediaType: models.MediaTypeMovie},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	row := records[1]
	// ExternalRating, Genre, Director, Runtime render the placeholder
	for _, col := range []int{4, 5, 6, 7} {
		if row[col] != "N/A" {
			t.Errorf("Column %d should render N/A for absent value, got %q", col, row[col])
		}
	}
	if row[9] != "watched" {
		t.Errorf("Absent list membership should export as watched, got %q", row[9])
	}
}

func TestBuildExport(t *testing.T) {
	score := 9.3
	items := []*models.LibraryItem{
		{ExternalID: "tt0111161", Title: "The Shawshank Redemption", Year: 1994,
			MediaType: models.MediaTypeMovie, ScoreExternal: &score,
			WatchedAt: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)},
		{ExternalID: "tt0903747", Title: "Breaking Bad", Year: 2008, MediaType: models.MediaTypeSeries},
		{ExternalID: "tt0111161", Title: "The Shawshank Redemption", Year: 1994, MediaType: models.MediaTypeMovie},
	}

	export := BuildExport(items)

	if export.TotalItems != 2 {
		t.Fatalf("Expected dedup to 2 items, got %d", export.TotalItems)
	}
	if export.Movies != 1 || export.Shows != 1 {
		t.Errorf("Expected 1 movie and 1 show, got %d/%d", export.Movies, export.Shows)
	}
	if export.Items[1].Type != "series" {
		t.Errorf("Expected series type, got %q", export.Items[1].Type)
	}
}
