package controllers

import (
	"context"
	"fmt"
	"testing"

	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/amaumene/gowatcharr/internal/services/tmdb"
)

func seedItems(t *testing.T, db *models.Database, items ...*models.LibraryItem) {
	t.Helper()
	for _, item := range items {
		if err := db.UpsertItem(item); err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}
	}
}

func TestEnrichBatchPatchesMissingFields(t *testing.T) {
	db := newTestDB(t)
	seedItems(t, db, &models.LibraryItem{
		ExternalID: "tt0111161",
		Title:      "The Shawshank Redemption",
		MediaType:  models.MediaTypeMovie,
		Genre:      "Drama", // already present, provider must not blank it
	})

	metadata := &fakeMetadata{byIMDB: map[string]*tmdb.Metadata{
		"tt0111161": {
			IMDBID:   "tt0111161",
			Director: "Frank Darabont",
			Actors:   "Tim Robbins, Morgan Freeman",
			Plot:     "Two imprisoned men bond over a number of years.",
			Runtime:  "142 min",
		},
	}}

	ctrl := NewEnrichController(db, metadata, 5, testLogger())
	result, err := ctrl.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}

	if result.Enriched != 1 || result.Attempted != 1 || result.Remaining != 0 {
		t.Errorf("Unexpected batch result: %+v", result)
	}

	item, err := db.GetItem("tt0111161")
	if err != nil {
		t.Fatalf("Failed to read item: %v", err)
	}
	if item.Director != "Frank Darabont" || item.Runtime != "142 min" {
		t.Errorf("Fields not patched: %+v", item)
	}
	if item.Genre != "Drama" {
		t.Errorf("Existing genre should survive, got %q", item.Genre)
	}
	if !item.EnrichmentAttempted {
		t.Error("Enriched item should be marked attempted")
	}
}

func TestEnrichFailedAttemptNeverRepeats(t *testing.T) {
	db := newTestDB(t)
	seedItems(t, db, &models.LibraryItem{
		ExternalID: "tt9999999",
		Title:      "Unknown Title",
		MediaType:  models.MediaTypeMovie,
	})

	// Provider has no record for the id
	metadata := &fakeMetadata{}

	ctrl := NewEnrichController(db, metadata, 5, testLogger())
	first, err := ctrl.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if first.Attempted != 1 || first.Enriched != 0 {
		t.Fatalf("Expected one unresolved attempt, got %+v", first)
	}

	item, err := db.GetItem("tt9999999")
	if err != nil {
		t.Fatalf("Failed to read item: %v", err)
	}
	if !item.EnrichmentAttempted {
		t.Fatal("Failed lookup should still mark the item attempted")
	}
	if item.Director != "" {
		t.Errorf("Unresolved item should stay bare, got director %q", item.Director)
	}

	lookupsAfterFirst := metadata.lookups
	second, err := ctrl.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("Second batch failed: %v", err)
	}
	if second.Attempted != 0 || second.TotalNeeding != 0 {
		t.Errorf("Attempted item should never be retried, got %+v", second)
	}
	if metadata.lookups != lookupsAfterFirst {
		t.Errorf("No provider calls expected on the second pass, got %d more", metadata.lookups-lookupsAfterFirst)
	}
}

func TestEnrichBatchIsBounded(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 7; i++ {
		seedItems(t, db, &models.LibraryItem{
			ExternalID: fmt.Sprintf("tt%07d", i),
			Title:      "Pending",
			MediaType:  models.MediaTypeMovie,
		})
	}

	metadata := &fakeMetadata{}
	ctrl := NewEnrichController(db, metadata, 5, testLogger())

	result, err := ctrl.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if result.TotalNeeding != 7 || result.Attempted != 5 || result.Remaining != 2 {
		t.Errorf("Expected batch of 5 out of 7, got %+v", result)
	}
	if metadata.lookups != 5 {
		t.Errorf("Expected 5 provider calls, got %d", metadata.lookups)
	}
}

func TestEnrichSkipsItemsWithoutIMDBID(t *testing.T) {
	db := newTestDB(t)
	seedItems(t, db,
		&models.LibraryItem{ExternalID: "trakt-42", Title: "No Cross Id", MediaType: models.MediaTypeMovie},
		&models.LibraryItem{ExternalID: "manual-old-vhs-1987", Title: "Manual", MediaType: models.MediaTypeMovie},
	)

	metadata := &fakeMetadata{}
	ctrl := NewEnrichController(db, metadata, 5, testLogger())

	result, err := ctrl.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if result.TotalNeeding != 0 || result.Attempted != 0 {
		t.Errorf("Items without a cross-provider id are not eligible, got %+v", result)
	}
	if metadata.lookups != 0 {
		t.Errorf("Expected no provider calls, got %d", metadata.lookups)
	}
}

func TestEnrichStatus(t *testing.T) {
	db := newTestDB(t)
	seedItems(t, db,
		&models.LibraryItem{ExternalID: "tt0000001", Title: "Movie A", MediaType: models.MediaTypeMovie},
		&models.LibraryItem{ExternalID: "tt0000002", Title: "Show B", MediaType: models.MediaTypeSeries},
		&models.LibraryItem{ExternalID: "tt0000003", Title: "Tried", MediaType: models.MediaTypeMovie, EnrichmentAttempted: true},
		&models.LibraryItem{ExternalID: "tt0000004", Title: "Done", MediaType: models.MediaTypeMovie, Director: "Someone"},
		&models.LibraryItem{ExternalID: "trakt-9", Title: "No Id", MediaType: models.MediaTypeMovie},
	)

	ctrl := NewEnrichController(db, &fakeMetadata{}, 5, testLogger())
	status, err := ctrl.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if status.TotalNeeding != 2 {
		t.Errorf("Expected 2 items needing enrichment, got %d", status.TotalNeeding)
	}
	if status.MoviesMissing != 1 || status.ShowsMissing != 1 {
		t.Errorf("Expected 1 movie and 1 show missing, got %d/%d", status.MoviesMissing, status.ShowsMissing)
	}
	if status.AlreadyAttempted != 1 {
		t.Errorf("Expected 1 already-attempted item, got %d", status.AlreadyAttempted)
	}
	if len(status.Sample) != 2 {
		t.Errorf("Expected 2 sample entries, got %d", len(status.Sample))
	}
}
