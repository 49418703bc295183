package library

import (
	"testing"

	"github.com/amaumene/gowatcharr/internal/models"
)

func TestDedupeLastWins(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt0111161", Title: "old copy"},
		{ExternalID: "tt0068646", Title: "godfather"},
		{ExternalID: "tt0111161", Title: "new copy"},
	}

	deduped := Dedupe(items)

	if len(deduped) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(deduped))
	}
	// Last occurrence wins, but the key keeps its first position
	if deduped[0].Title != "new copy" {
		t.Errorf("Expected last occurrence to win, got '%s'", deduped[0].Title)
	}
	if deduped[1].ExternalID != "tt0068646" {
		t.Errorf("Expected stable order, got '%s' second", deduped[1].ExternalID)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt0111161", Title: "a"},
		{ExternalID: "tt0068646", Title: "b"},
		{ExternalID: "tt0111161", Title: "c"},
		{TraktID: 42, Title: "no imdb id"},
		{TraktID: 42, Title: "no imdb id again"},
	}

	once := Dedupe(items)
	twice := Dedupe(once)

	if len(once) != len(twice) {
		t.Fatalf("Dedupe not idempotent: %d vs %d items", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("Dedupe not idempotent at index %d", i)
		}
	}
}

func TestDedupeNumericIDFallback(t *testing.T) {
	items := []*models.LibraryItem{
		{TraktID: 7, Title: "first"},
		{TraktID: 7, Title: "second"},
		{TraktID: 8, Title: "other"},
	}

	deduped := Dedupe(items)

	if len(deduped) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(deduped))
	}
	if deduped[0].Title != "second" {
		t.Errorf("Expected last occurrence for numeric key, got '%s'", deduped[0].Title)
	}
}

func TestCompletionThreshold(t *testing.T) {
	atThreshold := &models.LibraryItem{
		MediaType: models.MediaTypeSeries,
		Progress:  &models.WatchProgress{WatchedEpisodes: 19, TotalEpisodes: 20},
	}
	belowThreshold := &models.LibraryItem{
		MediaType: models.MediaTypeSeries,
		Progress:  &models.WatchProgress{WatchedEpisodes: 18, TotalEpisodes: 20},
	}
	noProgress := &models.LibraryItem{MediaType: models.MediaTypeSeries}

	if !InLibrary(atThreshold) {
		t.Error("19/20 series should be in the library")
	}
	if InLibrary(belowThreshold) {
		t.Error("18/20 series should not be in the library")
	}
	if !InLibrary(noProgress) {
		t.Error("Series without progress data should count as complete")
	}
}

func TestInLibraryExcludesWatchlist(t *testing.T) {
	item := &models.LibraryItem{
		MediaType: models.MediaTypeMovie,
		List:      models.ListWatchlist,
	}
	if InLibrary(item) {
		t.Error("Watchlist items should not be in the watched library")
	}

	legacy := &models.LibraryItem{MediaType: models.MediaTypeMovie}
	if !InLibrary(legacy) {
		t.Error("Items without list membership default to watched")
	}
}

func TestGroupByGenre(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt1", Genre: "Drama, Crime"},
		{ExternalID: "tt2", Genre: "Drama"},
		{ExternalID: "tt3", Genre: ""},
		{ExternalID: "tt4", Genre: " Thriller , Drama "},
	}

	groups := GroupByGenre(items)

	if len(groups["Drama"]) != 3 {
		t.Errorf("Expected 3 Drama items, got %d", len(groups["Drama"]))
	}
	if len(groups["Crime"]) != 1 {
		t.Errorf("Expected 1 Crime item, got %d", len(groups["Crime"]))
	}
	if len(groups["Thriller"]) != 1 {
		t.Errorf("Expected 1 Thriller item, got %d", len(groups["Thriller"]))
	}
	if _, ok := groups[""]; ok {
		t.Error("Empty genre should not produce a bucket")
	}
}

func TestGroupByDecade(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt1", Year: 1994},
		{ExternalID: "tt2", Year: 1999},
		{ExternalID: "tt3", Year: 2008},
		{ExternalID: "tt4", Year: 0}, // unknown year excluded
	}

	groups := GroupByDecade(items)

	if len(groups["1990s"]) != 2 {
		t.Errorf("Expected 2 items in 1990s, got %d", len(groups["1990s"]))
	}
	if len(groups["2000s"]) != 1 {
		t.Errorf("Expected 1 item in 2000s, got %d", len(groups["2000s"]))
	}
	total := 0
	for _, bucket := range groups {
		total += len(bucket)
	}
	if total != 3 {
		t.Errorf("Unknown year should be excluded, got %d bucketed items", total)
	}
}

func TestGroupByPerson(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt1", Director: "Frank Darabont", Actors: "Tim Robbins, Morgan Freeman"},
		{ExternalID: "tt2", Director: "Frank Darabont", Actors: "Tom Hanks"},
	}

	groups := GroupByPerson(items)

	if len(groups["Frank Darabont"]) != 2 {
		t.Errorf("Expected 2 items for the director, got %d", len(groups["Frank Darabont"]))
	}
	if len(groups["Morgan Freeman"]) != 1 {
		t.Errorf("Expected 1 item for the actor, got %d", len(groups["Morgan Freeman"]))
	}
}
