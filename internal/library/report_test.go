package library

import (
	"testing"
	"time"

	"github.com/amaumene/gowatcharr/internal/models"
)

func watchedOn(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 21, 0, 0, 0, time.UTC)
}

func TestYearInReview(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt1", MediaType: models.MediaTypeMovie, Genre: "Drama, Crime",
			Director: "Frank Darabont", WatchedAt: watchedOn(2024, time.January)},
		{ExternalID: "tt2", MediaType: models.MediaTypeMovie, Genre: "Drama",
			WatchedAt: watchedOn(2024, time.January)},
		{ExternalID: "tt3", MediaType: models.MediaTypeSeries, WatchedAt: watchedOn(2024, time.June)},
		// Wrong year
		{ExternalID: "tt4", MediaType: models.MediaTypeMovie, WatchedAt: watchedOn(2023, time.May)},
		// No usable watch date: excluded, never an error
		{ExternalID: "tt5", MediaType: models.MediaTypeMovie},
		// Watchlist entries are not watched
		{ExternalID: "tt6", MediaType: models.MediaTypeMovie, List: models.ListWatchlist,
			WatchedAt: watchedOn(2024, time.March)},
	}

	report := YearInReview(items, 2024)

	if report.Total != 3 {
		t.Fatalf("Expected 3 watched items in 2024, got %d", report.Total)
	}
	if report.Movies != 2 || report.Shows != 1 {
		t.Errorf("Expected 2 movies and 1 show, got %d/%d", report.Movies, report.Shows)
	}
	if report.ByMonth["January"] != 2 {
		t.Errorf("Expected 2 January watches, got %d", report.ByMonth["January"])
	}
	if len(report.TopGenres) == 0 || report.TopGenres[0].Name != "Drama" || report.TopGenres[0].Count != 2 {
		t.Errorf("Expected Drama on top, got %+v", report.TopGenres)
	}
	if len(report.TopDirectors) != 1 || report.TopDirectors[0].Name != "Frank Darabont" {
		t.Errorf("Expected one director, got %+v", report.TopDirectors)
	}
}

func TestYearInReviewIncompleteSeriesExcluded(t *testing.T) {
	items := []*models.LibraryItem{
		{ExternalID: "tt1", MediaType: models.MediaTypeSeries,
			Progress:  &models.WatchProgress{WatchedEpisodes: 2, TotalEpisodes: 20},
			WatchedAt: watchedOn(2024, time.April)},
	}

	report := YearInReview(items, 2024)

	if report.Total != 0 {
		t.Errorf("In-progress series should not count, got %d", report.Total)
	}
}
