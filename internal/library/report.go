package library

import (
	"sort"

	"github.com/amaumene/gowatcharr/internal/models"
)

// NameCount is one ranked bucket in a year-in-review report
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearReport aggregates one calendar year of watching
type YearReport struct {
	Year         int            `json:"year"`
	Total        int            `json:"total"`
	Movies       int            `json:"movies"`
	Shows        int            `json:"shows"`
	ByMonth      map[string]int `json:"byMonth"`
	TopGenres    []NameCount    `json:"topGenres"`
	TopDirectors []NameCount    `json:"topDirectors"`
	TopActors    []NameCount    `json:"topActors"`
}

const topLimit = 10

// YearInReview aggregates the watched library for one calendar year.
// Items with no usable watch date are excluded from every bucket.
func YearInReview(items []*models.LibraryItem, year int) *YearReport {
	var watched []*models.LibraryItem
	for _, item := range Dedupe(items) {
		if !InLibrary(item) {
			continue
		}
		if item.WatchedAt.IsZero() || item.WatchedAt.Year() != year {
			continue
		}
		watched = append(watched, item)
	}

	report := &YearReport{
		Year:    year,
		Total:   len(watched),
		ByMonth: make(map[string]int),
	}

	genres := make(map[string]int)
	directors := make(map[string]int)
	actors := make(map[string]int)

	for _, item := range watched {
		switch item.MediaType {
		case models.MediaTypeMovie:
			report.Movies++
		case models.MediaTypeSeries:
			report.Shows++
		}

		report.ByMonth[item.WatchedAt.Month().String()]++

		for _, genre := range splitField(item.Genre) {
			genres[genre]++
		}
		for _, director := range splitField(item.Director) {
			directors[director]++
		}
		for _, actor := range splitField(item.Actors) {
			actors[actor]++
		}
	}

	report.TopGenres = rank(genres)
	report.TopDirectors = rank(directors)
	report.TopActors = rank(actors)

	return report
}

// rank sorts a counter map into a bounded, deterministic top list
func rank(counts map[string]int) []NameCount {
	ranked := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, NameCount{Name: name, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > topLimit {
		ranked = ranked[:topLimit]
	}
	return ranked
}
