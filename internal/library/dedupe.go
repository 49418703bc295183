package library

import (
	"fmt"
	"strings"

	"github.com/amaumene/gowatcharr/internal/models"
)

// completionThreshold is the watched-episode ratio above which a series
// counts as library-complete. Tolerates untrackable recap/bonus episodes.
const completionThreshold = 0.95

// Key returns the deduplication key for an item: the cross-provider
// external id when present, the provider numeric id otherwise.
func Key(item *models.LibraryItem) string {
	if item.ExternalID != "" {
		return item.ExternalID
	}
	return fmt.Sprintf("trakt-%d", item.TraktID)
}

// Dedupe collapses a list to one entry per distinct key. The LAST
// occurrence wins; callers deliberately order local-then-remote (or
// old-then-new) to get overwrite semantics from this collapse. Survivors
// keep the position where their key first appeared, so the operation is
// idempotent and order-stable.
func Dedupe(items []*models.LibraryItem) []*models.LibraryItem {
	result := make([]*models.LibraryItem, 0, len(items))
	position := make(map[string]int, len(items))

	for _, item := range items {
		key := Key(item)
		if idx, seen := position[key]; seen {
			result[idx] = item
			continue
		}
		position[key] = len(result)
		result = append(result, item)
	}

	return result
}

// IsComplete reports whether a series has been watched to the completion
// threshold. Items without progress data are treated as complete.
func IsComplete(item *models.LibraryItem) bool {
	if item.MediaType != models.MediaTypeSeries || item.Progress == nil {
		return true
	}
	return item.Progress.Ratio() >= completionThreshold
}

// InLibrary reports whether an item belongs to the watched library: on the
// watched list and, for series, past the completion threshold.
func InLibrary(item *models.LibraryItem) bool {
	if item.List.Membership() != models.ListWatched {
		return false
	}
	return IsComplete(item)
}

// GroupByDecade buckets items by release decade ("1990s"). Items with an
// unknown year are excluded from every bucket, never an error.
func GroupByDecade(items []*models.LibraryItem) map[string][]*models.LibraryItem {
	groups := make(map[string][]*models.LibraryItem)
	for _, item := range items {
		if item.Year <= 0 {
			continue
		}
		decade := fmt.Sprintf("%d0s", item.Year/10)
		groups[decade] = append(groups[decade], item)
	}
	return groups
}

// GroupByGenre buckets items by each of their genres. The genre field is a
// comma-with-space joined list; absent genres are skipped.
func GroupByGenre(items []*models.LibraryItem) map[string][]*models.LibraryItem {
	groups := make(map[string][]*models.LibraryItem)
	for _, item := range items {
		for _, genre := range splitField(item.Genre) {
			groups[genre] = append(groups[genre], item)
		}
	}
	return groups
}

// GroupByPerson buckets items by director and cast members
func GroupByPerson(items []*models.LibraryItem) map[string][]*models.LibraryItem {
	groups := make(map[string][]*models.LibraryItem)
	for _, item := range items {
		seen := make(map[string]bool)
		for _, person := range append(splitField(item.Director), splitField(item.Actors)...) {
			if seen[person] {
				continue
			}
			seen[person] = true
			groups[person] = append(groups[person], item)
		}
	}
	return groups
}

// splitField splits a comma-with-space joined field, trimming entries and
// skipping empties
func splitField(field string) []string {
	if field == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(field, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
