package models

// MediaType represents the type of media (movie or series)
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// Provenance records where a library item originated. It is informational
// only; merge precedence is always last-write-wins by key.
type Provenance string

const (
	ProvenanceRemoteHistory Provenance = "remote-history"
	ProvenanceLocalManual   Provenance = "local-manual"
	ProvenanceManualEntry   Provenance = "manual-entry"
)

// ListMembership represents which list a library item belongs to.
// An empty value means "watched" (legacy/local-manual records).
type ListMembership string

const (
	ListWatched   ListMembership = "watched"
	ListWatchlist ListMembership = "watchlist"
	ListWatching  ListMembership = "watching"
)

// Membership resolves the effective list, treating absence as watched.
func (l ListMembership) Membership() ListMembership {
	if l == "" {
		return ListWatched
	}
	return l
}
