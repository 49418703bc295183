package models

import "time"

// WatchProgress tracks how much of a series has been watched.
// Totals come from the enrichment provider; watched counts come from the
// remote watch history.
type WatchProgress struct {
	WatchedEpisodes int
	TotalEpisodes   int
	CurrentSeason   int
	TotalSeasons    int
}

// Ratio returns watched/total, or 1 when the total is unknown.
func (p *WatchProgress) Ratio() float64 {
	if p == nil || p.TotalEpisodes <= 0 {
		return 1
	}
	return float64(p.WatchedEpisodes) / float64(p.TotalEpisodes)
}

// LibraryItem is the canonical unit of the collection, keyed by ExternalID
// (IMDB id when known, "trakt-<id>" fallback otherwise).
type LibraryItem struct {
	ExternalID string `boltholdKey:"ExternalID"`
	TraktID    int64  `boltholdIndex:"TraktID"` // provider numeric id, used for intra-fetch dedup

	Title     string
	Year      int
	MediaType MediaType
	PosterURL string

	Provenance Provenance
	List       ListMembership // empty means watched
	WatchedAt  time.Time

	// Enrichment fields. Empty string / nil means absent; only the export
	// boundary ever renders an "N/A" placeholder.
	Director       string
	Actors         string
	Plot           string
	Genre          string
	Runtime        string
	ScoreExternal  *float64 // 0-10, from the primary provider
	ScoreCommunity string   // provider-native formatting, e.g. "8.7/10"
	ScoreCritic    string   // e.g. "94%"
	ScoreAggregate string   // e.g. "88/100"

	// EnrichmentAttempted is monotonic: once true the automatic re-enrich
	// job never touches this record again.
	EnrichmentAttempted bool

	// Series only
	Progress *WatchProgress

	// Manual-entry fields
	UserRating *int
	UserNote   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasIMDBID reports whether the external id is a cross-provider content id
// rather than the provider-numeric fallback.
func (i *LibraryItem) HasIMDBID() bool {
	return len(i.ExternalID) > 2 && i.ExternalID[:2] == "tt"
}
