package controllers

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/amaumene/gowatcharr/internal/library"
	"github.com/amaumene/gowatcharr/internal/metrics"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/amaumene/gowatcharr/internal/services/omdb"
	"github.com/amaumene/gowatcharr/internal/services/tmdb"
	"github.com/amaumene/gowatcharr/internal/services/trakt"
	"github.com/sirupsen/logrus"
)

const (
	historyPageSize = 100
	// Hard page ceiling: bounds the fetch loop against a misbehaving or
	// very large remote history.
	historyPageLimit = 20
)

// HistoryProvider is the watch-history/watchlist side of the Trakt client
type HistoryProvider interface {
	GetHistoryPage(ctx context.Context, page, limit int) ([]trakt.HistoryItem, error)
	GetWatchlist(ctx context.Context) ([]trakt.WatchlistItem, error)
}

// MetadataProvider is the primary enrichment side of the TMDB client
type MetadataProvider interface {
	Lookup(ctx context.Context, imdbID string, mediaType models.MediaType) (*tmdb.Metadata, error)
	SearchByTitle(ctx context.Context, title string, year int, mediaType models.MediaType) (*tmdb.Metadata, error)
}

// RatingProvider is the secondary rating side of the OMDb client
type RatingProvider interface {
	GetRatings(ctx context.Context, imdbID string) (*omdb.Ratings, error)
}

// SyncController runs the incremental metadata-sync pipeline: fetch remote
// history and watchlist, dedupe, enrich each candidate, merge with local
// records and commit the replacement collection.
type SyncController struct {
	db       *models.Database
	history  HistoryProvider
	metadata MetadataProvider
	ratings  RatingProvider // nil when no secondary key is configured
	delay    time.Duration  // pause between enrichment calls (rate-limit contract)
	logger   *logrus.Logger
}

// NewSyncController creates a new sync controller. ratings may be nil.
func NewSyncController(db *models.Database, history HistoryProvider, metadata MetadataProvider, ratings RatingProvider, delay time.Duration, logger *logrus.Logger) *SyncController {
	return &SyncController{
		db:       db,
		history:  history,
		metadata: metadata,
		ratings:  ratings,
		delay:    delay,
		logger:   logger,
	}
}

// candidate is one deduplicated remote title awaiting enrichment
type candidate struct {
	traktID   int64
	imdbID    string
	title     string
	year      int
	mediaType models.MediaType
	list      models.ListMembership
	watchedAt time.Time
}

// seriesWatch accumulates per-show watch counts from history episodes
type seriesWatch struct {
	episodes  map[[2]int]bool // distinct (season, number) pairs
	maxSeason int
}

// Run executes the pipeline, emitting progress events as stages complete.
// It returns the final item count on success. Overlapping runs race with
// last-write-wins on the store; that is accepted, not locked against.
func (c *SyncController) Run(ctx context.Context, emit ProgressFunc) (int, error) {
	count, err := c.run(ctx, emit)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.SyncRuns.WithLabelValues("success").Inc()
	metrics.ItemsSynced.Add(float64(count))
	return count, nil
}

func (c *SyncController) run(ctx context.Context, emit ProgressFunc) (int, error) {
	c.logger.Info("Starting library sync")
	emit(Event{Stage: "init", Percent: 0, Message: "starting sync"})

	// Stage 1: seed with local-only records; these survive the merge
	// unless a remote record shares their key
	locals, err := c.db.GetLocalItems()
	if err != nil {
		return 0, fmt.Errorf("failed to load local records: %w", err)
	}
	emit(Event{Stage: "seed", Current: len(locals), Total: len(locals), Percent: 2,
		Message: fmt.Sprintf("loaded %d local records", len(locals))})

	// Stage 2: page through the watch history until an empty page or the
	// hard page ceiling
	var history []trakt.HistoryItem
	for page := 1; page <= historyPageLimit; page++ {
		items, err := c.history.GetHistoryPage(ctx, page, historyPageSize)
		if err != nil {
			return 0, fmt.Errorf("history fetch aborted: %w", err)
		}
		if len(items) == 0 {
			break
		}
		history = append(history, items...)

		percent := 2 + page
		if percent > 20 {
			percent = 20
		}
		emit(Event{Stage: "history", Current: len(history), Percent: percent,
			Message: fmt.Sprintf("fetched history page %d", page)})
	}

	// Stage 3: single watchlist fetch
	watchlist, err := c.history.GetWatchlist(ctx)
	if err != nil {
		return 0, fmt.Errorf("watchlist fetch aborted: %w", err)
	}
	emit(Event{Stage: "watchlist", Current: len(watchlist), Total: len(watchlist), Percent: 22,
		Message: fmt.Sprintf("fetched %d watchlist entries", len(watchlist))})

	// Stage 4: normalize and dedupe by the provider numeric id. Watchlist
	// entries come first so that under last-wins dedupe a title present in
	// both lists keeps its watched history entry.
	candidates, watchCounts := normalizeCandidates(watchlist, history)
	emit(Event{Stage: "process", Current: len(candidates), Total: len(candidates), Percent: 25,
		Message: fmt.Sprintf("deduplicated to %d titles", len(candidates))})

	// Stage 5: sequential enrichment. One bad title never aborts the
	// batch, and calls are spaced out to respect provider rate limits.
	remote := make([]*models.LibraryItem, 0, len(candidates))
	total := len(candidates)
	for i, cand := range candidates {
		if i > 0 {
			if err := sleepCtx(ctx, c.delay); err != nil {
				return 0, err
			}
		}

		item := c.enrich(ctx, cand, watchCounts[cand.traktID])
		remote = append(remote, item)

		percent := 25 + int(math.Round(float64(i+1)/float64(total)*70))
		emit(Event{Stage: "enrich", Current: i + 1, Total: total, Percent: percent, Message: cand.title})
	}

	// Stage 6: merge local-seed and remote by external id (remote wins on
	// key collision) and commit the full replacement collection
	emit(Event{Stage: "save", Current: total, Total: total, Percent: 95, Message: "saving library"})
	merged := library.Dedupe(append(locals, remote...))
	if err := c.db.ReplaceAllItems(merged); err != nil {
		return 0, fmt.Errorf("failed to save library: %w", err)
	}

	c.logger.WithField("count", len(merged)).Info("Library sync completed")
	return len(merged), nil
}

// normalizeCandidates merges watchlist and history entries into one
// candidate list deduplicated by trakt numeric id (last occurrence wins),
// and collects per-show watched-episode counts from history.
func normalizeCandidates(watchlist []trakt.WatchlistItem, history []trakt.HistoryItem) ([]candidate, map[int64]*seriesWatch) {
	ordered := make([]candidate, 0, len(watchlist)+len(history))

	for _, entry := range watchlist {
		var info *trakt.MediaInfo
		mediaType := models.MediaTypeMovie
		switch {
		case entry.Type == "movie" && entry.Movie != nil:
			info = entry.Movie
		case entry.Type == "show" && entry.Show != nil:
			info = entry.Show
			mediaType = models.MediaTypeSeries
		default:
			continue
		}
		ordered = append(ordered, candidate{
			traktID:   info.IDs.Trakt,
			imdbID:    info.IDs.IMDB,
			title:     info.Title,
			year:      info.Year,
			mediaType: mediaType,
			list:      models.ListWatchlist,
			watchedAt: entry.ListedAt,
		})
	}

	watchCounts := make(map[int64]*seriesWatch)
	for _, entry := range history {
		var info *trakt.MediaInfo
		mediaType := models.MediaTypeMovie
		switch {
		case entry.Type == "movie" && entry.Movie != nil:
			info = entry.Movie
		case entry.Type == "episode" && entry.Show != nil:
			// Episodes roll up to their parent series
			info = entry.Show
			mediaType = models.MediaTypeSeries
		default:
			continue
		}

		if mediaType == models.MediaTypeSeries && entry.Episode != nil {
			watch := watchCounts[info.IDs.Trakt]
			if watch == nil {
				watch = &seriesWatch{episodes: make(map[[2]int]bool)}
				watchCounts[info.IDs.Trakt] = watch
			}
			watch.episodes[[2]int{entry.Episode.Season, entry.Episode.Number}] = true
			if entry.Episode.Season > watch.maxSeason {
				watch.maxSeason = entry.Episode.Season
			}
		}

		ordered = append(ordered, candidate{
			traktID:   info.IDs.Trakt,
			imdbID:    info.IDs.IMDB,
			title:     info.Title,
			year:      info.Year,
			mediaType: mediaType,
			list:      models.ListWatched,
			watchedAt: entry.WatchedAt,
		})
	}

	// Last-wins collapse by provider numeric id, stable on first position
	result := make([]candidate, 0, len(ordered))
	position := make(map[int64]int, len(ordered))
	for _, cand := range ordered {
		if idx, seen := position[cand.traktID]; seen {
			// Keep the earliest watched timestamp for repeat watches
			if !result[idx].watchedAt.IsZero() && result[idx].watchedAt.Before(cand.watchedAt) {
				cand.watchedAt = result[idx].watchedAt
			}
			result[idx] = cand
			continue
		}
		position[cand.traktID] = len(result)
		result = append(result, cand)
	}

	return result, watchCounts
}

// enrich builds the library item for one candidate. Failures from either
// provider are swallowed: history defines the universe of items, enrichment
// only decorates them.
func (c *SyncController) enrich(ctx context.Context, cand candidate, watch *seriesWatch) *models.LibraryItem {
	item := &models.LibraryItem{
		ExternalID: cand.imdbID,
		TraktID:    cand.traktID,
		Title:      cand.title,
		Year:       cand.year,
		MediaType:  cand.mediaType,
		Provenance: models.ProvenanceRemoteHistory,
		List:       cand.list,
		WatchedAt:  cand.watchedAt,
	}
	if item.ExternalID == "" {
		item.ExternalID = fmt.Sprintf("trakt-%d", cand.traktID)
	}

	var meta *tmdb.Metadata
	var err error
	if cand.imdbID != "" {
		meta, err = c.metadata.Lookup(ctx, cand.imdbID, cand.mediaType)
	} else {
		meta, err = c.metadata.SearchByTitle(ctx, cand.title, cand.year, cand.mediaType)
	}
	if err != nil {
		metrics.EnrichmentFailures.Inc()
		c.logger.WithError(err).WithField("title", cand.title).Warn("Enrichment failed, keeping bare item")
	} else if meta != nil {
		if cand.imdbID == "" && meta.IMDBID != "" {
			// Title search resolved the cross-provider id
			item.ExternalID = meta.IMDBID
		}
		item.Director = meta.Director
		item.Actors = meta.Actors
		item.Plot = meta.Plot
		item.Genre = meta.Genre
		item.Runtime = meta.Runtime
		item.PosterURL = meta.PosterURL
		if meta.VoteAverage > 0 {
			score := meta.VoteAverage
			item.ScoreExternal = &score
		}
		if cand.mediaType == models.MediaTypeSeries && watch != nil {
			item.Progress = &models.WatchProgress{
				WatchedEpisodes: len(watch.episodes),
				TotalEpisodes:   meta.TotalEpisodes,
				CurrentSeason:   watch.maxSeason,
				TotalSeasons:    meta.TotalSeasons,
			}
		}
		metrics.ItemsEnriched.Inc()
	}

	// Secondary ratings: optional, and any failure is swallowed
	if c.ratings != nil && item.HasIMDBID() {
		if ratings, err := c.ratings.GetRatings(ctx, item.ExternalID); err != nil {
			c.logger.WithError(err).WithField("title", cand.title).Debug("Secondary rating lookup failed")
		} else {
			item.ScoreCommunity = ratings.Community
			item.ScoreCritic = ratings.Critic
			item.ScoreAggregate = ratings.Aggregate
		}
	}

	return item
}
