package trakt

import (
	"context"
	"fmt"
	"time"
)

// IDs holds the identifiers Trakt attaches to a title. Trakt is the
// provider numeric id; IMDB is the cross-provider content id (may be empty).
type IDs struct {
	Trakt int64  `json:"trakt"`
	Slug  string `json:"slug"`
	IMDB  string `json:"imdb"`
	TMDB  int64  `json:"tmdb"`
}

// MediaInfo is the movie/show payload embedded in history and watchlist entries
type MediaInfo struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// EpisodeInfo identifies an episode within its parent show
type EpisodeInfo struct {
	Season int `json:"season"`
	Number int `json:"number"`
}

// HistoryItem is one entry of the watch history. Type is "movie" or
// "episode"; episodes carry their parent show.
type HistoryItem struct {
	ID        int64        `json:"id"`
	WatchedAt time.Time    `json:"watched_at"`
	Action    string       `json:"action"`
	Type      string       `json:"type"`
	Movie     *MediaInfo   `json:"movie,omitempty"`
	Show      *MediaInfo   `json:"show,omitempty"`
	Episode   *EpisodeInfo `json:"episode,omitempty"`
}

// WatchlistItem is one entry of the watchlist. Type is "movie" or "show".
type WatchlistItem struct {
	ListedAt time.Time  `json:"listed_at"`
	Type     string     `json:"type"`
	Movie    *MediaInfo `json:"movie,omitempty"`
	Show     *MediaInfo `json:"show,omitempty"`
}

// GetHistoryPage retrieves one page of the watch history. An empty slice
// means the history is exhausted. Rate limits and transient failures are
// retried; exhausting the retries returns an error.
func (c *Client) GetHistoryPage(ctx context.Context, page, limit int) ([]HistoryItem, error) {
	path := fmt.Sprintf("/sync/history?page=%d&limit=%d", page, limit)

	var items []HistoryItem
	if err := c.doRequestWithRetry(ctx, "GET", path, &items); err != nil {
		return nil, fmt.Errorf("failed to get history page %d: %w", page, err)
	}

	return items, nil
}

// GetWatchlist retrieves the full watchlist in a single fetch
func (c *Client) GetWatchlist(ctx context.Context) ([]WatchlistItem, error) {
	var items []WatchlistItem
	if err := c.doRequestWithRetry(ctx, "GET", "/sync/watchlist", &items); err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}

	return items, nil
}
