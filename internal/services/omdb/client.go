package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/amaumene/gowatcharr/internal/config"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://www.omdbapi.com/"

	cacheTTL       = 24 * time.Hour
	cacheCleanup   = 1 * time.Hour
	requestTimeout = 10 * time.Second

	// unavailable is OMDb's own "field unknown" marker. It never leaves
	// this package; callers see empty strings instead.
	unavailable = "N/A"
)

// Ratings holds the secondary rating fields for one title. Empty string
// means the provider had no rating.
type Ratings struct {
	Community string // IMDb, e.g. "8.7/10"
	Critic    string // Rotten Tomatoes, e.g. "94%"
	Aggregate string // Metacritic, e.g. "88/100"
}

// Client handles communication with the OMDb API. A nil-keyed client is
// never constructed; callers skip OMDb entirely when no key is configured.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	logger     *logrus.Logger
}

// NewClient creates a new OMDb API client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		apiKey:     cfg.OMDBAPIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		cache:      cache.New(cacheTTL, cacheCleanup),
		logger:     logger,
	}
}

type omdbResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Ratings  []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
	IMDBRating string `json:"imdbRating"`
	Metascore  string `json:"Metascore"`
}

// GetRatings retrieves the rating fields for an IMDB id. "N/A" values are
// mapped to absent before they reach the caller.
func (c *Client) GetRatings(ctx context.Context, imdbID string) (*Ratings, error) {
	if cached, found := c.cache.Get(imdbID); found {
		return cached.(*Ratings), nil
	}

	fullURL := fmt.Sprintf("%s?apikey=%s&i=%s", c.baseURL, c.apiKey, url.QueryEscape(imdbID))
	c.logger.WithField("imdb_id", imdbID).Debug("Making OMDb API request")

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var payload omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.Response != "True" {
		return nil, fmt.Errorf("OMDb lookup failed for %s: %s", imdbID, payload.Error)
	}

	ratings := &Ratings{}
	for _, r := range payload.Ratings {
		value := clean(r.Value)
		switch r.Source {
		case "Internet Movie Database":
			ratings.Community = value
		case "Rotten Tomatoes":
			ratings.Critic = value
		case "Metacritic":
			ratings.Aggregate = value
		}
	}

	// Top-level fields fill gaps when the Ratings array is sparse
	if ratings.Community == "" && clean(payload.IMDBRating) != "" {
		ratings.Community = clean(payload.IMDBRating) + "/10"
	}
	if ratings.Aggregate == "" && clean(payload.Metascore) != "" {
		ratings.Aggregate = clean(payload.Metascore) + "/100"
	}

	c.cache.Set(imdbID, ratings, cache.DefaultExpiration)
	return ratings, nil
}

// clean maps the provider's "N/A" sentinel to an absent value
func clean(value string) string {
	if value == unavailable {
		return ""
	}
	return value
}
