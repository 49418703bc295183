package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amaumene/gowatcharr/internal/config"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	posterBaseURL  = "https://image.tmdb.org/t/p/w500"

	cacheTTL       = 24 * time.Hour
	cacheCleanup   = 1 * time.Hour
	maxActors      = 4
	requestTimeout = 10 * time.Second
)

// ErrNotFound is returned when TMDB has no record for the given id or query.
var ErrNotFound = fmt.Errorf("title not found in TMDB")

// Metadata is the normalized enrichment result for one title. Empty
// string / zero values mean the provider had nothing usable.
type Metadata struct {
	TMDBID      int64
	IMDBID      string
	Title       string
	Year        int
	Director    string
	Actors      string // comma-with-space joined, lead billing first
	Genre       string // comma-with-space joined
	Plot        string
	Runtime     string // display label, e.g. "116 min"
	PosterURL   string
	VoteAverage float64 // 0-10

	// Series only
	TotalEpisodes int
	TotalSeasons  int
}

// Client handles communication with the TMDB API
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	logger     *logrus.Logger
}

// NewClient creates a new TMDB API client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		apiKey:     cfg.TMDBAPIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		cache:      cache.New(cacheTTL, cacheCleanup),
		logger:     logger,
	}
}

// doRequest performs a GET request against the TMDB API
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) error {
	fullURL := c.baseURL + path
	c.logger.WithField("url", fullURL).Debug("Making TMDB API request")

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type findResponse struct {
	MovieResults []struct {
		ID int64 `json:"id"`
	} `json:"movie_results"`
	TVResults []struct {
		ID int64 `json:"id"`
	} `json:"tv_results"`
}

// Lookup resolves a title by its IMDB id and returns its normalized
// metadata. Results are cached; sync and re-enrichment share hits.
func (c *Client) Lookup(ctx context.Context, imdbID string, mediaType models.MediaType) (*Metadata, error) {
	cacheKey := "imdb:" + imdbID
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*Metadata), nil
	}

	path := fmt.Sprintf("/find/%s?api_key=%s&external_source=imdb_id", url.PathEscape(imdbID), c.apiKey)

	var found findResponse
	if err := c.doRequest(ctx, path, &found); err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", imdbID, err)
	}

	var tmdbID int64
	if mediaType == models.MediaTypeMovie && len(found.MovieResults) > 0 {
		tmdbID = found.MovieResults[0].ID
	} else if mediaType == models.MediaTypeSeries && len(found.TVResults) > 0 {
		tmdbID = found.TVResults[0].ID
	} else {
		return nil, ErrNotFound
	}

	meta, err := c.getDetails(ctx, tmdbID, mediaType)
	if err != nil {
		return nil, err
	}
	if meta.IMDBID == "" {
		meta.IMDBID = imdbID
	}

	c.cache.Set(cacheKey, meta, cache.DefaultExpiration)
	return meta, nil
}

type creditsPayload struct {
	Cast []struct {
		Name  string `json:"name"`
		Order int    `json:"order"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

type detailsResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"` // movies
	Name         string `json:"name"`  // tv
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	ReleaseDate  string `json:"release_date"`   // movies
	FirstAirDate string `json:"first_air_date"` // tv
	VoteAverage  float64 `json:"vote_average"`
	IMDBId       string  `json:"imdb_id"` // movies only
	Runtime      int     `json:"runtime"` // movies
	Genres       []struct {
		Name string `json:"name"`
	} `json:"genres"`
	CreatedBy []struct {
		Name string `json:"name"`
	} `json:"created_by"` // tv
	EpisodeRunTime   []int          `json:"episode_run_time"` // tv
	NumberOfEpisodes int            `json:"number_of_episodes"`
	NumberOfSeasons  int            `json:"number_of_seasons"`
	Credits          creditsPayload `json:"credits"`
	ExternalIDs      struct {
		IMDBId string `json:"imdb_id"`
	} `json:"external_ids"` // tv
}

// getDetails fetches full details (with credits) and normalizes them
func (c *Client) getDetails(ctx context.Context, tmdbID int64, mediaType models.MediaType) (*Metadata, error) {
	kind := "movie"
	if mediaType == models.MediaTypeSeries {
		kind = "tv"
	}

	path := fmt.Sprintf("/%s/%d?api_key=%s&append_to_response=credits,external_ids", kind, tmdbID, c.apiKey)

	var details detailsResponse
	if err := c.doRequest(ctx, path, &details); err != nil {
		return nil, fmt.Errorf("failed to get %s details for %d: %w", kind, tmdbID, err)
	}

	return c.normalize(&details, mediaType), nil
}

// normalize converts a raw details payload into Metadata
func (c *Client) normalize(details *detailsResponse, mediaType models.MediaType) *Metadata {
	meta := &Metadata{
		TMDBID:      details.ID,
		Title:       details.Title,
		Plot:        details.Overview,
		VoteAverage: details.VoteAverage,
	}
	meta.IMDBID = details.IMDBId
	if meta.IMDBID == "" {
		meta.IMDBID = details.ExternalIDs.IMDBId
	}
	if meta.Title == "" {
		meta.Title = details.Name
	}

	dateStr := details.ReleaseDate
	if dateStr == "" {
		dateStr = details.FirstAirDate
	}
	if len(dateStr) >= 4 {
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			meta.Year = t.Year()
		}
	}

	var genres []string
	for _, g := range details.Genres {
		genres = append(genres, g.Name)
	}
	meta.Genre = strings.Join(genres, ", ")

	if details.PosterPath != "" {
		meta.PosterURL = posterBaseURL + details.PosterPath
	}

	// Director: crew "Director" job for movies, creators for tv
	if mediaType == models.MediaTypeMovie {
		for _, member := range details.Credits.Crew {
			if member.Job == "Director" {
				meta.Director = member.Name
				break
			}
		}
	} else {
		var creators []string
		for _, creator := range details.CreatedBy {
			creators = append(creators, creator.Name)
		}
		meta.Director = strings.Join(creators, ", ")
	}

	var actors []string
	for _, member := range details.Credits.Cast {
		if len(actors) >= maxActors {
			break
		}
		actors = append(actors, member.Name)
	}
	meta.Actors = strings.Join(actors, ", ")

	runtime := details.Runtime
	if runtime == 0 && len(details.EpisodeRunTime) > 0 {
		runtime = details.EpisodeRunTime[0]
	}
	if runtime > 0 {
		meta.Runtime = fmt.Sprintf("%d min", runtime)
	}

	if mediaType == models.MediaTypeSeries {
		meta.TotalEpisodes = details.NumberOfEpisodes
		meta.TotalSeasons = details.NumberOfSeasons
	}

	return meta
}
