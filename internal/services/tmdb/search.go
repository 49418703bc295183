package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/patrickmn/go-cache"
)

// minSimilarity is the acceptance threshold for title-search matches.
// Below it the result is treated as a different title entirely.
const minSimilarity = 0.5

type searchResponse struct {
	Results []struct {
		ID           int64  `json:"id"`
		Title        string `json:"title"`
		Name         string `json:"name"`
		ReleaseDate  string `json:"release_date"`
		FirstAirDate string `json:"first_air_date"`
	} `json:"results"`
}

// SearchByTitle resolves a title without a cross-provider id by searching
// TMDB and scoring candidates against the wanted title. The details call on
// the best match usually yields the IMDB id, upgrading the item's key.
func (c *Client) SearchByTitle(ctx context.Context, title string, year int, mediaType models.MediaType) (*Metadata, error) {
	cacheKey := fmt.Sprintf("search:%s:%s:%d", mediaType, strings.ToLower(title), year)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*Metadata), nil
	}

	kind := "movie"
	yearParam := "year"
	if mediaType == models.MediaTypeSeries {
		kind = "tv"
		yearParam = "first_air_date_year"
	}

	path := fmt.Sprintf("/search/%s?api_key=%s&query=%s", kind, c.apiKey, url.QueryEscape(title))
	if year > 0 {
		path += fmt.Sprintf("&%s=%d", yearParam, year)
	}

	var resp searchResponse
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", title, err)
	}

	var bestID int64
	bestScore := 0.0
	for _, result := range resp.Results {
		candidate := result.Title
		if candidate == "" {
			candidate = result.Name
		}
		score := titleSimilarity(title, candidate)
		if score > bestScore {
			bestScore = score
			bestID = result.ID
		}
	}

	if bestID == 0 || bestScore < minSimilarity {
		return nil, ErrNotFound
	}

	meta, err := c.getDetails(ctx, bestID, mediaType)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, meta, cache.DefaultExpiration)
	return meta, nil
}

// titleSimilarity scores two titles in [0,1] using normalized edit distance
func titleSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}

	return 1.0 - float64(distance)/float64(longest)
}
