package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amaumene/gowatcharr/internal/utils"
	"github.com/patrickmn/go-cache"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		apiKey:     "test-key",
		httpClient: &http.Client{},
		baseURL:    serverURL,
		cache:      cache.New(time.Minute, time.Minute),
		logger:     utils.NewLogger("error"),
	}
}

func TestGetRatings(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.URL.Query().Get("i"); got != "tt0111161" {
			t.Errorf("Expected i=tt0111161, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Response": "True",
			"Ratings": [
				{"Source": "Internet Movie Database", "Value": "9.3/10"},
				{"Source": "Rotten Tomatoes", "Value": "89%"},
				{"Source": "Metacritic", "Value": "82/100"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ratings, err := client.GetRatings(context.Background(), "tt0111161")
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}

	if ratings.Community != "9.3/10" {
		t.Errorf("Expected IMDb rating as community score, got %q", ratings.Community)
	}
	if ratings.Critic != "89%" {
		t.Errorf("Expected Rotten Tomatoes as critic score, got %q", ratings.Critic)
	}
	if ratings.Aggregate != "82/100" {
		t.Errorf("Expected Metacritic as aggregate score, got %q", ratings.Aggregate)
	}

	// Second call hits the cache
	if _, err := client.GetRatings(context.Background(), "tt0111161"); err != nil {
		t.Fatalf("Cached call failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("Expected 1 upstream request, got %d", requests)
	}
}

func TestGetRatingsUnavailableValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Response": "True",
			"Ratings": [{"Source": "Rotten Tomatoes", "Value": "N/A"}],
			"imdbRating": "N/A",
			"Metascore": "N/A"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ratings, err := client.GetRatings(context.Background(), "tt0000001")
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}

	// The provider's "N/A" marker never leaks out
	if ratings.Community != "" || ratings.Critic != "" || ratings.Aggregate != "" {
		t.Errorf("Unavailable values should map to empty, got %+v", ratings)
	}
}

func TestGetRatingsTopLevelFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Response": "True",
			"Ratings": [],
			"imdbRating": "7.4",
			"Metascore": "61"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ratings, err := client.GetRatings(context.Background(), "tt0000002")
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}

	if ratings.Community != "7.4/10" {
		t.Errorf("Expected top-level imdbRating fallback, got %q", ratings.Community)
	}
	if ratings.Aggregate != "61/100" {
		t.Errorf("Expected top-level Metascore fallback, got %q", ratings.Aggregate)
	}
}

func TestGetRatingsLookupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GetRatings(context.Background(), "bogus"); err == nil {
		t.Error("Expected error for a failed lookup")
	}
}
