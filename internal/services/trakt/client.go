package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amaumene/gowatcharr/internal/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.trakt.tv"
	apiVersion     = "2"

	// Each request gets its own timeout; a timed-out request counts as a
	// transient failure, not an HTTP error.
	requestTimeout = 15 * time.Second

	maxRetryAttempts = 4
	rateLimitDelay   = 2 * time.Second // linear unit: wait = attempt * rateLimitDelay
	transientDelay   = 1 * time.Second
)

// errRateLimited marks an HTTP 429 so the retry policy can back off linearly.
var errRateLimited = errors.New("rate limited")

// StatusError is a non-retryable HTTP error response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client handles communication with Trakt API
type Client struct {
	clientID     string
	clientSecret string
	tokenStore   TokenStore
	httpClient   *http.Client
	baseURL      string
	logger       *logrus.Logger
}

// NewClient creates a new Trakt API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	tokenStore, err := NewFileTokenStore(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	return &Client{
		clientID:     cfg.TraktClientID,
		clientSecret: cfg.TraktClientSecret,
		tokenStore:   tokenStore,
		httpClient:   &http.Client{},
		baseURL:      defaultBaseURL,
		logger:       logger,
	}, nil
}

// doRequest performs an authenticated HTTP request to Trakt API
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	// Check and refresh token if needed
	if err := c.ensureValidToken(ctx); err != nil {
		return fmt.Errorf("failed to ensure valid token: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	fullURL := c.baseURL + path
	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    fullURL,
	}).Debug("Making Trakt API request")

	req, err := http.NewRequestWithContext(reqCtx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)

	// Add authorization if we have a token
	token, err := c.tokenStore.GetToken()
	if err == nil && token != nil {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	// Perform request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Check status code
	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w", fullURL, errRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	// Parse response
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// retryPolicy implements backoff.BackOff with the asymmetric waits the API
// calls for: linear backoff after 429 (wait = attempt * rateLimitDelay) and
// a fixed short wait after a transient network failure. Attempts are
// bounded; exhausting them is fatal to the caller.
type retryPolicy struct {
	attempt        int
	maxAttempts    int
	rateLimited    bool // set by the operation before it returns an error
	rateDelay      time.Duration
	transientDelay time.Duration
}

func (p *retryPolicy) NextBackOff() time.Duration {
	p.attempt++
	if p.attempt >= p.maxAttempts {
		return backoff.Stop
	}
	if p.rateLimited {
		return time.Duration(p.attempt) * p.rateDelay
	}
	return p.transientDelay
}

func (p *retryPolicy) Reset() {
	p.attempt = 0
}

// doRequestWithRetry wraps doRequest with the bounded retry policy. HTTP
// error statuses other than 429 are permanent failures.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, result interface{}) error {
	policy := &retryPolicy{
		maxAttempts:    maxRetryAttempts,
		rateDelay:      rateLimitDelay,
		transientDelay: transientDelay,
	}

	operation := func() error {
		err := c.doRequest(ctx, method, path, nil, result)
		if err == nil {
			return nil
		}

		var statusErr *StatusError
		switch {
		case errors.Is(err, errRateLimited):
			policy.rateLimited = true
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": policy.attempt + 1,
			}).Warn("Rate limited by Trakt, backing off")
			return err
		case errors.As(err, &statusErr):
			return backoff.Permanent(err)
		default:
			// Network blip or timeout
			policy.rateLimited = false
			c.logger.WithError(err).WithField("path", path).Debug("Transient Trakt request failure, retrying")
			return err
		}
	}

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// ensureValidToken checks if the current token is valid and refreshes if needed
func (c *Client) ensureValidToken(ctx context.Context) error {
	token, err := c.tokenStore.GetToken()
	if err != nil {
		c.logger.Debug("No valid token found, authentication required")
		return nil
	}

	// Check if token expires within 24 hours
	if time.Until(token.ExpiresAt) < 24*time.Hour {
		c.logger.Info("Token expires soon, refreshing...")
		return c.RefreshToken(ctx)
	}

	return nil
}
