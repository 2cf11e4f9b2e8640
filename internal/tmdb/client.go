// Package tmdb is a small client for The Movie Database search API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/movie-night/internal/config"
	"github.com/iliyamo/movie-night/internal/logger"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("tmdb: api key not configured")
	// ErrRejected is returned for 4xx responses, which are not retried.
	ErrRejected = errors.New("tmdb: request rejected")
)

// Result is one search hit.
type Result struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
}

type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	log        logger.Logger
}

func NewClient(cfg config.TMDBConfig, log logger.Logger) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		log:        log,
	}
}

// Search queries /search/movie, retrying transport errors and 5xx/429
// responses with a growing backoff.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			c.log.Info("tmdb: retrying search", "attempt", attempt, "max_retries", c.maxRetries)
		}

		results, err := c.doSearch(ctx, query)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if errors.Is(err, ErrRejected) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) doSearch(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	endpoint := c.baseURL + "/search/movie?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("tmdb: unexpected status code: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	var payload struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tmdb: decode response: %w", err)
	}
	if payload.Results == nil {
		payload.Results = []Result{}
	}
	return payload.Results, nil
}
