// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelrec/internal/config"
	"github.com/tomtom215/reelrec/internal/logging"
)

// maxErrorBodySize limits how much of a failed response body is read into
// an error message.
const maxErrorBodySize = 1024

// readBodyForError reads a bounded prefix of a response body for error messages.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// TMDBClient fetches movie listings and details from The Movie Database v3 API.
type TMDBClient struct {
	baseURL         string
	apiKey          string
	readAccessToken string
	language        string
	client          *http.Client
	limiter         *rate.Limiter
	maxRetries      int
	retryBaseDelay  time.Duration
	logger          zerolog.Logger
}

// NewTMDBClient creates a client from configuration.
func NewTMDBClient(cfg *config.TMDBConfig) *TMDBClient {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &TMDBClient{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		readAccessToken: cfg.ReadAccessToken,
		language:        cfg.Language,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		logger:         logging.With().Str("component", "tmdb").Logger(),
	}
}

// pageResponse keeps results raw so one malformed record does not discard
// the whole page.
type pageResponse struct {
	Page         int               `json:"page"`
	Results      []json.RawMessage `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// FetchPage returns one page of a category listing.
func (c *TMDBClient) FetchPage(ctx context.Context, category Category, page int) ([]RawItem, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var resp pageResponse
	if err := c.getJSON(ctx, category.path(), params, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", category, page, err)
	}

	items := make([]RawItem, 0, len(resp.Results))
	for i, raw := range resp.Results {
		var item RawItem
		if err := json.Unmarshal(raw, &item); err != nil {
			c.logger.Warn().Err(err).Str("category", string(category)).Int("page", page).Int("index", i).
				Msg("Skipping malformed catalog record")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// MovieDetails returns the full record for one movie.
func (c *TMDBClient) MovieDetails(ctx context.Context, id int64) (*RawItem, error) {
	var item RawItem
	if err := c.getJSON(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &item); err != nil {
		return nil, fmt.Errorf("fetch movie %d: %w", id, err)
	}
	return &item, nil
}

// getJSON performs a GET against path and decodes a 200 response into result.
func (c *TMDBClient) getJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doRequestWithRateLimit performs an HTTP request paced by the client-side
// limiter, retrying HTTP 429 responses with exponential backoff
// (base, 2x base, 4x base, ...) or the server's Retry-After value.
func (c *TMDBClient) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.readAccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.readAccessToken)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w after %d retries", ErrRateLimited, c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		c.logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("Catalog rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}
