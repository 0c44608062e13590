// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package catalog

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelrec/internal/logging"
	"github.com/tomtom215/reelrec/internal/metrics"
)

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Name string

	// MinRequests is how many requests the breaker observes before it may open.
	// Default: 6
	MinRequests uint32

	// FailureRatio opens the circuit when reached.
	// Default: 0.6
	FailureRatio float64

	// Timeout is how long the circuit stays open before probing.
	// Default: 1m
	Timeout time.Duration
}

// BreakerSource wraps a Source with a circuit breaker. While the circuit is
// open, fetches fail immediately instead of waiting on a dead upstream.
type BreakerSource struct {
	source Source
	cb     *gobreaker.CircuitBreaker[[]RawItem]
	name   string
}

// NewBreakerSource wraps source. Zero config values fall back to defaults.
func NewBreakerSource(source Source, cfg BreakerConfig) *BreakerSource {
	if cfg.Name == "" {
		cfg.Name = "tmdb-api"
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 6
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.6
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]RawItem](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logging.Warn().Str("breaker", cfg.Name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).Msg("Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// A cancelled caller says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerSource{source: source, cb: cb, name: cfg.Name}
}

// FetchPage fetches through the circuit breaker.
func (b *BreakerSource) FetchPage(ctx context.Context, category Category, page int) ([]RawItem, error) {
	items, err := b.cb.Execute(func() ([]RawItem, error) {
		return b.source.FetchPage(ctx, category, page)
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return items, err
}

// State returns the current breaker state.
func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
