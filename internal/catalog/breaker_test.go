// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

type countingSource struct {
	calls int
	err   error
}

func (c *countingSource) FetchPage(context.Context, Category, int) ([]RawItem, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return items(1), nil
}

func TestBreakerSourceOpensAfterFailures(t *testing.T) {
	t.Parallel()

	inner := &countingSource{err: errors.New("upstream down")}
	b := NewBreakerSource(inner, BreakerConfig{Name: "test-open", MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := b.FetchPage(context.Background(), CategoryPopular, 1); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	_, err := b.FetchPage(context.Background(), CategoryPopular, 1)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls)
	}
}

func TestBreakerSourcePassesThrough(t *testing.T) {
	t.Parallel()

	inner := &countingSource{}
	b := NewBreakerSource(inner, BreakerConfig{Name: "test-pass"})

	got, err := b.FetchPage(context.Background(), CategoryTopRated, 2)
	if err != nil || len(got) != 1 {
		t.Fatalf("FetchPage() = %v, %v", got, err)
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}
