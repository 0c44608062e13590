// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"math/rand"
	"testing"
	"time"
)

func TestModelCacheIsStale(t *testing.T) {
	t.Parallel()

	trainedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	model := NewAutoencoder(4, 3, 2, 0, rand.New(rand.NewSource(1)))

	tests := []struct {
		name  string
		model *Autoencoder
		now   time.Time
		want  bool
	}{
		{"no model", nil, trainedAt, true},
		{"just trained", model, trainedAt, false},
		{"inside window", model, trainedAt.Add(24*time.Hour - time.Nanosecond), false},
		{"window boundary", model, trainedAt.Add(24 * time.Hour), true},
		{"long ago", model, trainedAt.Add(72 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewModelCache(24 * time.Hour)
			if tt.model != nil {
				c.RecordTraining(tt.model, trainedAt)
			}
			if got := c.IsStale(tt.now); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModelCacheReplaceVectors(t *testing.T) {
	t.Parallel()

	c := NewModelCache(time.Hour)
	c.ReplaceVectors([]FeatureVector{{ID: "1"}, {ID: "2"}})
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Lookup("2"); !ok {
		t.Error("Lookup(2) missing")
	}

	c.ReplaceVectors([]FeatureVector{{ID: "3"}})
	if _, ok := c.Lookup("1"); ok {
		t.Error("old vectors should be replaced wholesale")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestModelCacheVersion(t *testing.T) {
	t.Parallel()

	c := NewModelCache(time.Hour)
	model := NewAutoencoder(4, 3, 2, 0, rand.New(rand.NewSource(1)))
	c.RecordTraining(model, time.Now())
	c.RecordTraining(model, time.Now())
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
}

func TestModelCacheSnapshotGeneration(t *testing.T) {
	t.Parallel()

	c := NewModelCache(time.Hour)
	start := c.Snapshot()
	if start.Model != nil || len(start.Vectors) != 0 {
		t.Fatalf("empty cache snapshot = %+v", start)
	}

	c.ReplaceVectors([]FeatureVector{{ID: "1"}, {ID: "2"}})
	afterVectors := c.Snapshot()
	if afterVectors.Generation == start.Generation {
		t.Error("ReplaceVectors did not advance the generation")
	}
	if _, ok := afterVectors.Lookup("2"); !ok {
		t.Error("snapshot Lookup(2) missing")
	}

	c.RecordTraining(NewAutoencoder(4, 3, 2, 0, rand.New(rand.NewSource(1))), time.Now())
	afterTraining := c.Snapshot()
	if afterTraining.Generation == afterVectors.Generation {
		t.Error("RecordTraining did not advance the generation")
	}

	c.ReplaceVectors([]FeatureVector{{ID: "3"}})
	if _, ok := afterVectors.Lookup("2"); !ok {
		t.Error("older snapshot changed after ReplaceVectors")
	}
}
