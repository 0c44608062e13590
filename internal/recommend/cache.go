// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"sync"
	"time"
)

// ModelCache holds the catalog vectors, the trained model and when it was
// trained. Vectors and model are only ever replaced as a whole. It is safe
// for concurrent use.
type ModelCache struct {
	mu            sync.RWMutex
	vectors       []FeatureVector
	index         map[string]int
	model         *Autoencoder
	lastTrainedAt time.Time
	version       int
	window        time.Duration

	// generation increments whenever the vectors or the model change.
	generation uint64
}

// Snapshot is a consistent view of the cache at one generation. Callers
// must not modify its vectors.
type Snapshot struct {
	Model      *Autoencoder
	Vectors    []FeatureVector
	Generation uint64
	index      map[string]int
}

// Lookup returns the snapshot's vector for an item ID.
func (s Snapshot) Lookup(id string) (FeatureVector, bool) {
	i, ok := s.index[id]
	if !ok {
		return FeatureVector{}, false
	}
	return s.Vectors[i], true
}

// NewModelCache creates an empty cache with the given staleness window.
func NewModelCache(window time.Duration) *ModelCache {
	return &ModelCache{window: window, index: map[string]int{}}
}

// ReplaceVectors swaps in a new catalog snapshot.
func (c *ModelCache) ReplaceVectors(vectors []FeatureVector) {
	index := make(map[string]int, len(vectors))
	for i := range vectors {
		if _, dup := index[vectors[i].ID]; !dup {
			index[vectors[i].ID] = i
		}
	}

	c.mu.Lock()
	c.vectors = vectors
	c.index = index
	c.generation++
	c.mu.Unlock()
}

// Vectors returns the current snapshot. Callers must not modify it.
func (c *ModelCache) Vectors() []FeatureVector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vectors
}

// Lookup returns the cached vector for an item ID.
func (c *ModelCache) Lookup(id string) (FeatureVector, bool) {
	return c.Snapshot().Lookup(id)
}

// Snapshot returns the model, vectors and generation read under one lock.
func (c *ModelCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{Model: c.model, Vectors: c.vectors, Generation: c.generation, index: c.index}
}

// Len is the number of cached vectors.
func (c *ModelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

// RecordTraining stores a newly trained model.
func (c *ModelCache) RecordTraining(model *Autoencoder, when time.Time) {
	c.mu.Lock()
	c.model = model
	c.lastTrainedAt = when
	c.version++
	c.generation++
	c.mu.Unlock()
}

// Model returns the trained model and its training time, or nil.
func (c *ModelCache) Model() (*Autoencoder, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model, c.lastTrainedAt
}

// IsStale reports whether a model needs training at now. A model is fresh
// only if it exists and was trained less than the window ago.
func (c *ModelCache) IsStale(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.model == nil {
		return true
	}
	return now.Sub(c.lastTrainedAt) >= c.window
}

// Version increments on every recorded training.
func (c *ModelCache) Version() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
