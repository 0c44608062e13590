// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"fmt"
	"time"
)

// Config contains the model shape, training and ranking parameters.
type Config struct {
	// TopK is the maximum number of items a recommendation returns.
	TopK int `json:"top_k"`

	// StalenessWindow is how long a trained model stays fresh.
	StalenessWindow time.Duration `json:"staleness_window"`

	// Hidden1 and Hidden2 are the widths of the two ReLU layers.
	// Hidden2 is the bottleneck.
	Hidden1 int `json:"hidden1"`
	Hidden2 int `json:"hidden2"`

	// L2 is the weight decay applied to the first hidden layer's kernel.
	L2 float64 `json:"l2"`

	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`

	// ValidationSplit is the trailing fraction of samples held out for
	// monitoring. It never affects when training stops.
	ValidationSplit float64 `json:"validation_split"`

	// ProgressEvery controls how often epoch progress is logged.
	ProgressEvery int `json:"progress_every"`

	// Seed makes weight initialization and shuffling reproducible.
	// Zero uses a fixed default seed.
	Seed int64 `json:"seed"`

	// TrainingTimeout bounds catalog ingestion plus the epoch loop.
	TrainingTimeout time.Duration `json:"training_timeout"`

	// CacheSize bounds the per-user response cache. Zero disables it.
	CacheSize int           `json:"cache_size"`
	CacheTTL  time.Duration `json:"cache_ttl"`
}

// DefaultConfig returns the reference model and ranking parameters.
func DefaultConfig() Config {
	return Config{
		TopK:            10,
		StalenessWindow: 24 * time.Hour,
		Hidden1:         10,
		Hidden2:         8,
		L2:              0.001,
		LearningRate:    0.001,
		Epochs:          100,
		BatchSize:       32,
		ValidationSplit: 0.2,
		ProgressEvery:   10,
		Seed:            42,
		TrainingTimeout: 10 * time.Minute,
		CacheSize:       1000,
		CacheTTL:        5 * time.Minute,
	}
}

// Validate checks that every parameter is usable.
func (c *Config) Validate() error {
	switch {
	case c.TopK < 1:
		return fmt.Errorf("top_k must be at least 1, got %d", c.TopK)
	case c.StalenessWindow <= 0:
		return fmt.Errorf("staleness_window must be positive, got %s", c.StalenessWindow)
	case c.Hidden1 < 1 || c.Hidden2 < 1:
		return fmt.Errorf("hidden layer widths must be at least 1, got %d and %d", c.Hidden1, c.Hidden2)
	case c.L2 < 0:
		return fmt.Errorf("l2 must be non-negative, got %g", c.L2)
	case c.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	case c.Epochs < 1:
		return fmt.Errorf("epochs must be at least 1, got %d", c.Epochs)
	case c.BatchSize < 1:
		return fmt.Errorf("batch_size must be at least 1, got %d", c.BatchSize)
	case c.ValidationSplit < 0 || c.ValidationSplit >= 1:
		return fmt.Errorf("validation_split must be in [0,1), got %g", c.ValidationSplit)
	case c.ProgressEvery < 1:
		return fmt.Errorf("progress_every must be at least 1, got %d", c.ProgressEvery)
	case c.TrainingTimeout <= 0:
		return fmt.Errorf("training_timeout must be positive, got %s", c.TrainingTimeout)
	case c.CacheSize < 0 || c.CacheTTL < 0:
		return fmt.Errorf("cache_size and cache_ttl must be non-negative, got %d and %s", c.CacheSize, c.CacheTTL)
	}
	return nil
}
