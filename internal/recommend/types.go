// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelrec/internal/catalog"
	"github.com/tomtom215/reelrec/internal/userstore"
)

var (
	// ErrEmptyCatalog is returned when training finds no catalog vectors.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrNumericInstability is returned when the training loss stops being finite.
	ErrNumericInstability = errors.New("training loss is not finite")

	// ErrDimensionMismatch is returned when a vector does not match the model width.
	ErrDimensionMismatch = errors.New("vector width does not match model")
)

// TrainStatus is the outcome of a training request.
type TrainStatus string

const (
	StatusSkipped TrainStatus = "skipped"
	StatusTrained TrainStatus = "trained"
)

// Ingestor produces the deduplicated catalog.
type Ingestor interface {
	Ingest(ctx context.Context) []catalog.RawItem
}

// UserStore resolves a user's watch history.
// Unknown users must yield userstore.ErrUserNotFound.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*userstore.UserProfile, error)
}

// FeatureVector is a catalog item with its model input vector.
type FeatureVector struct {
	ID       string
	Title    string
	Features []float64
	Raw      catalog.RawItem
}

// ScoredItem is a recommended catalog item. Score is nil for catalog-order
// fallback results.
type ScoredItem struct {
	Item  catalog.RawItem
	Score *float64
}

// SimilarityScore formats the score with four decimals, or "" when unscored.
func (s ScoredItem) SimilarityScore() string {
	if s.Score == nil {
		return ""
	}
	return strconv.FormatFloat(*s.Score, 'f', 4, 64)
}

// MarshalJSON emits the raw item fields plus similarity_score when scored.
//
//nolint:gocritic // value receiver so slices of ScoredItem marshal directly
func (s ScoredItem) MarshalJSON() ([]byte, error) {
	fields, err := s.Item.Fields()
	if err != nil {
		return nil, err
	}
	if s.Score != nil {
		raw, err := json.Marshal(s.SimilarityScore())
		if err != nil {
			return nil, err
		}
		fields["similarity_score"] = raw
	}
	return json.Marshal(fields)
}

// TrainResult reports what a training request did.
type TrainResult struct {
	Status        TrainStatus `json:"status"`
	LastTrainedAt time.Time   `json:"lastTrainedAt"`
	FinalLoss     *float64    `json:"finalLoss,omitempty"`
	ValLoss       *float64    `json:"valLoss,omitempty"`
	Epochs        int         `json:"epochs,omitempty"`
	Samples       int         `json:"samples,omitempty"`
}

// ModelInfo summarizes the model cache.
type ModelInfo struct {
	Trained          bool    `json:"trained"`
	LastTrainingTime *string `json:"lastTrainingTime"`
	MovieCacheSize   int     `json:"movieCacheSize"`
	Training         bool    `json:"training"`
	Epoch            int     `json:"epoch"`
	Version          int     `json:"version"`
}

// TrainingProgress is published after every epoch.
type TrainingProgress struct {
	Epoch   int
	Epochs  int
	Loss    float64
	ValLoss *float64
}

// ProgressFunc receives training progress. It runs on the training goroutine
// and must not block.
type ProgressFunc func(TrainingProgress)

// isoTimestamp formats t the way JavaScript's Date.toISOString does.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
