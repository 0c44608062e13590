// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelrec/internal/catalog"
	"github.com/tomtom215/reelrec/internal/recommend"
	"github.com/tomtom215/reelrec/internal/userstore"
)

// Recommender is the recommendation service surface used by the handlers.
// Satisfied by *recommend.Service.
type Recommender interface {
	InitializeMovieData(ctx context.Context) (int, error)
	TrainModel(ctx context.Context, force bool) (*recommend.TrainResult, error)
	RecommendMovies(ctx context.Context, userID string) ([]recommend.ScoredItem, error)
	GetModelInfo() recommend.ModelInfo
	MovieDetails(ctx context.Context, id int64) (*catalog.RawItem, error)
	SimilarMovies(ctx context.Context, id int64) ([]recommend.ScoredItem, error)
	BrowseCategory(ctx context.Context, category catalog.Category, page int) ([]catalog.RawItem, error)
}

// Handler holds the dependencies of every route.
type Handler struct {
	recommender Recommender
	users       userstore.Store
	startTime   time.Time

	// requestTimeout bounds read handlers. Training routes use the
	// service's own training timeout.
	requestTimeout time.Duration
}

// NewHandler creates the route handlers.
func NewHandler(recommender Recommender, users userstore.Store) *Handler {
	return &Handler{
		recommender:    recommender,
		users:          users,
		startTime:      time.Now(),
		requestTimeout: 30 * time.Second,
	}
}
