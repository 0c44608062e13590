// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelrec/internal/catalog"
	"github.com/tomtom215/reelrec/internal/recommend"
)

// TrainResponse is the data of POST /recommends/train.
type TrainResponse struct {
	Message string                 `json:"message"`
	Result  *recommend.TrainResult `json:"result"`
}

// InitializeResponse is the data of POST /recommends/initialize.
type InitializeResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// RecommendResponse is the data of GET /recommends/recommend/{userID}.
type RecommendResponse struct {
	Recommendations []recommend.ScoredItem `json:"recommendations"`
	Count           int                    `json:"count"`
}

// Train handles POST /api/v1/recommends/train?force=true|false.
// Only the literal "true" forces retraining.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	force := r.URL.Query().Get("force") == "true"

	result, err := h.recommender.TrainModel(r.Context(), force)
	if err != nil {
		rw.InternalError(ErrCodeTrainingFailed, "Model training failed", err)
		return
	}

	message := "Model training completed"
	if result.Status == recommend.StatusSkipped {
		message = "Model is fresh, training skipped"
	}
	rw.Success(TrainResponse{Message: message, Result: result})
}

// Initialize handles POST /api/v1/recommends/initialize.
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	count, err := h.recommender.InitializeMovieData(r.Context())
	if err != nil {
		rw.InternalError(ErrCodeInitializeFailed, "Initialization failed", err)
		return
	}
	rw.Success(InitializeResponse{Message: "Movie data initialized", Count: count})
}

// Status handles GET /api/v1/recommends/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.recommender.GetModelInfo())
}

// Recommend handles GET /api/v1/recommends/recommend/{userID}.
// Unknown users receive an empty list.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := UserPath{UserID: chi.URLParam(r, "userID")}
	if !validateRequest(w, r, &req) {
		return
	}

	items, err := h.recommender.RecommendMovies(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		rw.InternalError(ErrCodeRecommendFailed, "Recommendation failed", err)
		return
	}
	if items == nil {
		items = []recommend.ScoredItem{}
	}
	rw.Success(RecommendResponse{Recommendations: items, Count: len(items)})
}

// MovieDetails handles GET /api/v1/movies/{movieID}.
func (h *Handler) MovieDetails(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		rw.BadRequest("movieID must be an integer")
		return
	}
	req := MoviePath{MovieID: id}
	if !validateRequest(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	item, err := h.recommender.MovieDetails(ctx, req.MovieID)
	switch {
	case err == nil:
		rw.Success(item)
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, recommend.ErrDetailsUnavailable):
		rw.NotFound(ErrCodeNotFound, "Movie not found")
	default:
		rw.ExternalServiceError("tmdb", err)
	}
}
