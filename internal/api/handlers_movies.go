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

// CategoryResponse is the data of GET /movies/category/{category}.
type CategoryResponse struct {
	Category string            `json:"category"`
	Page     int               `json:"page"`
	Results  []catalog.RawItem `json:"results"`
	Count    int               `json:"count"`
}

// SimilarResponse is the data of GET /movies/{movieID}/similar.
type SimilarResponse struct {
	MovieID int64                  `json:"movieId"`
	Similar []recommend.ScoredItem `json:"similar"`
	Count   int                    `json:"count"`
}

// BrowseCategory handles GET /api/v1/movies/category/{category}?page=N.
func (h *Handler) BrowseCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := CategoryRequest{Category: chi.URLParam(r, "category"), Page: 1}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("page must be an integer")
			return
		}
		req.Page = page
	}
	if !validateRequest(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	items, err := h.recommender.BrowseCategory(ctx, catalog.Category(req.Category), req.Page)
	switch {
	case err == nil:
		if items == nil {
			items = []catalog.RawItem{}
		}
		rw.Success(CategoryResponse{Category: req.Category, Page: req.Page, Results: items, Count: len(items)})
	case errors.Is(err, recommend.ErrBrowseUnavailable):
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Category browsing is not configured")
	default:
		rw.ExternalServiceError("tmdb", err)
	}
}

// SimilarMovies handles GET /api/v1/movies/{movieID}/similar. Only movies
// in the initialized catalog can be matched.
func (h *Handler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.recommender.SimilarMovies(r.Context(), req.MovieID)
	switch {
	case err == nil:
		if items == nil {
			items = []recommend.ScoredItem{}
		}
		rw.Success(SimilarResponse{MovieID: req.MovieID, Similar: items, Count: len(items)})
	case errors.Is(err, catalog.ErrNotFound):
		rw.NotFound(ErrCodeNotFound, "Movie not found in catalog")
	case errors.Is(err, context.Canceled):
		return
	default:
		rw.InternalError(ErrCodeRecommendFailed, "Similarity lookup failed", err)
	}
}
