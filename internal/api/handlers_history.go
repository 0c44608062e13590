// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reelrec/internal/userstore"
)

// WatchHistoryResponse is the data of the watch-history routes.
type WatchHistoryResponse struct {
	UserID         string   `json:"userId"`
	WatchedHistory []string `json:"watchedHistory"`
}

// GetWatchHistory handles GET /api/v1/users/{userID}/watch-history.
func (h *Handler) GetWatchHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := UserPath{UserID: chi.URLParam(r, "userID")}
	if !validateRequest(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	profile, err := h.users.FindByID(ctx, req.UserID)
	if errors.Is(err, userstore.ErrUserNotFound) {
		rw.NotFound(ErrCodeUserNotFound, "User not found")
		return
	}
	if err != nil {
		rw.InternalError(ErrCodeStoreError, "Failed to fetch watch history", err)
		return
	}
	rw.Success(historyResponse(profile))
}

// AddWatchHistory handles POST /api/v1/users/{userID}/watch-history.
// Adding a movie that is already in the history is a no-op.
func (h *Handler) AddWatchHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user := UserPath{UserID: chi.URLParam(r, "userID")}
	if !validateRequest(w, r, &user) {
		return
	}

	var body WatchHistoryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&body); err != nil {
		rw.BadRequest("Request body must be JSON with a movieId")
		return
	}
	if body.MovieID == "" {
		rw.BadRequest("MovieId is required")
		return
	}
	if !validateRequest(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	profile, err := h.users.AddWatched(ctx, user.UserID, string(body.MovieID))
	if errors.Is(err, userstore.ErrUserNotFound) {
		rw.NotFound(ErrCodeUserNotFound, "User not found")
		return
	}
	if err != nil {
		rw.InternalError(ErrCodeStoreError, "Failed to update watch history", err)
		return
	}
	rw.Success(historyResponse(profile))
}

func historyResponse(p *userstore.UserProfile) WatchHistoryResponse {
	history := p.WatchHistory
	if history == nil {
		history = []string{}
	}
	return WatchHistoryResponse{UserID: p.ID, WatchedHistory: history}
}
