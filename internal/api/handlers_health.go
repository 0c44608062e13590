// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package api

import (
	"net/http"
	"time"
)

// HealthResponse is the data of GET /api/v1/health.
type HealthResponse struct {
	Status         string  `json:"status"`
	Uptime         float64 `json:"uptime_seconds"`
	ModelTrained   bool    `json:"model_trained"`
	MovieCacheSize int     `json:"movie_cache_size"`
}

// Health reports liveness. The API is healthy before a model exists since
// the first recommendation trains one.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	info := h.recommender.GetModelInfo()
	NewResponseWriter(w, r).Success(HealthResponse{
		Status:         "healthy",
		Uptime:         time.Since(h.startTime).Seconds(),
		ModelTrained:   info.Trained,
		MovieCacheSize: info.MovieCacheSize,
	})
}
