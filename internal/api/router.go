// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelrec/internal/middleware"
)

// NewRouter wires every route and the global middleware stack.
func NewRouter(h *Handler, mw *Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SecurityHeaders)
		r.Use(middleware.PrometheusMetrics)

		r.With(mw.RateLimitCustom("health", RateLimitHealth)).Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			r.Route("/recommends", func(r chi.Router) {
				r.With(mw.RateLimitCustom("training", RateLimitTraining)).Post("/train", h.Train)
				r.With(mw.RateLimitCustom("training", RateLimitTraining)).Post("/initialize", h.Initialize)
				r.Get("/status", h.Status)
				r.Get("/recommend/{userID}", h.Recommend)
			})

			r.Get("/movies/category/{category}", h.BrowseCategory)
			r.Get("/movies/{movieID}", h.MovieDetails)
			r.Get("/movies/{movieID}/similar", h.SimilarMovies)

			r.Get("/users/{userID}/watch-history", h.GetWatchHistory)
			r.Post("/users/{userID}/watch-history", h.AddWatchHistory)
		})
	})

	return r
}
