// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package api exposes the recommendation service over HTTP using chi.
//
// Routes:
//
//	POST /api/v1/recommends/train?force=true   train or skip a fresh model
//	POST /api/v1/recommends/initialize         re-ingest the catalog
//	GET  /api/v1/recommends/status             model info
//	GET  /api/v1/recommends/recommend/{userID} ranked recommendations
//	GET  /api/v1/movies/category/{category}    one page of a remote listing
//	GET  /api/v1/movies/{movieID}              single movie details
//	GET  /api/v1/movies/{movieID}/similar      feature-similar catalog movies
//	GET  /api/v1/users/{userID}/watch-history  a user's watch history
//	POST /api/v1/users/{userID}/watch-history  append {"movieId": "..."}
//	GET  /api/v1/health                        liveness and model summary
//	GET  /metrics                              Prometheus exposition
//
// Every JSON response uses the APIResponse envelope.
package api
