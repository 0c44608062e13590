// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package middleware provides chi-compatible HTTP middleware shared by the
// API router: request ID propagation into the logging context and
// Prometheus request instrumentation.
package middleware
