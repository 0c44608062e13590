// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// GenerateRequestID returns a random UUID for requests that arrive without one.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID tags ctx with the request ID set by the middleware.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID derives a child of logger carrying the request ID from ctx.
// Components use it with their injected logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithRequestID(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return logger.With().Str("request_id", id).Logger()
	}
	return logger
}

// Ctx is WithRequestID applied to the global logger.
//
//	logging.Ctx(ctx).Info().Msg("Processing request")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := WithRequestID(ctx, Logger())
	return &logger
}
