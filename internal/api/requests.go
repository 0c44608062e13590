// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package api

import (
	"bytes"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelrec/internal/validation"
)

// maxRequestBodySize bounds JSON request bodies.
const maxRequestBodySize = 64 << 10

// UserPath identifies a user in the URL.
type UserPath struct {
	UserID string `validate:"required,userid"`
}

// MoviePath identifies a catalog movie in the URL.
type MoviePath struct {
	MovieID int64 `validate:"required,min=1"`
}

// CategoryRequest selects one page of a remote catalog listing.
type CategoryRequest struct {
	Category string `validate:"required,oneof=popular top_rated now_playing upcoming trending"`
	Page     int    `validate:"min=1,max=500"`
}

// WatchHistoryRequest is the body of POST /users/{userID}/watch-history.
type WatchHistoryRequest struct {
	MovieID MovieRef `json:"movieId" validate:"required,movieid"`
}

// MovieRef is a movie ID sent either as a JSON string or a JSON number.
type MovieRef string

// UnmarshalJSON accepts "550" and 550 alike.
func (m *MovieRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MovieRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = MovieRef(n.String())
	return nil
}

// validateRequest writes a validation error response and returns false when
// v is invalid.
func validateRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
	return false
}
