// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package catalog

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Category names a remote catalog listing.
type Category string

const (
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "top_rated"
	CategoryNowPlaying Category = "now_playing"
	CategoryUpcoming   Category = "upcoming"
	CategoryTrending   Category = "trending"
)

// path is the remote listing endpoint for the category.
func (c Category) path() string {
	if c == CategoryTrending {
		return "/trending/movie/day"
	}
	return "/movie/" + string(c)
}

// DefaultCategories is the ingestion order used when none is configured.
var DefaultCategories = []Category{CategoryPopular, CategoryTopRated}

var (
	// ErrMissingID is returned when a catalog record has no id member.
	ErrMissingID = errors.New("catalog item has no id")

	// ErrRateLimited is returned when the remote catalog keeps answering 429.
	ErrRateLimited = errors.New("catalog rate limit exceeded")

	// ErrNotFound is returned when the remote catalog has no such resource.
	ErrNotFound = errors.New("catalog resource not found")

	// ErrUnexpectedStatus wraps non-200 responses from the remote catalog.
	ErrUnexpectedStatus = errors.New("unexpected catalog response status")
)

// Known JSON members of a catalog record.
const (
	fieldID          = "id"
	fieldTitle       = "title"
	fieldGenreIDs    = "genre_ids"
	fieldGenres      = "genres"
	fieldPopularity  = "popularity"
	fieldVoteAverage = "vote_average"
	fieldVoteCount   = "vote_count"
)

// RawItem is one movie record as returned by the remote catalog.
//
// Only ID is required. Every member the recommender does not read is kept in
// Extra and written back out unchanged, so API responses carry the full
// record (overview, poster_path, release_date, ...).
type RawItem struct {
	ID          int64
	Title       string
	GenreIDs    []int
	Popularity  float64
	VoteAverage float64
	VoteCount   float64

	Extra map[string]json.RawMessage
}

type genreRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON decodes a catalog record, keeping unknown members in Extra.
func (r *RawItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	rawID, ok := fields[fieldID]
	if !ok || string(rawID) == "null" {
		return ErrMissingID
	}

	item := RawItem{}
	if err := json.Unmarshal(rawID, &item.ID); err != nil {
		return fmt.Errorf("decode %s: %w", fieldID, err)
	}

	decoders := []struct {
		key  string
		dest any
	}{
		{fieldTitle, &item.Title},
		{fieldGenreIDs, &item.GenreIDs},
		{fieldPopularity, &item.Popularity},
		{fieldVoteAverage, &item.VoteAverage},
		{fieldVoteCount, &item.VoteCount},
	}
	for _, d := range decoders {
		raw, ok := fields[d.key]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, d.dest); err != nil {
			return fmt.Errorf("decode %s: %w", d.key, err)
		}
	}

	// Detail responses carry genres as objects instead of genre_ids.
	if _, hasIDs := fields[fieldGenreIDs]; !hasIDs {
		if raw, ok := fields[fieldGenres]; ok {
			var genres []genreRef
			if err := json.Unmarshal(raw, &genres); err == nil {
				for _, g := range genres {
					item.GenreIDs = append(item.GenreIDs, g.ID)
				}
			}
		}
	}

	for _, key := range []string{fieldID, fieldTitle, fieldGenreIDs, fieldPopularity, fieldVoteAverage, fieldVoteCount} {
		delete(fields, key)
	}
	if len(fields) > 0 {
		item.Extra = fields
	}

	*r = item
	return nil
}

// Fields returns the record as a JSON object map, known members included.
func (r RawItem) Fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+6)
	for k, v := range r.Extra {
		out[k] = v
	}

	genreIDs := r.GenreIDs
	if genreIDs == nil {
		genreIDs = []int{}
	}

	known := []struct {
		key   string
		value any
	}{
		{fieldID, r.ID},
		{fieldTitle, r.Title},
		{fieldGenreIDs, genreIDs},
		{fieldPopularity, r.Popularity},
		{fieldVoteAverage, r.VoteAverage},
		{fieldVoteCount, r.VoteCount},
	}
	for _, kv := range known {
		raw, err := json.Marshal(kv.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kv.key, err)
		}
		out[kv.key] = raw
	}
	return out, nil
}

// MarshalJSON emits the known members merged with the passthrough members.
//
//nolint:gocritic // value receiver so both RawItem and *RawItem marshal
func (r RawItem) MarshalJSON() ([]byte, error) {
	fields, err := r.Fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}
