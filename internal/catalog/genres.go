// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package catalog

import "fmt"

// tmdbGenres is the movie genre list published by TMDB.
var tmdbGenres = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// selectedGenres are the genres that get a slot in the feature vector, in slot order.
var selectedGenres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Drama",
	"Fantasy",
	"Horror",
	"Romance",
	"Science Fiction",
	"Thriller",
}

// GenreTaxonomy maps catalog genre IDs to names and names to feature slots.
// It is immutable after construction.
type GenreTaxonomy struct {
	names    map[int]string
	selected []string
	slots    map[int]int
}

// NewGenreTaxonomy builds a taxonomy. Every selected name must appear in
// names exactly once.
func NewGenreTaxonomy(names map[int]string, selected []string) (*GenreTaxonomy, error) {
	byName := make(map[string]int, len(names))
	for id, name := range names {
		if prev, dup := byName[name]; dup {
			return nil, fmt.Errorf("genre %q mapped by ids %d and %d", name, prev, id)
		}
		byName[name] = id
	}

	t := &GenreTaxonomy{
		names:    make(map[int]string, len(names)),
		selected: make([]string, len(selected)),
		slots:    make(map[int]int, len(selected)),
	}
	for id, name := range names {
		t.names[id] = name
	}
	copy(t.selected, selected)

	for slot, name := range selected {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("selected genre %q has no id", name)
		}
		if _, dup := t.slots[id]; dup {
			return nil, fmt.Errorf("selected genre %q listed twice", name)
		}
		t.slots[id] = slot
	}
	return t, nil
}

// DefaultGenreTaxonomy returns the TMDB genre list with the eleven genres
// used for feature vectors.
func DefaultGenreTaxonomy() *GenreTaxonomy {
	t, err := NewGenreTaxonomy(tmdbGenres, selectedGenres)
	if err != nil {
		panic(err) // static tables
	}
	return t
}

// Name returns the genre name for id.
func (t *GenreTaxonomy) Name(id int) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// Slot returns the feature slot for a genre id, if that genre is selected.
func (t *GenreTaxonomy) Slot(id int) (int, bool) {
	slot, ok := t.slots[id]
	return slot, ok
}

// Selected returns the selected genre names in slot order.
func (t *GenreTaxonomy) Selected() []string {
	out := make([]string, len(t.selected))
	copy(out, t.selected)
	return out
}

// Len returns the number of selected genres.
func (t *GenreTaxonomy) Len() int {
	return len(t.selected)
}
