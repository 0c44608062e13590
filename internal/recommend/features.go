// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"math"
	"strconv"

	"github.com/tomtom215/reelrec/internal/catalog"
)

// Normalization divisors for the scalar features.
const (
	popularityScale = 1000.0
	ratingScale     = 10.0
	voteCountScale  = 10000.0
)

// scalarFeatures is the number of non-genre slots appended to each vector.
const scalarFeatures = 3

// FeatureBuilder maps raw catalog items to fixed-width vectors.
type FeatureBuilder struct {
	taxonomy *catalog.GenreTaxonomy
}

// NewFeatureBuilder creates a builder. A nil taxonomy uses the default genres.
func NewFeatureBuilder(taxonomy *catalog.GenreTaxonomy) *FeatureBuilder {
	if taxonomy == nil {
		taxonomy = catalog.DefaultGenreTaxonomy()
	}
	return &FeatureBuilder{taxonomy: taxonomy}
}

// Width is the length of every vector this builder produces.
func (b *FeatureBuilder) Width() int {
	return b.taxonomy.Len() + scalarFeatures
}

// Build vectorizes items in input order.
func (b *FeatureBuilder) Build(items []catalog.RawItem) []FeatureVector {
	out := make([]FeatureVector, 0, len(items))
	for i := range items {
		out = append(out, b.Vector(&items[i]))
	}
	return out
}

// Vector vectorizes a single item: one 0/1 slot per selected genre, then
// popularity, rating and vote count scaled into [0,1]. Missing or negative
// values count as zero.
func (b *FeatureBuilder) Vector(item *catalog.RawItem) FeatureVector {
	features := make([]float64, b.Width())
	for _, id := range item.GenreIDs {
		if slot, ok := b.taxonomy.Slot(id); ok {
			features[slot] = 1
		}
	}

	genres := b.taxonomy.Len()
	features[genres] = unitScale(item.Popularity, popularityScale)
	features[genres+1] = unitScale(item.VoteAverage, ratingScale)
	features[genres+2] = unitScale(item.VoteCount, voteCountScale)

	return FeatureVector{
		ID:       strconv.FormatInt(item.ID, 10),
		Title:    item.Title,
		Features: features,
		Raw:      *item,
	}
}

// unitScale divides v by scale and clamps the result to [0,1].
func unitScale(v, scale float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return math.Min(v/scale, 1)
}
