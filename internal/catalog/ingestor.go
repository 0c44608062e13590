// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package catalog fetches movie records from the remote catalog and turns
// them into a deduplicated list for the recommender.
package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/metrics"
)

// Source fetches one page of a category listing.
type Source interface {
	FetchPage(ctx context.Context, category Category, page int) ([]RawItem, error)
}

// DetailSource looks up a single movie record.
type DetailSource interface {
	MovieDetails(ctx context.Context, id int64) (*RawItem, error)
}

// IngestorConfig controls which pages are fetched.
type IngestorConfig struct {
	// PagesPerCategory is the number of pages requested per category.
	// Default: 3
	PagesPerCategory int

	// Categories are requested in order for every page number.
	// Default: popular, top_rated
	Categories []Category
}

// DefaultIngestorConfig returns the reference ingestion plan.
func DefaultIngestorConfig() IngestorConfig {
	return IngestorConfig{
		PagesPerCategory: 3,
		Categories:       append([]Category(nil), DefaultCategories...),
	}
}

// Ingestor collects catalog pages into a single deduplicated list.
type Ingestor struct {
	source Source
	cfg    IngestorConfig
	logger zerolog.Logger
}

// NewIngestor creates an ingestor. Zero config values fall back to defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIngestor(source Source, cfg IngestorConfig, logger zerolog.Logger) *Ingestor {
	def := DefaultIngestorConfig()
	if cfg.PagesPerCategory < 1 {
		cfg.PagesPerCategory = def.PagesPerCategory
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = def.Categories
	}
	return &Ingestor{
		source: source,
		cfg:    cfg,
		logger: logger.With().Str("component", "ingestor").Logger(),
	}
}

// Ingest fetches pages 1..N, each page for every category in order, and
// returns the concatenation with later duplicates of an ID dropped.
//
// Ingest never fails. A page that cannot be fetched is logged and counts as
// empty; if every fetch fails the result is an empty, non-nil slice. Once ctx
// is done the remaining pages are skipped.
func (i *Ingestor) Ingest(ctx context.Context) []RawItem {
	start := time.Now()
	seen := make(map[int64]struct{})
	items := make([]RawItem, 0, i.cfg.PagesPerCategory*len(i.cfg.Categories)*20)
	duplicates, failures := 0, 0

	for page := 1; page <= i.cfg.PagesPerCategory; page++ {
		for _, category := range i.cfg.Categories {
			if ctx.Err() != nil {
				i.logger.Warn().Err(ctx.Err()).Int("page", page).Msg("Ingestion cancelled, skipping remaining pages")
				return i.finish(items, duplicates, failures, start)
			}

			fetchStart := time.Now()
			batch, err := i.source.FetchPage(ctx, category, page)
			metrics.RecordCatalogFetch(string(category), time.Since(fetchStart), err)
			if err != nil {
				failures++
				i.logger.Warn().Err(err).Str("category", string(category)).Int("page", page).
					Msg("Catalog page fetch failed, continuing with empty page")
				continue
			}

			for idx := range batch {
				if _, dup := seen[batch[idx].ID]; dup {
					duplicates++
					continue
				}
				seen[batch[idx].ID] = struct{}{}
				items = append(items, batch[idx])
			}
		}
	}

	return i.finish(items, duplicates, failures, start)
}

func (i *Ingestor) finish(items []RawItem, duplicates, failures int, start time.Time) []RawItem {
	metrics.RecordIngestion(len(items), duplicates)
	i.logger.Info().
		Int("items", len(items)).
		Int("duplicates", duplicates).
		Int("failed_pages", failures).
		Dur("duration", time.Since(start)).
		Msg("Catalog ingestion complete")
	return items
}
