// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package recommend turns a movie catalog into ranked recommendations.
//
// # Pipeline
//
//   - Ingest: a catalog ingestor returns deduplicated raw items
//   - Vectorize: FeatureBuilder maps each item to genre indicator slots
//     followed by normalized popularity, rating and vote count
//   - Train: an autoencoder learns to reconstruct the catalog vectors
//     through a narrow hidden layer
//   - Rank: a user's watched vectors are averaged, passed through the
//     autoencoder and every unwatched item is scored by cosine similarity
//
// # State
//
// A Service owns one ModelCache holding the current vectors, the trained
// model and the last training time. Vectors and model are replaced
// wholesale, never updated in place. Training runs one at a time and
// concurrent catalog initializations share a single ingestion.
//
// A trained model is fresh for Config.StalenessWindow (24h by default).
// TrainModel with force=false on a fresh model returns a skipped result.
//
// # Usage
//
//	svc := recommend.NewService(recommend.DefaultConfig(), ingestor, users, logger)
//	if _, err := svc.TrainModel(ctx, false); err != nil {
//		return err
//	}
//	items, err := svc.RecommendMovies(ctx, "user-1")
//
// Models are held in memory only and are rebuilt after a restart.
package recommend
