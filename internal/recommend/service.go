// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/reelrec/internal/cache"
	"github.com/tomtom215/reelrec/internal/catalog"
	"github.com/tomtom215/reelrec/internal/logging"
	"github.com/tomtom215/reelrec/internal/metrics"
	"github.com/tomtom215/reelrec/internal/userstore"
)

// Recommendation result paths, used for metrics and logs.
const (
	pathUnknownUser = "unknown_user"
	pathFallback    = "fallback"
	pathRanked      = "ranked"
	pathCached      = "cached"
)

var (
	// ErrDetailsUnavailable is returned by MovieDetails when no detail source
	// is configured and the item is not cached.
	ErrDetailsUnavailable = errors.New("movie details unavailable")

	// ErrBrowseUnavailable is returned by BrowseCategory without a browse source.
	ErrBrowseUnavailable = errors.New("category browsing unavailable")
)

// Service owns the model cache and exposes the recommendation operations.
// It is safe for concurrent use.
type Service struct {
	cfg      Config
	builder  *FeatureBuilder
	cache    *ModelCache
	ingestor Ingestor
	users    UserStore
	details  catalog.DetailSource
	browse   catalog.Source
	logger   zerolog.Logger
	now      func() time.Time
	progress ProgressFunc

	// responses caches results per user and history. Cleared whenever the
	// vectors or the model change. Nil when disabled.
	responses *cache.LRU[[]ScoredItem]

	// trainSem serializes training runs.
	trainSem  chan struct{}
	initGroup singleflight.Group

	training atomic.Bool
	epoch    atomic.Int32
}

// Option customizes a Service.
type Option func(*Service)

// WithDetailSource enables MovieDetails lookups against the remote catalog.
func WithDetailSource(src catalog.DetailSource) Option {
	return func(s *Service) { s.details = src }
}

// WithBrowseSource enables BrowseCategory against the remote catalog.
func WithBrowseSource(src catalog.Source) Option {
	return func(s *Service) { s.browse = src }
}

// WithProgressFunc receives every epoch's progress.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(s *Service) { s.progress = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTaxonomy replaces the default genre taxonomy.
func WithTaxonomy(t *catalog.GenreTaxonomy) Option {
	return func(s *Service) { s.builder = NewFeatureBuilder(t) }
}

// NewService creates a service with an empty model cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg Config, ingestor Ingestor, users UserStore, logger zerolog.Logger, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Service{
		cfg:      cfg,
		builder:  NewFeatureBuilder(nil),
		cache:    NewModelCache(cfg.StalenessWindow),
		ingestor: ingestor,
		users:    users,
		logger:   logger.With().Str("component", "recommend").Logger(),
		now:      time.Now,
		trainSem: make(chan struct{}, 1),
	}
	if cfg.CacheSize > 0 {
		s.responses = cache.NewLRU[[]ScoredItem](cfg.CacheSize, cfg.CacheTTL)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// InitializeMovieData re-ingests the full catalog, rebuilds every feature
// vector and returns the new cache size. Concurrent callers share one
// ingestion.
func (s *Service) InitializeMovieData(ctx context.Context) (int, error) {
	ch := s.initGroup.DoChan("catalog", func() (any, error) {
		// The shared ingestion must outlive any single caller.
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TrainingTimeout)
		defer cancel()

		start := time.Now()
		items := s.ingestor.Ingest(ictx)
		vectors := s.builder.Build(items)
		s.cache.ReplaceVectors(vectors)
		s.invalidateResponses()

		ev := s.logger.Info()
		if len(vectors) == 0 {
			ev = s.logger.Warn()
		}
		ev.Int("items", len(vectors)).
			Int("width", s.builder.Width()).
			Dur("duration", time.Since(start)).
			Msg("Catalog initialized")
		return len(vectors), nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

// ensureVectors initializes the catalog when the cache is empty.
func (s *Service) ensureVectors(ctx context.Context) ([]FeatureVector, error) {
	if vectors := s.cache.Vectors(); len(vectors) > 0 {
		return vectors, nil
	}
	if _, err := s.InitializeMovieData(ctx); err != nil {
		return nil, err
	}
	return s.cache.Vectors(), nil
}

// TrainModel fits a new autoencoder on the cached catalog. Without force, a
// fresh model is kept and a skipped result is returned.
func (s *Service) TrainModel(ctx context.Context, force bool) (*TrainResult, error) {
	select {
	case s.trainSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.trainSem }()

	log := logging.WithRequestID(ctx, s.logger)

	now := s.now()
	if !force && !s.cache.IsStale(now) {
		_, last := s.cache.Model()
		metrics.RecordTrainingSkipped()
		log.Info().Time("last_trained_at", last).Msg("Model is fresh, skipping training")
		return &TrainResult{Status: StatusSkipped, LastTrainedAt: last}, nil
	}

	tctx, cancel := context.WithTimeout(ctx, s.cfg.TrainingTimeout)
	defer cancel()

	start := time.Now()
	s.training.Store(true)
	s.epoch.Store(0)
	metrics.TrainingInProgress.Set(1)
	defer func() {
		s.training.Store(false)
		metrics.TrainingInProgress.Set(0)
	}()

	stats, model, err := s.fit(tctx, &log)
	finished := s.now()
	metrics.RecordTrainingRun(time.Since(start), finished, err)
	if err != nil {
		log.Error().Err(err).Msg("Model training failed")
		return nil, fmt.Errorf("train model: %w", err)
	}

	s.cache.RecordTraining(model, finished)
	s.invalidateResponses()
	metrics.TrainingLoss.Set(stats.FinalLoss)

	log.Info().
		Int("samples", stats.Samples).
		Int("epochs", stats.Epochs).
		Float64("loss", stats.FinalLoss).
		Dur("duration", time.Since(start)).
		Msg("Model trained")

	loss := stats.FinalLoss
	return &TrainResult{
		Status:        StatusTrained,
		LastTrainedAt: finished,
		FinalLoss:     &loss,
		ValLoss:       stats.ValLoss,
		Epochs:        stats.Epochs,
		Samples:       stats.Samples,
	}, nil
}

// fit builds and trains a new model on the cached vectors.
func (s *Service) fit(ctx context.Context, log *zerolog.Logger) (TrainStats, *Autoencoder, error) {
	vectors, err := s.ensureVectors(ctx)
	if err != nil {
		return TrainStats{}, nil, err
	}
	if len(vectors) == 0 {
		return TrainStats{}, nil, ErrEmptyCatalog
	}

	samples := make([][]float64, len(vectors))
	for i := range vectors {
		samples[i] = vectors[i].Features
	}

	rng := rand.New(rand.NewSource(s.cfg.Seed)) //nolint:gosec // reproducible initialization
	model := NewAutoencoder(s.builder.Width(), s.cfg.Hidden1, s.cfg.Hidden2, s.cfg.L2, rng)

	stats, err := model.Fit(ctx, samples, TrainOptions{
		Epochs:          s.cfg.Epochs,
		BatchSize:       s.cfg.BatchSize,
		LearningRate:    s.cfg.LearningRate,
		ValidationSplit: s.cfg.ValidationSplit,
		Rng:             rng,
		OnEpoch: func(p TrainingProgress) {
			s.epoch.Store(int32(p.Epoch)) //nolint:gosec // epochs are bounded by config
			metrics.TrainingLoss.Set(p.Loss)
			if p.Epoch%s.cfg.ProgressEvery == 0 {
				ev := log.Debug().Int("epoch", p.Epoch).Int("epochs", p.Epochs).Float64("loss", p.Loss)
				if p.ValLoss != nil {
					ev = ev.Float64("val_loss", *p.ValLoss)
				}
				ev.Msg("Training progress")
			}
			if s.progress != nil {
				s.progress(p)
			}
		},
	})
	if err != nil {
		return stats, nil, err
	}
	return stats, model, nil
}

// RecommendMovies ranks unwatched catalog items for a user. A model is
// trained first if none exists. Unknown users get an empty list. Users with
// no usable history get the first TopK catalog items unscored.
func (s *Service) RecommendMovies(ctx context.Context, userID string) ([]ScoredItem, error) {
	start := time.Now()
	log := logging.WithRequestID(ctx, s.logger).With().Str("user_id", userID).Logger()

	// Everything below ranks against this one snapshot. Its generation keys
	// the response cache, so results from a replaced model are never served.
	snap := s.cache.Snapshot()
	if snap.Model == nil {
		if _, err := s.TrainModel(ctx, false); err != nil {
			return nil, err
		}
		snap = s.cache.Snapshot()
	}

	profile, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, userstore.ErrUserNotFound) {
		log.Warn().Msg("Recommendation requested for unknown user")
		metrics.RecordRecommendation(pathUnknownUser, time.Since(start))
		return []ScoredItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", userID, err)
	}

	key := responseKey(snap.Generation, profile)
	if cached, ok := s.cachedResponse(key); ok {
		metrics.RecordRecommendation(pathCached, time.Since(start))
		return cached, nil
	}

	vectors := snap.Vectors
	watched := make(map[string]struct{}, len(profile.WatchHistory))
	var watchedVectors [][]float64
	for _, id := range profile.WatchHistory {
		if _, dup := watched[id]; dup {
			continue
		}
		watched[id] = struct{}{}
		if v, ok := snap.Lookup(id); ok {
			watchedVectors = append(watchedVectors, v.Features)
		}
	}

	if len(watchedVectors) == 0 {
		out := s.fallback(vectors)
		log.Debug().Int("watched", len(watched)).Int("results", len(out)).Msg("No usable watch history, returning catalog order")
		metrics.RecordRecommendation(pathFallback, time.Since(start))
		s.storeResponse(key, out)
		return out, nil
	}

	predicted, err := snap.Model.Predict(meanVector(watchedVectors))
	if err != nil {
		return nil, err
	}

	out := s.rank(vectors, predicted, watched)
	log.Debug().Int("watched", len(watchedVectors)).Int("results", len(out)).Msg("Recommendations ranked")
	metrics.RecordRecommendation(pathRanked, time.Since(start))
	s.storeResponse(key, out)
	return out, nil
}

// rank scores every vector not in exclude against target and returns the
// TopK best. Ties keep catalog order.
func (s *Service) rank(vectors []FeatureVector, target []float64, exclude map[string]struct{}) []ScoredItem {
	type candidate struct {
		pos   int
		score float64
	}
	candidates := make([]candidate, 0, len(vectors))
	for i := range vectors {
		if _, skip := exclude[vectors[i].ID]; skip {
			continue
		}
		candidates = append(candidates, candidate{pos: i, score: CosineSimilarity(vectors[i].Features, target)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	n := min(len(candidates), s.cfg.TopK)
	out := make([]ScoredItem, n)
	for i := 0; i < n; i++ {
		score := candidates[i].score
		out[i] = ScoredItem{Item: vectors[candidates[i].pos].Raw, Score: &score}
	}
	return out
}

// responseKey identifies a result by cache generation, user and watch
// history. A retrain, a re-initialization or a history change misses.
func responseKey(generation uint64, p *userstore.UserProfile) string {
	return strconv.FormatUint(generation, 10) + "\x00" + p.ID + "\x00" + strings.Join(p.WatchHistory, ",")
}

func (s *Service) cachedResponse(key string) ([]ScoredItem, bool) {
	if s.responses == nil {
		return nil, false
	}
	items, ok := s.responses.Get(key)
	if !ok {
		return nil, false
	}
	return append([]ScoredItem(nil), items...), true
}

func (s *Service) storeResponse(key string, items []ScoredItem) {
	if s.responses != nil {
		s.responses.Add(key, append([]ScoredItem(nil), items...))
	}
}

func (s *Service) invalidateResponses() {
	if s.responses != nil {
		s.responses.Clear()
	}
}

func (s *Service) fallback(vectors []FeatureVector) []ScoredItem {
	n := min(len(vectors), s.cfg.TopK)
	out := make([]ScoredItem, n)
	for i := 0; i < n; i++ {
		out[i] = ScoredItem{Item: vectors[i].Raw}
	}
	return out
}

// GetModelInfo reports the cache and training state.
func (s *Service) GetModelInfo() ModelInfo {
	model, last := s.cache.Model()
	info := ModelInfo{
		Trained:        model != nil,
		MovieCacheSize: s.cache.Len(),
		Training:       s.training.Load(),
		Epoch:          int(s.epoch.Load()),
		Version:        s.cache.Version(),
	}
	if model != nil {
		ts := isoTimestamp(last)
		info.LastTrainingTime = &ts
	}
	return info
}

// MovieDetails returns a single movie, from the remote catalog when a detail
// source is configured, otherwise from the cache.
func (s *Service) MovieDetails(ctx context.Context, id int64) (*catalog.RawItem, error) {
	if s.details != nil {
		return s.details.MovieDetails(ctx, id)
	}
	if v, ok := s.cache.Lookup(strconv.FormatInt(id, 10)); ok {
		item := v.Raw
		return &item, nil
	}
	return nil, ErrDetailsUnavailable
}

// SimilarMovies ranks catalog items by feature similarity to one cached
// movie, excluding the movie itself. No model is needed.
func (s *Service) SimilarMovies(ctx context.Context, id int64) ([]ScoredItem, error) {
	if _, err := s.ensureVectors(ctx); err != nil {
		return nil, err
	}
	snap := s.cache.Snapshot()
	key := strconv.FormatInt(id, 10)
	target, ok := snap.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("movie %d: %w", id, catalog.ErrNotFound)
	}
	return s.rank(snap.Vectors, target.Features, map[string]struct{}{key: {}}), nil
}

// BrowseCategory returns one page of a remote catalog listing.
func (s *Service) BrowseCategory(ctx context.Context, category catalog.Category, page int) ([]catalog.RawItem, error) {
	if s.browse == nil {
		return nil, ErrBrowseUnavailable
	}
	return s.browse.FetchPage(ctx, category, page)
}
