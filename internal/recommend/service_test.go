// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/catalog"
	"github.com/tomtom215/reelrec/internal/logging"
	"github.com/tomtom215/reelrec/internal/userstore"
)

// testGenres cycles through selected and unselected genre IDs.
var testGenres = [][]int{{28}, {35}, {28, 12}, {18, 10749}, {27, 53}, {878, 28}, {16, 10751}, {99}}

func testCatalog(n int) []catalog.RawItem {
	items := make([]catalog.RawItem, n)
	for i := range items {
		items[i] = catalog.RawItem{
			ID:          int64(1000 + i),
			Title:       "Movie " + strconv.Itoa(i),
			GenreIDs:    testGenres[i%len(testGenres)],
			Popularity:  float64((i * 37) % 1500),
			VoteAverage: float64(i%10) + 0.5,
			VoteCount:   float64((i * 613) % 12000),
		}
	}
	return items
}

type fakeIngestor struct {
	items []catalog.RawItem
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeIngestor) Ingest(ctx context.Context) []catalog.RawItem {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return append([]catalog.RawItem(nil), f.items...)
}

type fakeUsers struct {
	profiles map[string][]string
	err      error
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*userstore.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	history, ok := f.profiles[id]
	if !ok {
		return nil, userstore.ErrUserNotFound
	}
	return &userstore.UserProfile{ID: id, WatchHistory: history}, nil
}

// blockingUsers parks the next FindByID until release is closed.
type blockingUsers struct {
	fakeUsers
	block   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (b *blockingUsers) FindByID(ctx context.Context, id string) (*userstore.UserProfile, error) {
	if b.block.CompareAndSwap(true, false) {
		close(b.entered)
		<-b.release
	}
	return b.fakeUsers.FindByID(ctx, id)
}

type fakeSource struct {
	mu       sync.Mutex
	requests []string
	items    []catalog.RawItem
	err      error
}

func (f *fakeSource) FetchPage(_ context.Context, category catalog.Category, page int) ([]catalog.RawItem, error) {
	f.mu.Lock()
	f.requests = append(f.requests, string(category)+":"+strconv.Itoa(page))
	f.mu.Unlock()
	return f.items, f.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Epochs = 5
	return cfg
}

func newTestService(t *testing.T, ing Ingestor, users UserStore, opts ...Option) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc, err := NewService(testConfig(), ing, users, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc, clock
}

func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BatchSize = 0
	if _, err := NewService(cfg, &fakeIngestor{}, &fakeUsers{}, zerolog.Nop()); err == nil {
		t.Fatal("expected config error")
	}
}

func TestInitializeMovieData(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{items: testCatalog(25)}
	svc, _ := newTestService(t, ing, &fakeUsers{})

	n, err := svc.InitializeMovieData(context.Background())
	if err != nil {
		t.Fatalf("InitializeMovieData() error: %v", err)
	}
	if n != 25 || svc.GetModelInfo().MovieCacheSize != 25 {
		t.Errorf("count = %d, cache = %d, want 25", n, svc.GetModelInfo().MovieCacheSize)
	}

	ing.items = testCatalog(5)
	n, _ = svc.InitializeMovieData(context.Background())
	if n != 5 {
		t.Errorf("re-initialize count = %d, want 5", n)
	}
	if ing.calls.Load() != 2 {
		t.Errorf("ingest calls = %d, want 2", ing.calls.Load())
	}
}

func TestTrainModelSkipsFreshModel(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{items: testCatalog(40)}
	svc, clock := newTestService(t, ing, &fakeUsers{})
	ctx := context.Background()

	first, err := svc.TrainModel(ctx, false)
	if err != nil {
		t.Fatalf("TrainModel() error: %v", err)
	}
	if first.Status != StatusTrained || first.FinalLoss == nil {
		t.Fatalf("first result = %+v, want trained with loss", first)
	}

	clock.Advance(23 * time.Hour)
	second, err := svc.TrainModel(ctx, false)
	if err != nil {
		t.Fatalf("TrainModel() error: %v", err)
	}
	if second.Status != StatusSkipped {
		t.Errorf("status = %s, want skipped", second.Status)
	}
	if !second.LastTrainedAt.Equal(first.LastTrainedAt) {
		t.Errorf("lastTrainedAt changed on skip: %v -> %v", first.LastTrainedAt, second.LastTrainedAt)
	}

	forced, err := svc.TrainModel(ctx, true)
	if err != nil {
		t.Fatalf("TrainModel(force) error: %v", err)
	}
	if forced.Status != StatusTrained || !forced.LastTrainedAt.After(first.LastTrainedAt) {
		t.Errorf("forced result = %+v, want fresh training", forced)
	}

	clock.Advance(24 * time.Hour)
	stale, err := svc.TrainModel(ctx, false)
	if err != nil {
		t.Fatalf("TrainModel() error: %v", err)
	}
	if stale.Status != StatusTrained {
		t.Errorf("status after window = %s, want trained", stale.Status)
	}

	if ing.calls.Load() != 1 {
		t.Errorf("ingest calls = %d, training should reuse cached vectors", ing.calls.Load())
	}
	if v := svc.GetModelInfo().Version; v != 3 {
		t.Errorf("Version = %d, want 3", v)
	}
}

func TestTrainModelEmptyCatalog(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeIngestor{}, &fakeUsers{})
	_, err := svc.TrainModel(context.Background(), false)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("error = %v, want ErrEmptyCatalog", err)
	}
	if svc.GetModelInfo().Trained {
		t.Error("failed training must not mark the model trained")
	}
}

func TestTrainModelConcurrentCallsTrainOnce(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{items: testCatalog(30), delay: 20 * time.Millisecond}
	svc, _ := newTestService(t, ing, &fakeUsers{})

	var wg sync.WaitGroup
	var trained, skipped atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.TrainModel(context.Background(), false)
			if err != nil {
				t.Errorf("TrainModel() error: %v", err)
				return
			}
			switch res.Status {
			case StatusTrained:
				trained.Add(1)
			case StatusSkipped:
				skipped.Add(1)
			}
		}()
	}
	wg.Wait()

	if trained.Load() != 1 || skipped.Load() != 7 {
		t.Errorf("trained = %d, skipped = %d, want 1 and 7", trained.Load(), skipped.Load())
	}
	if ing.calls.Load() != 1 {
		t.Errorf("ingest calls = %d, want 1", ing.calls.Load())
	}
}

func TestConcurrentInitializeSharesIngestion(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{items: testCatalog(10), delay: 50 * time.Millisecond}
	svc, _ := newTestService(t, ing, &fakeUsers{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n, err := svc.InitializeMovieData(context.Background()); err != nil || n != 10 {
				t.Errorf("InitializeMovieData() = %d, %v", n, err)
			}
		}()
	}
	wg.Wait()

	if ing.calls.Load() >= 5 {
		t.Errorf("ingest calls = %d, concurrent callers should share", ing.calls.Load())
	}
}

func TestTrainModelReportsProgress(t *testing.T) {
	t.Parallel()

	var epochs []int
	svc, _ := newTestService(t, &fakeIngestor{items: testCatalog(20)}, &fakeUsers{},
		WithProgressFunc(func(p TrainingProgress) { epochs = append(epochs, p.Epoch) }))

	if _, err := svc.TrainModel(context.Background(), false); err != nil {
		t.Fatalf("TrainModel() error: %v", err)
	}
	if len(epochs) != 5 || epochs[0] != 1 || epochs[4] != 5 {
		t.Errorf("progress epochs = %v, want 1..5", epochs)
	}
	if info := svc.GetModelInfo(); info.Epoch != 5 || info.Training {
		t.Errorf("info = %+v, want epoch 5 and not training", info)
	}
}

func TestRecommendMovies(t *testing.T) {
	t.Parallel()

	items := testCatalog(40)
	users := &fakeUsers{profiles: map[string][]string{
		"new":     {},
		"unknown": {"999999", "888888"},
		"fan":     {"1000", "1002", "1005"},
	}}
	svc, _ := newTestService(t, &fakeIngestor{items: items}, users)
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		got, err := svc.RecommendMovies(ctx, "ghost")
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil", got)
		}
	})

	fallbackCases := []string{"new", "unknown"}
	for _, user := range fallbackCases {
		t.Run("fallback "+user, func(t *testing.T) {
			got, err := svc.RecommendMovies(ctx, user)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if len(got) != 10 {
				t.Fatalf("len = %d, want 10", len(got))
			}
			for i, item := range got {
				if item.Item.ID != items[i].ID {
					t.Errorf("got[%d] = %d, want catalog order %d", i, item.Item.ID, items[i].ID)
				}
				if item.Score != nil {
					t.Errorf("got[%d] should be unscored", i)
				}
			}
		})
	}

	t.Run("ranked", func(t *testing.T) {
		got, err := svc.RecommendMovies(ctx, "fan")
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if len(got) != 10 {
			t.Fatalf("len = %d, want 10", len(got))
		}
		watched := map[int64]bool{1000: true, 1002: true, 1005: true}
		for i, item := range got {
			if watched[item.Item.ID] {
				t.Errorf("watched item %d returned", item.Item.ID)
			}
			if item.Score == nil {
				t.Fatalf("got[%d] missing score", i)
			}
			if *item.Score < -1 || *item.Score > 1 {
				t.Errorf("score %v outside [-1,1]", *item.Score)
			}
			if i > 0 && *item.Score > *got[i-1].Score {
				t.Errorf("scores not descending at %d", i)
			}
		}
	})

	if !svc.GetModelInfo().Trained {
		t.Error("recommendation should lazily train a model")
	}
}

func TestRecommendMoviesGenreExample(t *testing.T) {
	t.Parallel()

	items := []catalog.RawItem{
		{ID: 1, Title: "A", GenreIDs: []int{28}},
		{ID: 2, Title: "B", GenreIDs: []int{35}},
		{ID: 3, Title: "C", GenreIDs: []int{28, 35}},
	}
	users := &fakeUsers{profiles: map[string][]string{"u": {"1"}}}
	svc, _ := newTestService(t, &fakeIngestor{items: items}, users)

	got, err := svc.RecommendMovies(context.Background(), "u")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(got) > 2 {
		t.Errorf("len = %d, want at most 2", len(got))
	}
	for _, item := range got {
		if item.Item.ID == 1 {
			t.Error("watched item A returned")
		}
	}
}

func TestRecommendMoviesResponseCache(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{profiles: map[string][]string{"fan": {"1000", "1002"}}}
	svc, _ := newTestService(t, &fakeIngestor{items: testCatalog(30)}, users)
	ctx := context.Background()

	first, err := svc.RecommendMovies(ctx, "fan")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if svc.responses.Len() != 1 {
		t.Fatalf("cached responses = %d, want 1", svc.responses.Len())
	}

	second, err := svc.RecommendMovies(ctx, "fan")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	hits, _, _ := svc.responses.Stats()
	if hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
	if len(first) != len(second) || first[0].Item.ID != second[0].Item.ID {
		t.Errorf("cached result differs: %v vs %v", first[0].Item.ID, second[0].Item.ID)
	}

	// Mutating the returned slice must not leak into the cache.
	second[0] = ScoredItem{}
	third, _ := svc.RecommendMovies(ctx, "fan")
	if third[0].Item.ID != first[0].Item.ID {
		t.Error("caller mutation changed cached response")
	}

	users.profiles["fan"] = []string{"1000", "1002", strconv.FormatInt(first[0].Item.ID, 10)}
	if svc.responses.Len() != 1 {
		t.Fatalf("cached responses = %d, want 1 before history change", svc.responses.Len())
	}
	if _, err := svc.RecommendMovies(ctx, "fan"); err != nil {
		t.Fatalf("error: %v", err)
	}
	if svc.responses.Len() != 2 {
		t.Errorf("cached responses = %d, want 2 after history change", svc.responses.Len())
	}

	if _, err := svc.TrainModel(ctx, true); err != nil {
		t.Fatalf("TrainModel: %v", err)
	}
	if svc.responses.Len() != 0 {
		t.Errorf("cached responses = %d after retraining, want 0", svc.responses.Len())
	}
}

func TestRecommendMoviesDropsResultsFromReplacedModel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	history := map[string][]string{"u": {"1000", "1002", "1005"}}
	catalogB := testCatalog(30)
	for i := range catalogB {
		catalogB[i].Popularity = float64((i * 211) % 900)
		catalogB[i].VoteAverage = 9.5 - float64(i%7)
	}

	ing := &fakeIngestor{items: testCatalog(30)}
	users := &blockingUsers{
		fakeUsers: fakeUsers{profiles: history},
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc, _ := newTestService(t, ing, users)
	if _, err := svc.TrainModel(ctx, true); err != nil {
		t.Fatalf("TrainModel: %v", err)
	}

	users.block.Store(true)
	inFlight := make(chan error, 1)
	go func() {
		_, err := svc.RecommendMovies(ctx, "u")
		inFlight <- err
	}()
	<-users.entered

	// Replace catalog and model while the request holds the old snapshot.
	ing.items = catalogB
	if _, err := svc.InitializeMovieData(ctx); err != nil {
		t.Fatalf("InitializeMovieData: %v", err)
	}
	if _, err := svc.TrainModel(ctx, true); err != nil {
		t.Fatalf("TrainModel: %v", err)
	}
	close(users.release)
	if err := <-inFlight; err != nil {
		t.Fatalf("in-flight RecommendMovies: %v", err)
	}

	got, err := svc.RecommendMovies(ctx, "u")
	if err != nil {
		t.Fatalf("RecommendMovies: %v", err)
	}

	fresh, _ := newTestService(t, &fakeIngestor{items: catalogB}, &fakeUsers{profiles: history})
	want, err := fresh.RecommendMovies(ctx, "u")
	if err != nil {
		t.Fatalf("fresh RecommendMovies: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Item.ID != want[i].Item.ID || got[i].SimilarityScore() != want[i].SimilarityScore() {
			t.Fatalf("result %d = %d (%s), want %d (%s) from the current model",
				i, got[i].Item.ID, got[i].SimilarityScore(), want[i].Item.ID, want[i].SimilarityScore())
		}
	}
}

func TestServiceLogsThroughInjectedLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	svc, err := NewService(testConfig(), &fakeIngestor{items: testCatalog(20)}, &fakeUsers{}, logging.NewTestLogger(&buf))
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}

	ctx := logging.ContextWithRequestID(context.Background(), "req-7")
	if _, err := svc.TrainModel(ctx, true); err != nil {
		t.Fatalf("TrainModel: %v", err)
	}

	var trained string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Model trained") {
			trained = line
		}
	}
	if trained == "" {
		t.Fatalf("no training log line in: %s", buf.String())
	}
	for _, want := range []string{`"request_id":"req-7"`, `"component":"recommend"`} {
		if !strings.Contains(trained, want) {
			t.Errorf("expected %s in %s", want, trained)
		}
	}
}

func TestSimilarMovies(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeIngestor{items: testCatalog(30)}, &fakeUsers{})
	ctx := context.Background()

	items, err := svc.SimilarMovies(ctx, 1000)
	if err != nil {
		t.Fatalf("SimilarMovies: %v", err)
	}
	if len(items) != svc.cfg.TopK {
		t.Fatalf("len = %d, want %d", len(items), svc.cfg.TopK)
	}
	for i, item := range items {
		if item.Item.ID == 1000 {
			t.Error("source movie included in its own similar list")
		}
		if item.Score == nil {
			t.Fatalf("item %d unscored", i)
		}
		if i > 0 && *items[i-1].Score < *item.Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
	if svc.GetModelInfo().Trained {
		t.Error("SimilarMovies should not train a model")
	}

	if _, err := svc.SimilarMovies(ctx, 42); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unknown movie error = %v, want ErrNotFound", err)
	}
}

func TestBrowseCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t, &fakeIngestor{}, &fakeUsers{})
	if _, err := svc.BrowseCategory(ctx, catalog.CategoryUpcoming, 1); !errors.Is(err, ErrBrowseUnavailable) {
		t.Errorf("error = %v, want ErrBrowseUnavailable", err)
	}

	src := &fakeSource{items: testCatalog(3)}
	svc, _ = newTestService(t, &fakeIngestor{}, &fakeUsers{}, WithBrowseSource(src))
	items, err := svc.BrowseCategory(ctx, catalog.CategoryNowPlaying, 4)
	if err != nil {
		t.Fatalf("BrowseCategory: %v", err)
	}
	if len(items) != 3 || len(src.requests) != 1 || src.requests[0] != "now_playing:4" {
		t.Errorf("items = %d, requests = %v", len(items), src.requests)
	}
}

func TestRecommendMoviesStoreError(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")
	svc, _ := newTestService(t, &fakeIngestor{items: testCatalog(10)}, &fakeUsers{err: storeErr})

	_, err := svc.RecommendMovies(context.Background(), "u")
	if !errors.Is(err, storeErr) {
		t.Errorf("error = %v, want wrapped store error", err)
	}
}

func TestGetModelInfo(t *testing.T) {
	t.Parallel()

	svc, clock := newTestService(t, &fakeIngestor{items: testCatalog(12)}, &fakeUsers{})

	info := svc.GetModelInfo()
	if info.Trained || info.LastTrainingTime != nil || info.MovieCacheSize != 0 {
		t.Errorf("initial info = %+v", info)
	}

	if _, err := svc.TrainModel(context.Background(), false); err != nil {
		t.Fatalf("TrainModel() error: %v", err)
	}
	info = svc.GetModelInfo()
	if !info.Trained || info.MovieCacheSize != 12 {
		t.Errorf("info = %+v", info)
	}
	want := clock.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	if info.LastTrainingTime == nil || *info.LastTrainingTime != want {
		t.Errorf("LastTrainingTime = %v, want %s", info.LastTrainingTime, want)
	}
}

func TestScoredItemJSON(t *testing.T) {
	t.Parallel()

	score := 0.123456
	scored := ScoredItem{Item: catalog.RawItem{ID: 7, Title: "Seven"}, Score: &score}
	data, err := json.Marshal(scored)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"similarity_score":"0.1235"`) {
		t.Errorf("json = %s, want similarity_score 0.1235", data)
	}

	data, err = json.Marshal(ScoredItem{Item: catalog.RawItem{ID: 7}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "similarity_score") {
		t.Errorf("unscored json = %s should omit similarity_score", data)
	}
}

func TestMovieDetailsFromCache(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeIngestor{items: testCatalog(3)}, &fakeUsers{})
	if _, err := svc.MovieDetails(context.Background(), 1001); !errors.Is(err, ErrDetailsUnavailable) {
		t.Errorf("before init: error = %v, want ErrDetailsUnavailable", err)
	}
	if _, err := svc.InitializeMovieData(context.Background()); err != nil {
		t.Fatal(err)
	}
	item, err := svc.MovieDetails(context.Background(), 1001)
	if err != nil || item.Title != "Movie 1" {
		t.Errorf("MovieDetails() = %+v, %v", item, err)
	}
}
