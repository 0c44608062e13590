// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package userstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/metrics"
)

// MemoryStore keeps profiles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*UserProfile
	logger   zerolog.Logger
}

// NewMemoryStore creates an empty in-memory store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMemoryStore(logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*UserProfile),
		logger:   logger.With().Str("component", "userstore").Str("backend", "memory").Logger(),
	}
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		metrics.RecordUserLookup("memory", "miss")
		return nil, ErrUserNotFound
	}
	metrics.RecordUserLookup("memory", "hit")
	return cloneProfile(p), nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, profile *UserProfile) error {
	p, err := normalizeProfile(profile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles[p.ID] = p
	s.mu.Unlock()
	return nil
}

// AddWatched implements Store.
func (s *MemoryStore) AddWatched(_ context.Context, userID, itemID string) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	p.WatchHistory, _ = appendWatched(p.WatchHistory, itemID)
	return cloneProfile(p), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// LoadSeedFile replaces the store contents with the JSON array of profiles in path.
func (s *MemoryStore) LoadSeedFile(path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var seed []UserProfile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	profiles := make(map[string]*UserProfile, len(seed))
	for i := range seed {
		p, err := normalizeProfile(&seed[i])
		if err != nil {
			return 0, fmt.Errorf("seed entry %d: %w", i, err)
		}
		profiles[p.ID] = p
	}

	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()
	return len(profiles), nil
}

// Watch reloads the seed file whenever it is written or recreated, until ctx
// is done. A failed reload keeps the previous contents.
func (s *MemoryStore) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files atomically, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			n, err := s.LoadSeedFile(path)
			if err != nil {
				s.logger.Warn().Err(err).Str("path", path).Msg("Seed file reload failed, keeping previous profiles")
				continue
			}
			s.logger.Info().Int("profiles", n).Str("path", path).Msg("Seed file reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("Seed file watcher error")
		}
	}
}
