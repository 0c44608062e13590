// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package services

import (
	"context"
	"fmt"
)

// SeedWatcher reloads a seed file until ctx is done.
// Satisfied by *userstore.MemoryStore.
type SeedWatcher interface {
	Watch(ctx context.Context, path string) error
}

// SeedWatchService supervises a seed file watcher. A watcher that exits
// with anything other than cancellation is restarted.
type SeedWatchService struct {
	watcher SeedWatcher
	path    string
}

// NewSeedWatchService watches path through watcher.
func NewSeedWatchService(watcher SeedWatcher, path string) *SeedWatchService {
	return &SeedWatchService{watcher: watcher, path: path}
}

// Serve implements suture.Service.
func (s *SeedWatchService) Serve(ctx context.Context) error {
	err := s.watcher.Watch(ctx, s.path)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return fmt.Errorf("seed watcher for %s stopped unexpectedly", s.path)
	}
	return err
}

// String names the service in supervisor logs.
func (s *SeedWatchService) String() string {
	return "seed-watch"
}
