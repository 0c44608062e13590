// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package userstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/config"
)

func writeSeed(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
}

func TestOpenMemoryWithSeedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")
	writeSeed(t, path, `[{"id":"alice","watchedHistory":["550","13"]},{"id":"bob","watchedHistory":[]}]`)

	store, err := Open(context.Background(), &config.StoreConfig{Backend: "memory", SeedFile: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	got, err := store.FindByID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if len(got.WatchHistory) != 2 {
		t.Errorf("history = %v", got.WatchHistory)
	}
}

func TestLoadSeedFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewMemoryStore(zerolog.Nop())

	if _, err := store.LoadSeedFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	writeSeed(t, bad, `{"not":"an array"}`)
	if _, err := store.LoadSeedFile(bad); err == nil {
		t.Error("expected error for non-array seed")
	}

	noID := filepath.Join(dir, "noid.json")
	writeSeed(t, noID, `[{"watchedHistory":["1"]}]`)
	if _, err := store.LoadSeedFile(noID); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("error = %v, want ErrInvalidProfile", err)
	}
}

func TestFindByIDReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(zerolog.Nop())
	_ = store.Save(ctx, &UserProfile{ID: "u", WatchHistory: []string{"1"}})

	got, _ := store.FindByID(ctx, "u")
	got.WatchHistory[0] = "mutated"

	again, _ := store.FindByID(ctx, "u")
	if again.WatchHistory[0] != "1" {
		t.Error("FindByID must return a copy")
	}
}

func TestWatchReloadsSeedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")
	writeSeed(t, path, `[{"id":"alice","watchedHistory":["1"]}]`)

	store := NewMemoryStore(zerolog.Nop())
	if _, err := store.LoadSeedFile(path); err != nil {
		t.Fatalf("LoadSeedFile() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, path) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeSeed(t, path, `[{"id":"carol","watchedHistory":["2"]}]`)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := store.FindByID(context.Background(), "carol"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("seed file change was not picked up")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch() returned %v, want context.Canceled", err)
	}
}
