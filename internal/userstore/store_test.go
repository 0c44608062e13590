// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package userstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/config"
)

// runStoreContract exercises behaviour every backend must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.FindByID(ctx, "missing-"+uuid.NewString())
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("save dedups history", func(t *testing.T) {
		err := store.Save(ctx, &UserProfile{ID: userID, WatchHistory: []string{"550", "13", "550", ""}})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		got, err := store.FindByID(ctx, userID)
		if err != nil {
			t.Fatalf("FindByID() error: %v", err)
		}
		if fmt.Sprint(got.WatchHistory) != "[550 13]" {
			t.Errorf("history = %v, want [550 13]", got.WatchHistory)
		}
	})

	t.Run("add watched is idempotent", func(t *testing.T) {
		if _, err := store.AddWatched(ctx, userID, "680"); err != nil {
			t.Fatalf("AddWatched() error: %v", err)
		}
		got, err := store.AddWatched(ctx, userID, "680")
		if err != nil {
			t.Fatalf("AddWatched() error: %v", err)
		}
		if fmt.Sprint(got.WatchHistory) != "[550 13 680]" {
			t.Errorf("history = %v, want [550 13 680]", got.WatchHistory)
		}
	})

	t.Run("add watched unknown user", func(t *testing.T) {
		_, err := store.AddWatched(ctx, "missing-"+uuid.NewString(), "1")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("save rejects empty id", func(t *testing.T) {
		if err := store.Save(ctx, &UserProfile{}); !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("error = %v, want ErrInvalidProfile", err)
		}
	})
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore(zerolog.Nop()))
}

func TestBadgerStoreContract(t *testing.T) {
	store, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore() error: %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error: %v", err)
	}
	if err := store.Save(ctx, &UserProfile{ID: "u1", WatchHistory: []string{"1"}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.FindByID(ctx, "u1")
	if err != nil || len(got.WatchHistory) != 1 {
		t.Errorf("FindByID() = %+v, %v", got, err)
	}
}

func TestRedisStoreContract(t *testing.T) {
	addr := os.Getenv("REELREC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REELREC_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr, KeyPrefix: "reelrec-test:"})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("REELREC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("REELREC_TEST_POSTGRES_DSN not set")
	}
	store, err := OpenPostgresStore(dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

func TestOpenUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), &config.StoreConfig{Backend: "mongo"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
