// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package userstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/config"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Open creates the configured store. The memory backend loads the seed file
// when one is configured; watching it for changes is left to the caller.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg *config.StoreConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		store := NewMemoryStore(logger)
		if cfg.SeedFile != "" {
			n, err := store.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				return nil, err
			}
			logger.Info().Int("profiles", n).Str("path", cfg.SeedFile).Msg("Loaded user seed file")
		}
		return store, nil
	case BackendBadger:
		return OpenBadgerStore(cfg.BadgerPath)
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
	case BackendPostgres:
		return OpenPostgresStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown user store backend %q", cfg.Backend)
	}
}
