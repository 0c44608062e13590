// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package testinfra starts throwaway Redis and Postgres containers for
// integration tests of the shared user store backends.
//
// Files are built only with the integration tag:
//
//	go test -tags integration ./internal/userstore/...
//
// Example:
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//
//	    store, err := userstore.NewRedisStore(ctx, userstore.RedisOptions{Addr: redis.Addr})
//	    ...
//	}
package testinfra
