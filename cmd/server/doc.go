// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

/*
Package main is the entry point for the Reelrec server.

Reelrec fetches a movie catalog from TMDB, trains a small autoencoder over
genre and popularity features, and serves content-based recommendations
for users from their watch history.

# Application Architecture

The server runs under Suture v4 supervision:

	RootSupervisor ("reelrec")
	├── DataSupervisor ("data-layer")
	│   └── Seed file watcher (memory store with USER_STORE_SEED_FILE)
	├── ModelSupervisor ("model-layer")
	│   └── Retrain service (RETRAIN_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output modes
 3. Catalog: TMDB client behind a circuit breaker
 4. User store: memory, badger, redis or postgres
 5. Recommendation service
 6. Supervisor tree and HTTP server

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for SHUTDOWN_TIMEOUT and the user store is
closed after the tree stops.

# Example Usage

	export TMDB_API_KEY=your-api-key
	export USER_STORE_SEED_FILE=./users.json
	./reelrec
*/
package main
