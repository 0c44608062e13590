// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package services adapts Reelrec components to suture.Service.
//
// Each wrapper's Serve blocks until its context is canceled and returns
// ctx.Err() on a clean stop. Any other return is treated by the supervisor
// as a crash and the service is restarted.
//
//   - HTTPServerService: ListenAndServe with graceful Shutdown
//   - RetrainService: optional warm-up training, then a retraining ticker
//   - SeedWatchService: reloads the user seed file when it changes
package services
