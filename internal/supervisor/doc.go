// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package supervisor runs Reelrec's long-lived components under a suture
// supervisor tree.
//
// # Layers
//
//	reelrec (root)
//	├── data-layer    seed file watcher
//	├── model-layer   periodic retraining
//	└── api-layer     HTTP server
//
// A crashing service is restarted by its layer supervisor with suture's
// failure threshold and backoff. Other layers keep running, so the API keeps
// answering from the last trained model while retraining is backing off.
//
// Supervisor events are logged through sutureslog, which writes to the
// zerolog logger via logging.NewSlogHandler.
package supervisor
