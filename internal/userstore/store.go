// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package userstore persists user profiles and their watch history.
//
// Backends:
//   - memory: map guarded by a mutex, optionally seeded from a JSON file that
//     is reloaded when it changes on disk
//   - badger: embedded durable key-value store
//   - redis: shared store for multi-instance deployments
//   - postgres: relational tables accessed through gorm
package userstore

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when no profile exists for an ID.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidProfile is returned when a profile cannot be stored.
var ErrInvalidProfile = errors.New("invalid user profile")

// UserProfile is a user and the catalog item IDs they have watched.
type UserProfile struct {
	ID           string   `json:"id"`
	WatchHistory []string `json:"watchedHistory"`
}

// Store looks up and records user watch history.
type Store interface {
	// FindByID returns ErrUserNotFound for unknown IDs.
	FindByID(ctx context.Context, id string) (*UserProfile, error)

	// Save creates or replaces a profile.
	Save(ctx context.Context, profile *UserProfile) error

	// AddWatched appends itemID to the user's history unless already present
	// and returns the updated profile. Unknown users yield ErrUserNotFound.
	AddWatched(ctx context.Context, userID, itemID string) (*UserProfile, error)

	// Close releases backend resources.
	Close() error
}

// normalizeProfile validates a profile and returns a copy with duplicate
// history entries removed, first occurrence kept.
func normalizeProfile(p *UserProfile) (*UserProfile, error) {
	if p == nil || p.ID == "" {
		return nil, ErrInvalidProfile
	}
	out := &UserProfile{ID: p.ID, WatchHistory: make([]string, 0, len(p.WatchHistory))}
	seen := make(map[string]struct{}, len(p.WatchHistory))
	for _, id := range p.WatchHistory {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.WatchHistory = append(out.WatchHistory, id)
	}
	return out, nil
}

// appendWatched returns history with itemID appended if missing, and whether
// it changed.
func appendWatched(history []string, itemID string) ([]string, bool) {
	for _, id := range history {
		if id == itemID {
			return history, false
		}
	}
	return append(history, itemID), true
}

func cloneProfile(p *UserProfile) *UserProfile {
	return &UserProfile{ID: p.ID, WatchHistory: append([]string(nil), p.WatchHistory...)}
}
