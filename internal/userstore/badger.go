// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reelrec/internal/metrics"
)

const userKeyPrefix = "user:"

// BadgerStore keeps profiles in BadgerDB, one JSON value per user.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// OpenBadgerStore opens (or creates) a database at path. An empty path opens
// an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for users: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStore wraps an already open database. Close leaves it open.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func userKey(id string) []byte {
	return []byte(userKeyPrefix + id)
}

func getProfile(txn *badger.Txn, id string) (*UserProfile, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var p UserProfile
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	}); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &p, nil
}

func setProfile(txn *badger.Txn, p *UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return txn.Set(userKey(p.ID), data)
}

// FindByID implements Store.
func (s *BadgerStore) FindByID(_ context.Context, id string) (*UserProfile, error) {
	var profile *UserProfile
	err := s.db.View(func(txn *badger.Txn) error {
		p, err := getProfile(txn, id)
		profile = p
		return err
	})
	switch {
	case errors.Is(err, ErrUserNotFound):
		metrics.RecordUserLookup("badger", "miss")
	case err != nil:
		metrics.RecordUserLookup("badger", "error")
	default:
		metrics.RecordUserLookup("badger", "hit")
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Save implements Store.
func (s *BadgerStore) Save(_ context.Context, profile *UserProfile) error {
	p, err := normalizeProfile(profile)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return setProfile(txn, p)
	})
}

// AddWatched implements Store. The read and write share one transaction;
// Badger retries are left to the caller on ErrConflict.
func (s *BadgerStore) AddWatched(_ context.Context, userID, itemID string) (*UserProfile, error) {
	var updated *UserProfile
	err := s.db.Update(func(txn *badger.Txn) error {
		p, err := getProfile(txn, userID)
		if err != nil {
			return err
		}
		var changed bool
		p.WatchHistory, changed = appendWatched(p.WatchHistory, itemID)
		updated = p
		if !changed {
			return nil
		}
		return setProfile(txn, p)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
