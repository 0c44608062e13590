// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/reelrec/internal/metrics"
)

// maxWatchRetries bounds optimistic transaction retries in AddWatched.
const maxWatchRetries = 5

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore keeps one JSON profile per key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "reelrec:user:"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func decodeProfile(data []byte) (*UserProfile, error) {
	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &p, nil
}

// FindByID implements Store.
func (s *RedisStore) FindByID(ctx context.Context, id string) (*UserProfile, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordUserLookup("redis", "miss")
		return nil, ErrUserNotFound
	}
	if err != nil {
		metrics.RecordUserLookup("redis", "error")
		return nil, fmt.Errorf("get user: %w", err)
	}
	metrics.RecordUserLookup("redis", "hit")
	return decodeProfile(data)
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, profile *UserProfile) error {
	p, err := normalizeProfile(profile)
	if err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.client.Set(ctx, s.key(p.ID), data, 0).Err()
}

// AddWatched implements Store using WATCH/MULTI so concurrent writers do not
// lose entries.
func (s *RedisStore) AddWatched(ctx context.Context, userID, itemID string) (*UserProfile, error) {
	key := s.key(userID)
	var updated *UserProfile

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		p, err := decodeProfile(data)
		if err != nil {
			return err
		}
		var changed bool
		p.WatchHistory, changed = appendWatched(p.WatchHistory, itemID)
		updated = p
		if !changed {
			return nil
		}
		out, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("add watched for %s: too many concurrent updates", userID)
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
