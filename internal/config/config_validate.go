// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package config

import (
	"fmt"

	"github.com/tomtom215/reelrec/internal/logging"
	"github.com/tomtom215/reelrec/internal/validation"
)

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks struct tag rules first, then cross-field requirements.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateTMDB(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" && c.TMDB.ReadAccessToken == "" {
		return fmt.Errorf("TMDB_API_KEY or TMDB_READ_ACCESS_TOKEN is required")
	}
	return nil
}

// validateStore checks that the selected backend has its connection settings.
func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "badger":
		if c.Store.BadgerPath == "" {
			return fmt.Errorf("USER_STORE_BADGER_DIR is required when store backend is badger")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when store backend is redis")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required when store backend is postgres")
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	// The bottleneck layer must not be wider than the first hidden layer.
	if c.Recommend.Hidden2 > c.Recommend.Hidden1 {
		return fmt.Errorf("recommend.hidden2 (%d) must not exceed recommend.hidden1 (%d)",
			c.Recommend.Hidden2, c.Recommend.Hidden1)
	}
	if c.Retrain.Enabled && c.Retrain.Interval > c.Recommend.StalenessWindow {
		return fmt.Errorf("retrain.interval (%v) must not exceed recommend.staleness_window (%v)",
			c.Retrain.Interval, c.Recommend.StalenessWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
