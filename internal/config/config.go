// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

// Package config loads Reelrec configuration with koanf.
//
// Configuration Loading Order:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH or config.yaml)
//  3. Environment Variables: explicit names mapped in envTransformFunc
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Retrain   RetrainConfig   `koanf:"retrain"`
	Store     StoreConfig     `koanf:"store"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// TMDBConfig configures the remote movie catalog client.
//
// Environment Variables:
//   - TMDB_BASE_URL: API root (default: https://api.themoviedb.org/3)
//   - TMDB_API_KEY: v3 API key sent as the api_key query parameter
//   - TMDB_READ_ACCESS_TOKEN: v4 read access token sent as a bearer token
//   - TMDB_LANGUAGE: language query parameter (default: en-US)
//   - TMDB_TIMEOUT: per-request timeout (default: 15s)
//   - TMDB_RATE_LIMIT_RPS: client-side request rate (default: 20)
//   - TMDB_MAX_RETRIES: retries on HTTP 429 (default: 4)
type TMDBConfig struct {
	BaseURL         string        `koanf:"base_url" validate:"required,url"`
	APIKey          string        `koanf:"api_key"`
	ReadAccessToken string        `koanf:"read_access_token"`
	Language        string        `koanf:"language"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`

	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	// Default: 20
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=1"`

	// MaxRetries bounds retries after HTTP 429 responses.
	// Default: 4
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gt=0"`

	// Breaker settings for the page fetch circuit breaker.
	BreakerTimeout   time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
	BreakerMinReqs   uint32        `koanf:"breaker_min_requests"`
	BreakerFailRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
}

// CatalogConfig controls catalog ingestion.
type CatalogConfig struct {
	// PagesPerCategory is how many pages are requested per category.
	// Default: 3
	PagesPerCategory int `koanf:"pages_per_category" validate:"min=1,max=500"`

	// Categories are fetched page by page in this order.
	// Default: popular, top_rated
	Categories []string `koanf:"categories" validate:"min=1,dive,oneof=popular top_rated now_playing upcoming"`
}

// RecommendConfig holds the model and ranking parameters.
type RecommendConfig struct {
	// TopK is the number of items returned per recommendation request.
	// Default: 10
	TopK int `koanf:"top_k" validate:"min=1,max=100"`

	// StalenessWindow is how long a trained model is considered fresh.
	// Default: 24h
	StalenessWindow time.Duration `koanf:"staleness_window" validate:"gt=0"`

	Hidden1         int     `koanf:"hidden1" validate:"min=1"`
	Hidden2         int     `koanf:"hidden2" validate:"min=1"`
	L2              float64 `koanf:"l2" validate:"gte=0"`
	LearningRate    float64 `koanf:"learning_rate" validate:"gt=0"`
	Epochs          int     `koanf:"epochs" validate:"min=1"`
	BatchSize       int     `koanf:"batch_size" validate:"min=1"`
	ValidationSplit float64 `koanf:"validation_split" validate:"gte=0,lt=1"`

	// ProgressEvery logs training loss every N epochs.
	// Default: 10
	ProgressEvery int   `koanf:"progress_every" validate:"min=1"`
	Seed          int64 `koanf:"seed"`

	// TrainingTimeout bounds a single training run including ingestion.
	// Default: 10m
	TrainingTimeout time.Duration `koanf:"training_timeout" validate:"gt=0"`

	// CacheSize bounds the recommendation response cache. Zero disables it.
	// Default: 1000
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// RetrainConfig controls the background retraining service.
type RetrainConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Interval      time.Duration `koanf:"interval" validate:"gt=0"`
	WarmOnStartup bool          `koanf:"warm_on_startup"`
}

// StoreConfig selects the user profile backend.
type StoreConfig struct {
	// Backend is one of memory, badger, redis, postgres.
	// Default: memory
	Backend string `koanf:"backend" validate:"oneof=memory badger redis postgres"`

	// SeedFile is a JSON array of user profiles loaded into the memory store
	// and watched for changes.
	SeedFile string `koanf:"seed_file"`

	BadgerPath string `koanf:"badger_path"`

	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db" validate:"gte=0"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	PostgresDSN string `koanf:"postgres_dsn"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
