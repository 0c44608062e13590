// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelrec/config.yaml",
	"/etc/reelrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			Language:          "en-US",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 20,
			Burst:             5,
			MaxRetries:        4,
			RetryBaseDelay:    time.Second,
			BreakerTimeout:    time.Minute,
			BreakerMinReqs:    6,
			BreakerFailRatio:  0.6,
		},
		Catalog: CatalogConfig{
			PagesPerCategory: 3,
			Categories:       []string{"popular", "top_rated"},
		},
		Recommend: RecommendConfig{
			TopK:            10,
			StalenessWindow: 24 * time.Hour,
			Hidden1:         10,
			Hidden2:         8,
			L2:              0.001,
			LearningRate:    0.001,
			Epochs:          100,
			BatchSize:       32,
			ValidationSplit: 0.2,
			ProgressEvery:   10,
			Seed:            42,
			TrainingTimeout: 10 * time.Minute,
			CacheSize:       1000,
			CacheTTL:        5 * time.Minute,
		},
		Retrain: RetrainConfig{
			Enabled:       true,
			Interval:      time.Hour,
			WarmOnStartup: true,
		},
		Store: StoreConfig{
			Backend:        "memory",
			BadgerPath:     "/data/reelrec/users",
			RedisAddr:      "localhost:6379",
			RedisKeyPrefix: "reelrec:user:",
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5000,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Minute, // synchronous /train requests run a full training pass
			ShutdownTimeout:   30 * time.Second,
			Environment:       "development",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration using koanf with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// TMDB_API_KEY -> tmdb.api_key, PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"catalog.categories",
	"server.cors_origins",
}

// processSliceFields converts comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"tmdb_base_url":              "tmdb.base_url",
	"tmdb_api_key":               "tmdb.api_key",
	"tmdb_read_access_token":     "tmdb.read_access_token",
	"tmdb_language":              "tmdb.language",
	"tmdb_timeout":               "tmdb.timeout",
	"tmdb_rate_limit_rps":        "tmdb.requests_per_second",
	"tmdb_rate_limit_burst":      "tmdb.burst",
	"tmdb_max_retries":           "tmdb.max_retries",
	"tmdb_retry_base_delay":      "tmdb.retry_base_delay",
	"tmdb_breaker_timeout":       "tmdb.breaker_timeout",
	"tmdb_breaker_min_requests":  "tmdb.breaker_min_requests",
	"tmdb_breaker_failure_ratio": "tmdb.breaker_failure_ratio",

	"catalog_pages_per_category": "catalog.pages_per_category",
	"catalog_categories":         "catalog.categories",

	"recommend_top_k":            "recommend.top_k",
	"recommend_staleness_window": "recommend.staleness_window",
	"recommend_hidden1":          "recommend.hidden1",
	"recommend_hidden2":          "recommend.hidden2",
	"recommend_l2":               "recommend.l2",
	"recommend_learning_rate":    "recommend.learning_rate",
	"recommend_epochs":           "recommend.epochs",
	"recommend_batch_size":       "recommend.batch_size",
	"recommend_validation_split": "recommend.validation_split",
	"recommend_progress_every":   "recommend.progress_every",
	"recommend_seed":             "recommend.seed",
	"recommend_training_timeout": "recommend.training_timeout",
	"recommend_cache_size":       "recommend.cache_size",
	"recommend_cache_ttl":        "recommend.cache_ttl",

	"retrain_enabled":         "retrain.enabled",
	"retrain_interval":        "retrain.interval",
	"retrain_warm_on_startup": "retrain.warm_on_startup",

	"user_store_backend":    "store.backend",
	"user_store_seed_file":  "store.seed_file",
	"user_store_badger_dir": "store.badger_path",
	"redis_addr":            "store.redis_addr",
	"redis_password":        "store.redis_password",
	"redis_db":              "store.redis_db",
	"redis_key_prefix":      "store.redis_key_prefix",
	"database_url":          "store.postgres_dsn",

	"http_host":          "server.host",
	"http_port":          "server.port",
	"port":               "server.port",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
	"shutdown_timeout":   "server.shutdown_timeout",
	"environment":        "server.environment",
	"cors_origins":       "server.cors_origins",
	"rate_limit_reqs":    "server.rate_limit_reqs",
	"rate_limit_window":  "server.rate_limit_window",
	"disable_rate_limit": "server.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
