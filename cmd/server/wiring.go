// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/api"
	"github.com/tomtom215/reelrec/internal/catalog"
	"github.com/tomtom215/reelrec/internal/config"
	"github.com/tomtom215/reelrec/internal/recommend"
	"github.com/tomtom215/reelrec/internal/supervisor"
	"github.com/tomtom215/reelrec/internal/supervisor/services"
	"github.com/tomtom215/reelrec/internal/userstore"
)

// components holds everything the supervisor tree runs.
type components struct {
	users     userstore.Store
	service   *recommend.Service
	server    *http.Server
	seedStore *userstore.MemoryStore
}

// recommendConfig maps the koanf configuration onto the service config.
func recommendConfig(cfg *config.RecommendConfig) recommend.Config {
	return recommend.Config{
		TopK:            cfg.TopK,
		StalenessWindow: cfg.StalenessWindow,
		Hidden1:         cfg.Hidden1,
		Hidden2:         cfg.Hidden2,
		L2:              cfg.L2,
		LearningRate:    cfg.LearningRate,
		Epochs:          cfg.Epochs,
		BatchSize:       cfg.BatchSize,
		ValidationSplit: cfg.ValidationSplit,
		ProgressEvery:   cfg.ProgressEvery,
		Seed:            cfg.Seed,
		TrainingTimeout: cfg.TrainingTimeout,
		CacheSize:       cfg.CacheSize,
		CacheTTL:        cfg.CacheTTL,
	}
}

// ingestorConfig maps catalog settings onto the ingestor config.
func ingestorConfig(cfg *config.CatalogConfig) catalog.IngestorConfig {
	categories := make([]catalog.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories = append(categories, catalog.Category(c))
	}
	return catalog.IngestorConfig{
		PagesPerCategory: cfg.PagesPerCategory,
		Categories:       categories,
	}
}

// middlewareConfig maps server settings onto the API middleware config.
func middlewareConfig(cfg *config.ServerConfig) api.MiddlewareConfig {
	mw := api.DefaultMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.CORSOrigins
	mw.RateLimitRequests = cfg.RateLimitReqs
	mw.RateLimitWindow = cfg.RateLimitWindow
	mw.RateLimitDisabled = cfg.RateLimitDisabled
	return mw
}

// buildComponents wires the catalog, user store, service and HTTP server.
// The caller owns users and must close it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildComponents(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*components, error) {
	client := catalog.NewTMDBClient(&cfg.TMDB)
	source := catalog.NewBreakerSource(client, catalog.BreakerConfig{
		Name:         "tmdb",
		MinRequests:  cfg.TMDB.BreakerMinReqs,
		FailureRatio: cfg.TMDB.BreakerFailRatio,
		Timeout:      cfg.TMDB.BreakerTimeout,
	})
	ingestor := catalog.NewIngestor(source, ingestorConfig(&cfg.Catalog), logger)

	users, err := userstore.Open(ctx, &cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	service, err := recommend.NewService(recommendConfig(&cfg.Recommend), ingestor, users, logger,
		recommend.WithDetailSource(client), recommend.WithBrowseSource(source))
	if err != nil {
		_ = users.Close()
		return nil, fmt.Errorf("create recommendation service: %w", err)
	}

	handler := api.NewHandler(service, users)
	router := api.NewRouter(handler, api.NewMiddleware(middlewareConfig(&cfg.Server)))

	c := &components{
		users:   users,
		service: service,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
	if mem, ok := users.(*userstore.MemoryStore); ok && cfg.Store.SeedFile != "" {
		c.seedStore = mem
	}
	return c, nil
}

// addServices registers the long-running services with the tree.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func addServices(tree *supervisor.SupervisorTree, c *components, cfg *config.Config, logger zerolog.Logger) {
	if c.seedStore != nil {
		tree.AddDataService(services.NewSeedWatchService(c.seedStore, cfg.Store.SeedFile))
		logger.Info().Str("path", cfg.Store.SeedFile).Msg("Seed file watcher added to supervisor tree")
	}

	if cfg.Retrain.Enabled {
		tree.AddModelService(services.NewRetrainService(c.service, services.RetrainServiceConfig{
			WarmOnStartup: cfg.Retrain.WarmOnStartup,
			Interval:      cfg.Retrain.Interval,
		}, logger))
		logger.Info().Dur("interval", cfg.Retrain.Interval).Msg("Retrain service added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(c.server, cfg.Server.ShutdownTimeout, logger))
	logger.Info().Str("addr", c.server.Addr).Msg("HTTP server service added")
}
