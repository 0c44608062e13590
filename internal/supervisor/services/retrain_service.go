// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrec/internal/recommend"
)

// Trainer is the part of recommend.Service the retrain loop drives.
type Trainer interface {
	TrainModel(ctx context.Context, force bool) (*recommend.TrainResult, error)
}

// RetrainServiceConfig controls the retraining schedule.
type RetrainServiceConfig struct {
	// WarmOnStartup trains once as soon as the service starts.
	WarmOnStartup bool

	// Interval is how often a non-forced training request is made. Requests
	// against a fresh model are skipped by the trainer, so the interval
	// only needs to be shorter than the staleness window.
	// Default: 1h
	Interval time.Duration
}

// RetrainService keeps the model fresh by periodically requesting training.
// Failures are logged and retried on the next tick.
type RetrainService struct {
	trainer Trainer
	config  RetrainServiceConfig
	logger  zerolog.Logger
}

// NewRetrainService creates the retraining loop.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetrainService(trainer Trainer, cfg RetrainServiceConfig, logger zerolog.Logger) *RetrainService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &RetrainService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "retrain").Logger(),
	}
}

// Serve implements suture.Service.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("warm_on_startup", s.config.WarmOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Retrain service starting")

	if s.config.WarmOnStartup {
		s.train(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Retrain service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.train(ctx, "schedule")
		}
	}
}

func (s *RetrainService) train(ctx context.Context, trigger string) {
	res, err := s.trainer.TrainModel(ctx, false)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("trigger", trigger).Msg("Retraining failed, will retry on schedule")
		}
		return
	}
	s.logger.Debug().
		Str("trigger", trigger).
		Str("status", string(res.Status)).
		Time("last_trained_at", res.LastTrainedAt).
		Msg("Retrain check complete")
}

// String names the service in supervisor logs.
func (s *RetrainService) String() string {
	return "retrain"
}
