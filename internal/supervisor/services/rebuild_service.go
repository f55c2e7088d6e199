// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package services adapts item2item components to suture.Service.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/item2item/internal/pipeline"
	"github.com/tomtom215/item2item/internal/recommend/storage"
)

// IndexBuilder builds and restores the served index. *pipeline.Pipeline
// implements it.
type IndexBuilder interface {
	Run(ctx context.Context) (*pipeline.Result, error)
	Restore(ctx context.Context) (storage.Metadata, bool, error)
}

// RebuildServiceConfig configures a RebuildService.
type RebuildServiceConfig struct {
	// Schedule is a standard cron expression or descriptor such as
	// "@every 24h". Empty disables scheduled rebuilds.
	Schedule string

	// OnStartup builds once when the service first starts, even when a
	// stored index was restored.
	OnStartup bool

	// Timeout bounds one rebuild. Default: 30m.
	Timeout time.Duration
}

// RebuildService restores the newest stored index, then rebuilds on a cron
// schedule. When nothing could be restored it builds immediately so the API
// does not serve an empty index until the first scheduled run.
type RebuildService struct {
	builder IndexBuilder
	config  RebuildServiceConfig
	logger  zerolog.Logger
	name    string

	startOnce sync.Once
}

// NewRebuildService creates a RebuildService. The schedule is parsed here so
// a bad expression fails at wiring time, not inside the supervisor.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRebuildService(builder IndexBuilder, cfg RebuildServiceConfig, logger zerolog.Logger) (*RebuildService, error) {
	if builder == nil {
		return nil, errors.New("rebuild service requires a builder")
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return nil, fmt.Errorf("invalid rebuild schedule %q: %w", cfg.Schedule, err)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &RebuildService{
		builder: builder,
		config:  cfg,
		logger:  logger.With().Str("service", "rebuild").Logger(),
		name:    "rebuild-service",
	}, nil
}

// Serve implements suture.Service. Restore and the startup build happen on
// the first Serve only; a restart by the supervisor resumes the schedule.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.startOnce.Do(func() { s.startup(ctx) })

	if s.config.Schedule == "" {
		s.logger.Info().Msg("scheduled rebuilds disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.config.Schedule, func() { s.rebuild(ctx, "schedule") }); err != nil {
		return fmt.Errorf("schedule rebuild: %w", err)
	}
	c.Start()

	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Time("next", c.Entries()[0].Next).
		Msg("rebuild service running")

	<-ctx.Done()

	// wait for an in-flight rebuild; ctx cancellation stops it
	<-c.Stop().Done()
	s.logger.Info().Msg("rebuild service shutting down")
	return ctx.Err()
}

func (s *RebuildService) startup(ctx context.Context) {
	meta, restored, err := s.builder.Restore(ctx)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Msg("restoring stored index failed")
	case restored:
		s.logger.Info().
			Str("name", meta.Name).
			Int("version", meta.Version).
			Int("items", meta.Stats.Items).
			Msg("stored index restored")
	default:
		s.logger.Info().Msg("no stored index to restore")
	}

	if s.config.OnStartup || !restored {
		s.rebuild(ctx, "startup")
	}
}

// rebuild runs one build. Failures are logged; the previous index keeps
// serving.
func (s *RebuildService) rebuild(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	res, err := s.builder.Run(runCtx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("rebuild skipped, another build is running")
	case err != nil:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("rebuild failed, keeping current index")
	default:
		s.logger.Info().
			Str("trigger", trigger).
			Str("run_id", res.RunID).
			Int("version", res.Version).
			Uint64("generation", res.Generation).
			Dur("duration", res.Duration).
			Msg("rebuild complete")
	}
}

// String names the service in suture events.
func (s *RebuildService) String() string {
	return s.name
}
