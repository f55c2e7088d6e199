// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package pipeline turns raw interaction records into a published index.
//
// A run loads records from an events.Source, sessionizes them when the
// source has no session ids, aggregates co-occurrences, saves the snapshot
// to a storage.Repository, publishes the new index on a recommend.Handle
// and records the run in a tracker. Only one run executes at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/item2item/internal/events"
	"github.com/tomtom215/item2item/internal/logging"
	"github.com/tomtom215/item2item/internal/metrics"
	"github.com/tomtom215/item2item/internal/recommend"
	"github.com/tomtom215/item2item/internal/recommend/storage"
	"github.com/tomtom215/item2item/internal/tracking"
)

// ErrRunInProgress is returned by Run while another run is executing.
var ErrRunInProgress = errors.New("index build already in progress")

// Options configures a Pipeline.
type Options struct {
	// Name is the artifact name snapshots are saved under.
	Name string

	// SessionGap splits a visitor's events into sessions when the source
	// carries no session ids. Zero means events.DefaultSessionGap.
	SessionGap time.Duration

	// Keep prunes the repository to this many versions after a save. Zero
	// keeps every version.
	Keep int

	// Params are extra values recorded with every tracked run.
	Params map[string]string
}

// Result describes one completed run.
type Result struct {
	RunID      string          `json:"run_id"`
	Name       string          `json:"name"`
	Version    int             `json:"version"`
	Generation uint64          `json:"generation"`
	StartedAt  time.Time       `json:"started_at"`
	Duration   time.Duration   `json:"duration"`
	Loaded     int             `json:"loaded"`
	Skipped    events.Skipped  `json:"skipped"`
	Stats      recommend.Stats `json:"stats"`
}

// Pipeline builds and publishes indexes.
type Pipeline struct {
	source  events.Source
	repo    storage.Repository
	handle  *recommend.Handle
	tracker tracking.Recorder
	opts    Options
	logger  zerolog.Logger

	mu   sync.Mutex
	last atomic.Pointer[Result]
}

// New creates a pipeline. repo and tracker may be nil, in which case the
// snapshot is not saved or the run is not tracked.
//
//nolint:gocritic // options are copied once at construction
func New(source events.Source, repo storage.Repository, handle *recommend.Handle, tracker tracking.Recorder, opts Options) *Pipeline {
	if opts.Name == "" {
		opts.Name = "item2item"
	}
	if opts.SessionGap <= 0 {
		opts.SessionGap = events.DefaultSessionGap
	}
	return &Pipeline{
		source:  source,
		repo:    repo,
		handle:  handle,
		tracker: tracker,
		opts:    opts,
		logger:  logging.WithComponent("pipeline"),
	}
}

// Handle returns the handle the pipeline publishes to.
func (p *Pipeline) Handle() *recommend.Handle {
	return p.handle
}

// Last returns the most recent successful result, or nil.
func (p *Pipeline) Last() *Result {
	return p.last.Load()
}

// LoadEvents reads records from source, sessionizing them when needed, and
// converts them into recommend events.
func LoadEvents(ctx context.Context, source events.Source, gap time.Duration) ([]recommend.Event, events.Skipped, error) {
	records, err := source.Records(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load records: %w", err)
	}
	if events.NeedsSessions(records) {
		records = events.Sessionize(records, gap)
	}
	evts, skipped := events.ToEvents(records)
	return evts, skipped, nil
}

// Run executes one build. It returns ErrRunInProgress without waiting when
// another run holds the pipeline. The published index is only replaced
// after aggregation and saving succeed.
func (p *Pipeline) Run(ctx context.Context) (_ *Result, err error) {
	if !p.mu.TryLock() {
		metrics.RecordBuildSkipped()
		return nil, ErrRunInProgress
	}
	defer p.mu.Unlock()

	res := &Result{
		RunID:     uuid.NewString(),
		Name:      p.opts.Name,
		StartedAt: time.Now().UTC(),
	}
	ctx = logging.ContextWithRunID(ctx, res.RunID)
	log := logging.Ctx(ctx).With().Str("component", "pipeline").Logger()

	defer func() {
		res.Duration = time.Since(res.StartedAt)
		metrics.RecordBuild(res.Duration, err)
		if err != nil {
			log.Error().Err(err).Dur("duration", res.Duration).Msg("index build failed")
		}
	}()

	log.Info().Msg("index build started")

	evts, skipped, err := LoadEvents(ctx, p.source, p.opts.SessionGap)
	if err != nil {
		return nil, err
	}
	res.Loaded = len(evts)
	res.Skipped = skipped
	metrics.RecordEventsLoaded(len(evts), skipped)
	log.Info().Int("events", len(evts)).Int("skipped", skipped.Total()).Msg("events loaded")

	idx, err := recommend.Aggregate(ctx, evts)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	res.Stats = idx.Stats()

	if p.repo != nil {
		meta, err := p.repo.Save(ctx, p.opts.Name, idx.Snapshot(), storage.Metadata{
			RunID:           res.RunID,
			BuildDurationMS: time.Since(res.StartedAt).Milliseconds(),
		})
		if err != nil {
			return nil, fmt.Errorf("save index: %w", err)
		}
		res.Version = meta.Version

		if p.opts.Keep > 0 {
			if err := p.repo.Prune(ctx, p.opts.Name, p.opts.Keep); err != nil {
				log.Warn().Err(err).Int("keep", p.opts.Keep).Msg("failed to prune old index versions")
			}
		}
	}

	p.handle.Publish(idx)
	res.Generation = p.handle.Generation()
	publishMetrics(res.Generation, idx)

	p.track(ctx, log, res)
	p.last.Store(res)

	log.Info().
		Int("version", res.Version).
		Uint64("generation", res.Generation).
		Int("items", res.Stats.Items).
		Int64("view_edges", res.Stats.Edges.View).
		Int64("buy_edges", res.Stats.Edges.Transaction).
		Dur("duration", time.Since(res.StartedAt)).
		Msg("index published")
	return res, nil
}

// Restore publishes the latest saved snapshot. It reports false when the
// repository holds no snapshot yet.
func (p *Pipeline) Restore(ctx context.Context) (storage.Metadata, bool, error) {
	if p.repo == nil {
		return storage.Metadata{}, false, nil
	}
	idx, meta, err := storage.LoadIndex(ctx, p.repo, p.opts.Name, 0)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Metadata{}, false, nil
	}
	if err != nil {
		return storage.Metadata{}, false, fmt.Errorf("restore index: %w", err)
	}

	p.handle.Publish(idx)
	publishMetrics(p.handle.Generation(), idx)
	p.logger.Info().Str("name", meta.Name).Int("version", meta.Version).Int("items", idx.Len()).Msg("restored saved index")
	return meta, true, nil
}

func publishMetrics(generation uint64, idx *recommend.Index) {
	stats := idx.Stats()
	metrics.SetIndexState(generation, idx.Len())
	for _, kind := range recommend.Kinds() {
		metrics.SetIndexKind(kind.String(), stats.EventsByKind.Get(kind), stats.Edges.Get(kind))
	}
}

// track records the run. Tracking failures are logged and do not fail the
// build.
func (p *Pipeline) track(ctx context.Context, log zerolog.Logger, res *Result) {
	if p.tracker == nil {
		return
	}

	params := map[string]string{
		"session_gap": p.opts.SessionGap.String(),
	}
	for k, v := range p.opts.Params {
		params[k] = v
	}
	run := tracking.Run{
		ID:         res.RunID,
		Name:       "build",
		StartedAt:  res.StartedAt,
		DurationMS: time.Since(res.StartedAt).Milliseconds(),
		Params:     params,
		Metrics: map[string]float64{
			"events":        float64(res.Stats.Events),
			"skipped":       float64(res.Skipped.Total()),
			"items":         float64(res.Stats.Items),
			"view_sessions": float64(res.Stats.Groups.View),
			"buy_baskets":   float64(res.Stats.Groups.Transaction),
			"view_edges":    float64(res.Stats.Edges.View),
			"buy_edges":     float64(res.Stats.Edges.Transaction),
		},
	}
	if res.Version > 0 {
		run.Artifact = p.opts.Name + " v" + strconv.Itoa(res.Version)
	}
	if _, err := p.tracker.Record(ctx, run); err != nil {
		log.Warn().Err(err).Msg("failed to record run")
	}
}
