// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/item2item/internal/config"
	"github.com/tomtom215/item2item/internal/events"
	"github.com/tomtom215/item2item/internal/logging"
	"github.com/tomtom215/item2item/internal/pipeline"
	"github.com/tomtom215/item2item/internal/recommend"
	"github.com/tomtom215/item2item/internal/recommend/storage"
	"github.com/tomtom215/item2item/internal/tracking"
)

// openRepository opens the artifact store selected by STORE_TYPE.
func openRepository(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	switch cfg.Store.Type {
	case "badger":
		s, err := storage.OpenBadgerStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := storage.NewStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// newSource returns the event source selected by EVENTS_READER. The csv
// reader ignores EVENTS_LOOKBACK.
func newSource(src config.SourceConfig) events.Source {
	if src.Reader == "csv" {
		return events.CSVSource{Path: src.Path}
	}
	ds := events.DuckDBSource{Path: src.Path, Format: src.Format}
	if src.Lookback > 0 {
		ds.Since = time.Now().Add(-src.Lookback)
	}
	return ds
}

func weights(idx config.IndexConfig) recommend.Weights {
	return recommend.Weights{View: idx.ViewWeight, Transaction: idx.BuyWeight}
}

// deps are the resources a command opens and must close.
type deps struct {
	repo    storage.Repository
	tracker *tracking.DuckDBTracker
}

// openDeps opens the repository and, when wanted and enabled, the tracker.
func (a *app) openDeps(ctx context.Context, withTracker bool) (*deps, error) {
	repo, err := openRepository(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Store.Type, err)
	}
	d := &deps{repo: repo}

	if withTracker && a.cfg.Tracking.Enabled {
		tr, err := tracking.NewDuckDBTracker(a.cfg.Tracking.Path)
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("open run tracker: %w", err)
		}
		d.tracker = tr
	}
	return d, nil
}

// recorder returns the tracker as a Recorder, or a nil interface when
// tracking is off.
func (d *deps) recorder() tracking.Recorder {
	if d.tracker == nil {
		return nil
	}
	return d.tracker
}

func (d *deps) Close() {
	var errs []error
	if d.tracker != nil {
		errs = append(errs, d.tracker.Close())
	}
	errs = append(errs, d.repo.Close())
	if err := errors.Join(errs...); err != nil {
		logging.Warn().Err(err).Msg("closing resources failed")
	}
}

// newPipeline wires a pipeline over the configured source.
func (a *app) newPipeline(d *deps, handle *recommend.Handle) *pipeline.Pipeline {
	return pipeline.New(newSource(a.cfg.Source), d.repo, handle, d.recorder(), pipeline.Options{
		Name:       a.cfg.Index.Name,
		SessionGap: a.cfg.Source.SessionGap,
		Keep:       a.cfg.Store.Keep,
		Params: map[string]string{
			"source": a.cfg.Source.Path,
			"reader": a.cfg.Source.Reader,
			"store":  a.cfg.Store.Type,
		},
	})
}
