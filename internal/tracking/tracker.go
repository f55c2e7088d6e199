// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package tracking records build and evaluation runs in DuckDB so their
// parameters and metrics can be compared later.
//
//	tracker, err := tracking.NewDuckDBTracker("data/runs.duckdb")
//	run, err := tracker.Record(ctx, tracking.Run{
//	    Name:    "build",
//	    Params:  map[string]string{"session_gap": "30m"},
//	    Metrics: map[string]float64{"items": 235061},
//	})
//	runs, err := tracker.List(ctx, 20) // newest first
package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned by Get for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is one tracked pipeline or evaluation run.
type Run struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	StartedAt  time.Time          `json:"started_at"`
	DurationMS int64              `json:"duration_ms"`
	Params     map[string]string  `json:"params,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`

	// Artifact is the stored index version or uploaded file the run
	// produced, if any.
	Artifact string `json:"artifact,omitempty"`
}

// Recorder stores runs.
type Recorder interface {
	Record(ctx context.Context, run Run) (Run, error)
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id          VARCHAR PRIMARY KEY,
	name        VARCHAR NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	params      VARCHAR NOT NULL DEFAULT '{}',
	metrics     VARCHAR NOT NULL DEFAULT '{}',
	artifact    VARCHAR NOT NULL DEFAULT ''
)`

// DuckDBTracker persists runs in a DuckDB table.
type DuckDBTracker struct {
	db *sql.DB
}

// NewDuckDBTracker opens (or creates) the database at path and ensures
// the runs table exists. An empty path or ":memory:" keeps runs in memory.
func NewDuckDBTracker(path string) (*DuckDBTracker, error) {
	if path == ":memory:" {
		path = ""
	}
	if dir := filepath.Dir(path); path != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for the tracking database
			return nil, fmt.Errorf("failed to create tracking directory: %w", err)
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracking database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}
	return &DuckDBTracker{db: db}, nil
}

// Record stores run, assigning an id and start time when they are unset,
// and returns the stored run.
//
//nolint:gocritic // Run is returned completed
func (t *DuckDBTracker) Record(ctx context.Context, run Run) (Run, error) {
	if run.Name == "" {
		return Run{}, fmt.Errorf("run name is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC().Truncate(time.Microsecond)

	params, err := json.Marshal(nonNilParams(run.Params))
	if err != nil {
		return Run{}, fmt.Errorf("failed to encode params: %w", err)
	}
	metrics, err := json.Marshal(nonNilMetrics(run.Metrics))
	if err != nil {
		return Run{}, fmt.Errorf("failed to encode metrics: %w", err)
	}

	_, err = t.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, started_at, duration_ms, params, metrics, artifact) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.StartedAt, run.DurationMS, string(params), string(metrics), run.Artifact)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (t *DuckDBTracker) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, name, started_at, duration_ms, params, metrics, artifact FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns one run by id.
func (t *DuckDBTracker) Get(ctx context.Context, id string) (Run, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT id, name, started_at, duration_ms, params, metrics, artifact FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Close closes the database.
func (t *DuckDBTracker) Close() error {
	return t.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run             Run
		params, metrics string
	)
	if err := s.Scan(&run.ID, &run.Name, &run.StartedAt, &run.DurationMS, &params, &metrics, &run.Artifact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = run.StartedAt.UTC()
	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return Run{}, fmt.Errorf("failed to decode params of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
		return Run{}, fmt.Errorf("failed to decode metrics of run %s: %w", run.ID, err)
	}
	return run, nil
}

func nonNilParams(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilMetrics(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

var _ Recorder = (*DuckDBTracker)(nil)
