// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package tracking

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestTracker(t *testing.T) *DuckDBTracker {
	t.Helper()
	tr, err := NewDuckDBTracker(":memory:")
	if err != nil {
		t.Fatalf("NewDuckDBTracker() error = %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	run, err := tr.Record(ctx, Run{
		Name:       "build",
		DurationMS: 1500,
		Params:     map[string]string{"session_gap": "30m0s", "topk": "50"},
		Metrics:    map[string]float64{"items": 3, "view_edges": 3},
		Artifact:   "item2item v1",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if run.ID == "" || run.StartedAt.IsZero() {
		t.Fatalf("Record() did not fill id/started_at: %+v", run)
	}

	got, err := tr.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "build" || got.DurationMS != 1500 || got.Artifact != "item2item v1" {
		t.Errorf("Get() = %+v", got)
	}
	if got.Params["session_gap"] != "30m0s" || got.Metrics["view_edges"] != 3 {
		t.Errorf("params/metrics = %v / %v", got.Params, got.Metrics)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"build", "evaluate", "build"} {
		if _, err := tr.Record(ctx, Run{Name: name, StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	runs, err := tr.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List() len = %d, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Errorf("runs not newest first: %v after %v", runs[i].StartedAt, runs[i-1].StartedAt)
		}
	}
	if runs[1].Name != "evaluate" {
		t.Errorf("runs[1].Name = %q, want evaluate", runs[1].Name)
	}
	if runs[0].Params == nil || runs[0].Metrics == nil {
		t.Error("empty params/metrics should decode as empty maps")
	}

	limited, err := tr.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Errorf("List(2) = %d runs, %v", len(limited), err)
	}
}

func TestRecordValidation(t *testing.T) {
	tr := newTestTracker(t)
	if _, err := tr.Record(context.Background(), Run{}); err == nil {
		t.Error("Record() without name succeeded, want error")
	}

	if _, err := tr.Get(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrRunNotFound", err)
	}
}

func TestDuplicateID(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	if _, err := tr.Record(ctx, Run{ID: "fixed", Name: "build"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, err := tr.Record(ctx, Run{ID: "fixed", Name: "build"}); err == nil {
		t.Error("Record() with duplicate id succeeded, want error")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.duckdb")

	tr, err := NewDuckDBTracker(path)
	if err != nil {
		t.Fatalf("NewDuckDBTracker() error = %v", err)
	}
	run, err := tr.Record(ctx, Run{Name: "build"})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewDuckDBTracker(path)
	if err != nil {
		t.Fatalf("NewDuckDBTracker() reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if _, err := reopened.Get(ctx, run.ID); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func TestCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.duckdb")
	tr, err := NewDuckDBTracker(path)
	if err != nil {
		t.Fatalf("NewDuckDBTracker() error = %v", err)
	}
	defer func() { _ = tr.Close() }()

	if _, err := tr.Record(context.Background(), Run{Name: "build"}); err != nil {
		t.Errorf("Record() error = %v", err)
	}
}
