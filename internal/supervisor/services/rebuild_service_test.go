// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/item2item/internal/pipeline"
	"github.com/tomtom215/item2item/internal/recommend/storage"
)

// mockBuilder counts calls and returns configured results.
type mockBuilder struct {
	mu           sync.Mutex
	runCalls     int
	restoreCalls int
	runErr       error
	restored     bool
	restoreErr   error
}

func (m *mockBuilder) Run(context.Context) (*pipeline.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runCalls++
	if m.runErr != nil {
		return nil, m.runErr
	}
	return &pipeline.Result{RunID: "run", Version: m.runCalls, Generation: uint64(m.runCalls)}, nil
}

func (m *mockBuilder) Restore(context.Context) (storage.Metadata, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreCalls++
	return storage.Metadata{Name: "item2item", Version: 1}, m.restored, m.restoreErr
}

func (m *mockBuilder) calls() (run, restore int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCalls, m.restoreCalls
}

func serveFor(t *testing.T, svc *RebuildService, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return svc.Serve(ctx)
}

func TestNewRebuildService(t *testing.T) {
	tests := []struct {
		name     string
		builder  IndexBuilder
		schedule string
		wantErr  bool
	}{
		{"descriptor", &mockBuilder{}, "@every 24h", false},
		{"cron expression", &mockBuilder{}, "0 3 * * *", false},
		{"no schedule", &mockBuilder{}, "", false},
		{"bad schedule", &mockBuilder{}, "every day", true},
		{"nil builder", nil, "@daily", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewRebuildService(tt.builder, RebuildServiceConfig{Schedule: tt.schedule}, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRebuildService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && svc.config.Timeout != 30*time.Minute {
				t.Errorf("Timeout = %v, want 30m default", svc.config.Timeout)
			}
		})
	}
}

func TestRebuildService_Startup(t *testing.T) {
	tests := []struct {
		name       string
		restored   bool
		restoreErr error
		onStartup  bool
		wantRuns   int
	}{
		{"restored, no startup build", true, nil, false, 0},
		{"restored, startup build", true, nil, true, 1},
		{"nothing stored builds", false, nil, false, 1},
		{"restore error builds", false, errors.New("bucket unreachable"), false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBuilder{restored: tt.restored, restoreErr: tt.restoreErr}
			svc, err := NewRebuildService(b, RebuildServiceConfig{Schedule: "@every 24h", OnStartup: tt.onStartup}, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewRebuildService() error = %v", err)
			}

			if err := serveFor(t, svc, 100*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() error = %v, want deadline exceeded", err)
			}
			run, restore := b.calls()
			if restore != 1 || run != tt.wantRuns {
				t.Errorf("restore/run = %d/%d, want 1/%d", restore, run, tt.wantRuns)
			}
		})
	}
}

func TestRebuildService_StartupOnlyOnce(t *testing.T) {
	b := &mockBuilder{}
	svc, _ := NewRebuildService(b, RebuildServiceConfig{}, zerolog.Nop())

	_ = serveFor(t, svc, 50*time.Millisecond)
	_ = serveFor(t, svc, 50*time.Millisecond)

	run, restore := b.calls()
	if restore != 1 || run != 1 {
		t.Errorf("restore/run = %d/%d after restart, want 1/1", restore, run)
	}
}

func TestRebuildService_Schedule(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the cron scheduler")
	}
	b := &mockBuilder{restored: true}
	svc, _ := NewRebuildService(b, RebuildServiceConfig{Schedule: "@every 1s"}, zerolog.Nop())

	_ = serveFor(t, svc, 2500*time.Millisecond)

	if run, _ := b.calls(); run < 1 {
		t.Errorf("scheduled runs = %d, want at least 1", run)
	}
}

func TestRebuildService_FailureKeepsRunning(t *testing.T) {
	b := &mockBuilder{runErr: pipeline.ErrRunInProgress}
	svc, _ := NewRebuildService(b, RebuildServiceConfig{Schedule: "@every 24h"}, zerolog.Nop())

	if err := serveFor(t, svc, 50*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want the service to keep running", err)
	}
}
