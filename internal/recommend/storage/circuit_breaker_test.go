// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/item2item/internal/metrics"
	"github.com/tomtom215/item2item/internal/recommend"
)

func testBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

func TestBreaker_TripsOnFailures(t *testing.T) {
	b := newBreaker("test-trip", testBreakerSettings())
	boom := errors.New("connection refused")

	for i := range 3 {
		if _, err := b.execute(func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d error = %v, want boom", i, err)
		}
	}
	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	called := false
	_, err := b.execute(func() (any, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if called {
		t.Error("function ran while breaker was open")
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-trip")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-trip", "rejected")); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-trip", "failure")); got != 3 {
		t.Errorf("failures = %v, want 3", got)
	}
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	b := newBreaker("test-notfound", testBreakerSettings())

	for range 5 {
		_, err := b.execute(func() (any, error) {
			return nil, fmt.Errorf("%w: item2item v9", ErrNotFound)
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}

func TestAnswered(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), true},
		{"corrupt", fmt.Errorf("load: %w", recommend.ErrCorruptIndex), true},
		{"network", errors.New("dial tcp: timeout"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answered(tt.err); got != tt.want {
				t.Errorf("answered(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCastResult(t *testing.T) {
	got, err := castResult[[]string]([]string{"a"}, nil)
	if err != nil || len(got) != 1 {
		t.Errorf("castResult() = %v, %v", got, err)
	}
	if _, err := castResult[[]string](42, nil); err == nil {
		t.Error("castResult(int) succeeded, want type error")
	}
	boom := errors.New("boom")
	if _, err := castResult[[]string](nil, boom); !errors.Is(err, boom) {
		t.Errorf("castResult(err) = %v, want boom", err)
	}
}

func TestStateConversions(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		f     float64
		s     string
	}{
		{gobreaker.StateClosed, 0, "closed"},
		{gobreaker.StateHalfOpen, 1, "half-open"},
		{gobreaker.StateOpen, 2, "open"},
	}
	for _, tt := range tests {
		if got := stateToFloat(tt.state); got != tt.f {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.f)
		}
		if got := stateToString(tt.state); got != tt.s {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.s)
		}
	}
}
