// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))
	RecordAPIRequest("GET", "/api/v1/health", "200", 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := getGaugeValue(APIActiveRequests)
	TrackActiveRequest(true)
	if got := getGaugeValue(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := getGaugeValue(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordQuery(t *testing.T) {
	c := QueriesTotal.WithLabelValues("view", "hit")
	before := testutil.ToFloat64(c)
	RecordQuery("view", "hit", 50*time.Microsecond)
	RecordQuery("view", "hit", 70*time.Microsecond)
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("recommend_queries_total delta = %v, want 2", got)
	}
}

func TestRecordQueryCache(t *testing.T) {
	hit := QueryCacheTotal.WithLabelValues("hit")
	miss := QueryCacheTotal.WithLabelValues("miss")
	hitBefore, missBefore := testutil.ToFloat64(hit), testutil.ToFloat64(miss)

	RecordQueryCache(true)
	RecordQueryCache(false)
	RecordQueryCache(false)

	if got := testutil.ToFloat64(hit) - hitBefore; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(miss) - missBefore; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}

func TestRecordBuild(t *testing.T) {
	success := IndexBuildsTotal.WithLabelValues("success")
	failure := IndexBuildsTotal.WithLabelValues("failure")
	skipped := IndexBuildsTotal.WithLabelValues("skipped")
	s0, f0, k0 := testutil.ToFloat64(success), testutil.ToFloat64(failure), testutil.ToFloat64(skipped)

	RecordBuild(time.Second, nil)
	RecordBuild(time.Second, errors.New("load failed"))
	RecordBuildSkipped()

	if testutil.ToFloat64(success)-s0 != 1 || testutil.ToFloat64(failure)-f0 != 1 || testutil.ToFloat64(skipped)-k0 != 1 {
		t.Error("index_builds_total not incremented once per result")
	}
	if getGaugeValue(IndexLastBuild) == 0 {
		t.Error("index_last_build_timestamp_seconds not set after success")
	}
}

func TestSetIndexState(t *testing.T) {
	SetIndexState(7, 1234)
	SetIndexKind("transaction", 10, 4)

	if got := getGaugeValue(IndexGeneration); got != 7 {
		t.Errorf("index_generation = %v, want 7", got)
	}
	if got := getGaugeValue(IndexItems); got != 1234 {
		t.Errorf("index_items = %v, want 1234", got)
	}
	if got := testutil.ToFloat64(IndexEdges.WithLabelValues("transaction")); got != 4 {
		t.Errorf("index_edges{transaction} = %v, want 4", got)
	}
	if got := testutil.ToFloat64(IndexEvents.WithLabelValues("transaction")); got != 10 {
		t.Errorf("index_events{transaction} = %v, want 10", got)
	}
}

func TestRecordEventsLoaded(t *testing.T) {
	before := testutil.ToFloat64(EventsLoaded)
	cart := EventsSkipped.WithLabelValues("addtocart")
	cartBefore := testutil.ToFloat64(cart)

	RecordEventsLoaded(10, map[string]int{"addtocart": 3})

	if got := testutil.ToFloat64(EventsLoaded) - before; got != 10 {
		t.Errorf("events_loaded_total delta = %v, want 10", got)
	}
	if got := testutil.ToFloat64(cart) - cartBefore; got != 3 {
		t.Errorf("events_skipped_total{addtocart} delta = %v, want 3", got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("disk full"), "failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := StoreOperations.WithLabelValues("file", "save", tt.result)
			before := testutil.ToFloat64(c)
			RecordStoreOperation("file", "save", time.Millisecond, tt.err)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("delta = %v, want 1", got)
			}
		})
	}
}
