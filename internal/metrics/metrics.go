// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package metrics registers the Prometheus collectors exported on /metrics.
//
// Collectors are package-level promauto vars so any package can record
// without plumbing a registry. Record* helpers keep label sets consistent.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Query Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_queries_total",
			Help: "Total number of related-item queries",
		},
		[]string{"kind", "result"}, // result: hit, miss, invalid
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Duration of related-item queries in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"kind"},
	)

	QueryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_query_cache_total",
			Help: "Blended recommendation cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	// Index Metrics
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "index_build_duration_seconds",
			Help:    "Duration of index builds in seconds, from load to publish",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_builds_total",
			Help: "Total number of index builds",
		},
		[]string{"result"}, // success, failure, skipped
	)

	IndexLastBuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_last_build_timestamp_seconds",
			Help: "Unix time of the last successful index build",
		},
	)

	IndexGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_generation",
			Help: "Number of indexes published to the serving handle",
		},
	)

	IndexItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_items",
			Help: "Number of distinct items in the serving index",
		},
	)

	IndexEvents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "index_events",
			Help: "Events aggregated into the serving index",
		},
		[]string{"kind"},
	)

	IndexEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "index_edges",
			Help: "Undirected co-occurrence edges in the serving index",
		},
		[]string{"kind"},
	)

	// Event Loading Metrics
	EventsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_loaded_total",
			Help: "Total number of raw records read from the event source",
		},
	)

	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_skipped_total",
			Help: "Total number of raw records skipped by event type",
		},
		[]string{"event_type"},
	)

	// Artifact Store Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_store_operations_total",
			Help: "Total number of artifact store operations",
		},
		[]string{"backend", "operation", "result"},
	)

	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artifact_store_duration_seconds",
			Help:    "Duration of artifact store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordQuery records one related-item query.
func RecordQuery(kind, result string, duration time.Duration) {
	QueriesTotal.WithLabelValues(kind, result).Inc()
	QueryDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordQueryCache records one lookup in the recommendations cache.
func RecordQueryCache(hit bool) {
	if hit {
		QueryCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	QueryCacheTotal.WithLabelValues("miss").Inc()
}

// RecordBuild records a finished index build.
func RecordBuild(duration time.Duration, err error) {
	IndexBuildDuration.Observe(duration.Seconds())
	if err != nil {
		IndexBuildsTotal.WithLabelValues("failure").Inc()
		return
	}
	IndexBuildsTotal.WithLabelValues("success").Inc()
	IndexLastBuild.Set(float64(time.Now().Unix()))
}

// RecordBuildSkipped counts a build that did not start because another
// was running.
func RecordBuildSkipped() {
	IndexBuildsTotal.WithLabelValues("skipped").Inc()
}

// SetIndexState updates gauges describing the serving index.
func SetIndexState(generation uint64, items int) {
	IndexGeneration.Set(float64(generation))
	IndexItems.Set(float64(items))
}

// SetIndexKind updates per-kind gauges of the serving index.
func SetIndexKind(kind string, events, edges int64) {
	IndexEvents.WithLabelValues(kind).Set(float64(events))
	IndexEdges.WithLabelValues(kind).Set(float64(edges))
}

// RecordEventsLoaded records a source load and the records it skipped.
func RecordEventsLoaded(loaded int, skipped map[string]int) {
	EventsLoaded.Add(float64(loaded))
	for eventType, n := range skipped {
		EventsSkipped.WithLabelValues(eventType).Add(float64(n))
	}
}

// RecordStoreOperation records an artifact store call.
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	StoreOperations.WithLabelValues(backend, operation, result).Inc()
	StoreDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
