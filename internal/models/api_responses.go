// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package models defines the JSON bodies of the HTTP API.
package models

import (
	"time"

	"github.com/tomtom215/item2item/internal/recommend"
)

// APIResponse is the envelope of every API response.
//
// Successful response:
//
//	{
//	  "status": "success",
//	  "data": {"item_id": "355908", "kind": "view", "k": 2, "neighbors": [...]},
//	  "metadata": {"timestamp": "2026-01-05T12:00:00Z", "query_time_ms": 0}
//	}
//
// Error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "K must be at least 0"},
//	  "metadata": {"timestamp": "2026-01-05T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how the response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`

	// Generation of the index that answered, when one was consulted.
	Generation uint64 `json:"generation,omitempty"`
}

// APIError carries a machine-readable code and a message.
//
// Codes: VALIDATION_ERROR, INVALID_ARGUMENT, NOT_FOUND, REBUILD_IN_PROGRESS,
// REBUILD_UNAVAILABLE, REBUILD_FAILED, INVALID_EVENT, RATE_LIMIT_EXCEEDED,
// INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status     string    `json:"status"`
	Generation uint64    `json:"generation"`
	Items      int       `json:"items"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
}

// RelatedResponse is returned by GET /api/v1/items/{itemID}/related.
type RelatedResponse struct {
	ItemID    string               `json:"item_id"`
	Kind      recommend.Kind       `json:"kind"`
	K         int                  `json:"k"`
	Neighbors []recommend.Neighbor `json:"neighbors"`
}

// RecommendationsResponse is returned by
// GET /api/v1/items/{itemID}/recommendations. Available reports whether the
// item is known to the index at all.
type RecommendationsResponse struct {
	ItemID          string             `json:"item_id"`
	K               int                `json:"k"`
	Recommendations []recommend.Scored `json:"recommendations"`
	Available       bool               `json:"available"`
}

// RebuildResponse is returned by POST /api/v1/index/rebuild.
type RebuildResponse struct {
	RunID      string          `json:"run_id"`
	Version    int             `json:"version"`
	Generation uint64          `json:"generation"`
	DurationMS int64           `json:"duration_ms"`
	Stats      recommend.Stats `json:"stats"`
	Skipped    map[string]int  `json:"skipped,omitempty"`
}

// IndexStatsResponse is returned by GET /api/v1/index/stats.
type IndexStatsResponse struct {
	Generation uint64          `json:"generation"`
	BuiltAt    time.Time       `json:"built_at,omitempty"`
	Stats      recommend.Stats `json:"stats"`
}
