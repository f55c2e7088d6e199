// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

// KindCounts holds one counter per kind.
type KindCounts struct {
	View        int64 `json:"view"`
	Transaction int64 `json:"transaction"`
}

// Get returns the counter for kind.
func (c KindCounts) Get(kind Kind) int64 {
	switch kind {
	case KindView:
		return c.View
	case KindTransaction:
		return c.Transaction
	default:
		return 0
	}
}

func (c *KindCounts) add(kind Kind, n int64) {
	c.set(kind, c.Get(kind)+n)
}

func (c *KindCounts) set(kind Kind, n int64) {
	switch kind {
	case KindView:
		c.View = n
	case KindTransaction:
		c.Transaction = n
	}
}

// Stats summarizes one aggregation run.
type Stats struct {
	// Events is the number of records aggregated.
	Events int64 `json:"events"`

	// EventsByKind splits Events by kind.
	EventsByKind KindCounts `json:"events_by_kind"`

	// Groups is the number of sessions (view) and baskets (transaction).
	Groups KindCounts `json:"groups"`

	// Edges is the number of undirected item pairs per kind.
	Edges KindCounts `json:"edges"`

	// Items is the number of distinct items in the index.
	Items int `json:"items"`
}
