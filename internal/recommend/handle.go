// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import "sync/atomic"

// Handle owns the index currently served to queries.
//
// Callers create a Handle and pass it to whatever serves queries. Publish
// replaces the index atomically: queries that already loaded the previous
// index finish against it, new queries see the replacement.
type Handle struct {
	current    atomic.Pointer[Index]
	generation atomic.Uint64
}

// NewHandle creates a handle serving idx. A nil idx serves an empty index.
func NewHandle(idx *Index) *Handle {
	h := &Handle{}
	if idx == nil {
		idx = Empty()
	}
	h.current.Store(idx)
	return h
}

// Current returns the published index. It is nil only on a zero Handle that
// has never been published to; Query treats nil as empty.
func (h *Handle) Current() *Index {
	return h.current.Load()
}

// Publish makes idx visible to new queries and returns the index it
// replaced. A nil idx publishes an empty index.
func (h *Handle) Publish(idx *Index) *Index {
	if idx == nil {
		idx = Empty()
	}
	prev := h.current.Swap(idx)
	h.generation.Add(1)
	return prev
}

// Generation counts how many times Publish has been called.
func (h *Handle) Generation() uint64 {
	return h.generation.Load()
}

// Related queries the current index. See Query.
func (h *Handle) Related(itemID string, kind Kind, k int) ([]Neighbor, error) {
	return Query(h.Current(), itemID, kind, k)
}

// Recommend blends both kinds on the current index. See Blend.
func (h *Handle) Recommend(itemID string, k int, w Weights) ([]Scored, error) {
	return Blend(h.Current(), itemID, k, w)
}
