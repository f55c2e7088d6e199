// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"slices"
	"time"
)

// Index is an immutable item-to-item co-occurrence index.
type Index struct {
	items   map[string]*entry
	stats   Stats
	builtAt time.Time
}

// entry holds the per-kind data of one item.
type entry struct {
	neighbors   [numKinds][]Neighbor
	occurrences [numKinds]int64
}

// materialize turns weight maps into sorted neighbor lists.
func materialize(weights [numKinds]map[string]map[string]int64, occurrences [numKinds]map[string]int64, stats Stats, builtAt time.Time) *Index {
	items := make(map[string]*entry)
	get := func(id string) *entry {
		e := items[id]
		if e == nil {
			e = &entry{}
			items[id] = e
		}
		return e
	}

	for _, kind := range Kinds() {
		var directed int64
		for id, row := range weights[kind] {
			list := make([]Neighbor, 0, len(row))
			for other, w := range row {
				list = append(list, Neighbor{ItemID: other, Weight: w})
			}
			SortNeighbors(list)
			get(id).neighbors[kind] = list
			directed += int64(len(list))
		}
		for id, n := range occurrences[kind] {
			get(id).occurrences[kind] = n
		}
		stats.Edges.set(kind, directed/2)
	}

	stats.Items = len(items)

	return &Index{
		items:   items,
		stats:   stats,
		builtAt: builtAt,
	}
}

// Empty returns an Index with no items.
func Empty() *Index {
	return &Index{items: map[string]*entry{}}
}

// Len returns the number of items present in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.items)
}

// Contains reports whether the item was seen during aggregation.
func (idx *Index) Contains(itemID string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.items[itemID]
	return ok
}

// Items returns all item ids in ascending order.
func (idx *Index) Items() []string {
	if idx == nil {
		return nil
	}
	ids := make([]string, 0, len(idx.items))
	for id := range idx.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Weight returns the co-occurrence weight of a→b for kind, or 0.
func (idx *Index) Weight(a, b string, kind Kind) int64 {
	if idx == nil || !kind.Valid() {
		return 0
	}
	e, ok := idx.items[a]
	if !ok {
		return 0
	}
	for _, n := range e.neighbors[kind] {
		if n.ItemID == b {
			return n.Weight
		}
	}
	return 0
}

// Occurrences returns how many groups of kind the item appeared in.
func (idx *Index) Occurrences(itemID string, kind Kind) int64 {
	if idx == nil || !kind.Valid() {
		return 0
	}
	if e, ok := idx.items[itemID]; ok {
		return e.occurrences[kind]
	}
	return 0
}

// Stats returns the aggregation summary.
func (idx *Index) Stats() Stats {
	if idx == nil {
		return Stats{}
	}
	return idx.stats
}

// BuiltAt returns when the index was materialized.
func (idx *Index) BuiltAt() time.Time {
	if idx == nil {
		return time.Time{}
	}
	return idx.builtAt
}
