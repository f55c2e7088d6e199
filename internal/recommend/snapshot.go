// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/goccy/go-json"
)

// SnapshotFormat is the current snapshot format version.
const SnapshotFormat = 1

// Snapshot is the portable record form of an Index.
type Snapshot struct {
	Format  int                     `json:"format"`
	BuiltAt time.Time               `json:"built_at"`
	Stats   Stats                   `json:"stats"`
	Items   map[string]ItemSnapshot `json:"items"`
}

// ItemSnapshot holds one item's neighbor lists and occurrence counts.
type ItemSnapshot struct {
	View             []Neighbor `json:"view,omitempty"`
	Transaction      []Neighbor `json:"transaction,omitempty"`
	ViewCount        int64      `json:"view_count,omitempty"`
	TransactionCount int64      `json:"transaction_count,omitempty"`
}

func (s *ItemSnapshot) neighbors(kind Kind) []Neighbor {
	if kind == KindTransaction {
		return s.Transaction
	}
	return s.View
}

func (s *ItemSnapshot) count(kind Kind) int64 {
	if kind == KindTransaction {
		return s.TransactionCount
	}
	return s.ViewCount
}

// Snapshot copies the index into its portable form.
func (idx *Index) Snapshot() *Snapshot {
	snap := &Snapshot{
		Format:  SnapshotFormat,
		BuiltAt: idx.BuiltAt(),
		Stats:   idx.Stats(),
		Items:   make(map[string]ItemSnapshot, idx.Len()),
	}
	if idx == nil {
		return snap
	}

	for id, e := range idx.items {
		snap.Items[id] = ItemSnapshot{
			View:             slices.Clone(e.neighbors[KindView]),
			Transaction:      slices.Clone(e.neighbors[KindTransaction]),
			ViewCount:        e.occurrences[KindView],
			TransactionCount: e.occurrences[KindTransaction],
		}
	}
	return snap
}

// FromSnapshot rebuilds an Index from its portable form. Neighbor lists are
// re-sorted with CompareNeighbors and edge counts are recomputed. It fails
// with ErrCorruptIndex when the snapshot breaks an index invariant: self
// edges, non-positive weights, duplicate neighbors or asymmetric weights.
func FromSnapshot(snap *Snapshot) (*Index, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrCorruptIndex)
	}
	if snap.Format != SnapshotFormat {
		return nil, fmt.Errorf("%w: unsupported format %d", ErrCorruptIndex, snap.Format)
	}

	var weights [numKinds]map[string]map[string]int64
	var occurrences [numKinds]map[string]int64

	for _, kind := range Kinds() {
		w := make(map[string]map[string]int64)
		occ := make(map[string]int64)

		for id, item := range snap.Items {
			if id == "" {
				return nil, fmt.Errorf("%w: empty item id", ErrCorruptIndex)
			}
			if c := item.count(kind); c != 0 {
				if c < 0 {
					return nil, fmt.Errorf("%w: negative %s count for %q", ErrCorruptIndex, kind, id)
				}
				occ[id] = c
			}

			for _, n := range item.neighbors(kind) {
				switch {
				case n.ItemID == "":
					return nil, fmt.Errorf("%w: empty neighbor id under %q", ErrCorruptIndex, id)
				case n.ItemID == id:
					return nil, fmt.Errorf("%w: self edge on %q", ErrCorruptIndex, id)
				case n.Weight <= 0:
					return nil, fmt.Errorf("%w: non-positive weight %q->%q", ErrCorruptIndex, id, n.ItemID)
				}
				if _, dup := w[id][n.ItemID]; dup {
					return nil, fmt.Errorf("%w: duplicate neighbor %q->%q", ErrCorruptIndex, id, n.ItemID)
				}
				addWeight(w, id, n.ItemID, n.Weight)
			}
		}

		for a, row := range w {
			for b, n := range row {
				if w[b][a] != n {
					return nil, fmt.Errorf("%w: asymmetric %s weight %q<->%q", ErrCorruptIndex, kind, a, b)
				}
			}
		}

		weights[kind] = w
		occurrences[kind] = occ
	}

	idx := materialize(weights, occurrences, snap.Stats, snap.BuiltAt)

	// Items that only carried counts still exist; materialize saw them
	// through occurrences. Items with neither are kept as well.
	for id := range snap.Items {
		if _, ok := idx.items[id]; !ok {
			idx.items[id] = &entry{}
		}
	}
	idx.stats.Items = len(idx.items)

	return idx, nil
}

// EncodeJSON writes the index snapshot to w as JSON.
func EncodeJSON(w io.Writer, idx *Index) error {
	if err := json.NewEncoder(w).Encode(idx.Snapshot()); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

// DecodeJSON reads a JSON snapshot from r and rebuilds the index.
func DecodeJSON(r io.Reader) (*Index, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCorruptIndex, err)
	}
	return FromSnapshot(&snap)
}
