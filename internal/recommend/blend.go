// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"fmt"
	"math"
	"slices"
)

// Weights are the per-kind multipliers used by Blend.
type Weights struct {
	View        float64 `json:"view_weight"`
	Transaction float64 `json:"buy_weight"`
}

// DefaultWeights weights a shared purchase three times a shared view.
func DefaultWeights() Weights {
	return Weights{View: 1.0, Transaction: 3.0}
}

func (w Weights) get(kind Kind) float64 {
	if kind == KindTransaction {
		return w.Transaction
	}
	return w.View
}

// CosineSimilarity normalizes a co-occurrence count by the occurrence
// counts of both items: count / sqrt(freqA * freqB). Non-positive inputs
// yield 0.
func CosineSimilarity(count, freqA, freqB int64) float64 {
	if count <= 0 || freqA <= 0 || freqB <= 0 {
		return 0
	}
	return float64(count) / math.Sqrt(float64(freqA)*float64(freqB))
}

// Blend scores every neighbor of itemID by its strongest kind:
//
//	score = max(w.View*cos_view, w.Transaction*cos_transaction)
//
// and returns the k best, ordered by score descending then item id
// ascending. Candidates with a non-positive score are dropped.
func Blend(idx *Index, itemID string, k int, w Weights) ([]Scored, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be >= 0, got %d", ErrInvalidArgument, k)
	}
	if k == 0 || idx == nil {
		return []Scored{}, nil
	}

	e, ok := idx.items[itemID]
	if !ok {
		return []Scored{}, nil
	}

	scores := make(map[string]float64)
	for _, kind := range Kinds() {
		weight := w.get(kind)
		if weight == 0 {
			continue
		}
		freqA := e.occurrences[kind]
		for _, n := range e.neighbors[kind] {
			other := idx.items[n.ItemID]
			if other == nil {
				continue
			}
			s := weight * CosineSimilarity(n.Weight, freqA, other.occurrences[kind])
			if s > scores[n.ItemID] {
				scores[n.ItemID] = s
			}
		}
	}

	out := make([]Scored, 0, len(scores))
	for id, s := range scores {
		if s > 0 {
			out = append(out, Scored{ItemID: id, Score: s})
		}
	}
	slices.SortFunc(out, compareScored)

	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}

// TopKMap blends every item of idx and returns item id -> the ids of its k
// best recommendations. Items without any positive score are omitted.
func TopKMap(idx *Index, k int, w Weights) (map[string][]string, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be >= 0, got %d", ErrInvalidArgument, k)
	}
	out := make(map[string][]string, idx.Len())
	for _, id := range idx.Items() {
		scored, err := Blend(idx, id, k, w)
		if err != nil {
			return nil, err
		}
		if len(scored) == 0 {
			continue
		}
		ids := make([]string, len(scored))
		for i, s := range scored {
			ids[i] = s.ItemID
		}
		out[id] = ids
	}
	return out, nil
}
