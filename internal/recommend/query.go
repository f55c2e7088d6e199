// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import "fmt"

// Query returns the k highest weighted neighbors of itemID for kind.
//
// Unknown items and k == 0 yield an empty, non-nil slice. A nil index is
// treated as empty. The returned slice is a copy and may be modified.
func Query(idx *Index, itemID string, kind Kind, k int) ([]Neighbor, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be >= 0, got %d", ErrInvalidArgument, k)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidArgument, kind)
	}
	if k == 0 || idx == nil {
		return []Neighbor{}, nil
	}

	e, ok := idx.items[itemID]
	if !ok {
		return []Neighbor{}, nil
	}

	list := e.neighbors[kind]
	if k > len(list) {
		k = len(list)
	}

	out := make([]Neighbor, k)
	copy(out, list[:k])
	return out, nil
}
