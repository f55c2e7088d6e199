// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"cmp"
	"slices"
)

// CompareNeighbors orders neighbors by weight descending, then item id
// ascending. Every path that materializes a neighbor list sorts with it.
func CompareNeighbors(a, b Neighbor) int {
	if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
		return c
	}
	return cmp.Compare(a.ItemID, b.ItemID)
}

// SortNeighbors sorts ns in place with CompareNeighbors.
func SortNeighbors(ns []Neighbor) {
	slices.SortFunc(ns, CompareNeighbors)
}

// compareScored applies the same rule to blended scores.
func compareScored(a, b Scored) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.ItemID, b.ItemID)
}
