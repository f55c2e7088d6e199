// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package eval measures offline recommendation quality with hit@k.
//
// Every group (a view session or a purchase basket) with at least two
// distinct items becomes one test case: the smallest item is the query and
// the remaining items are the targets. Ids that both parse as integers
// compare numerically, so "9" precedes "10"; anything else compares as a
// string. A case is a hit at k when any target appears in the first k
// recommendations for the query.
package eval

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/tomtom215/item2item/internal/recommend"
)

// DefaultKs are the cutoffs reported when none are given.
var DefaultKs = []int{10, 20, 50}

// Group is the distinct item set of one session or basket, sorted with
// CompareItemIDs.
type Group struct {
	Key   string
	Items []string
}

// RecommendFunc returns up to k recommended item ids for itemID.
type RecommendFunc func(itemID string, k int) ([]string, error)

// Options controls Evaluate.
type Options struct {
	// Ks are the cutoffs to report. Empty means DefaultKs.
	Ks []int

	// MaxGroups stops after this many groups have been seen. Zero means
	// no limit.
	MaxGroups int
}

// Metrics is the outcome of one evaluation.
type Metrics struct {
	GroupsSeen    int             `json:"groups_seen"`
	Tested        int             `json:"total_tested"`
	SkippedSmall  int             `json:"skipped_small"`
	SkippedNoRecs int             `json:"skipped_no_recs"`
	Hits          map[int]int     `json:"hits"`
	HitRate       map[int]float64 `json:"hit_rate"`
}

// HitAtK returns 1 when any target is among the first k recommendations.
func HitAtK(recs, targets []string, k int) int {
	if k <= 0 || len(recs) == 0 || len(targets) == 0 {
		return 0
	}
	if k < len(recs) {
		recs = recs[:k]
	}
	for _, t := range targets {
		if slices.Contains(recs, t) {
			return 1
		}
	}
	return 0
}

// CompareItemIDs orders two item ids numerically when both are integers and
// lexicographically otherwise. Integers sort before other ids.
func CompareItemIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

// Groups collects the events of one kind into groups: sessions for views
// and transaction ids for purchases. Groups keep the order in which their
// key first appears in events, so MaxGroups takes the earliest ones.
func Groups(events []recommend.Event, kind recommend.Kind) []Group {
	sets := make(map[string]map[string]struct{})
	var order []string
	for i := range events {
		e := &events[i]
		if e.Kind != kind || e.ItemID == "" {
			continue
		}
		key := e.SessionID
		if kind == recommend.KindTransaction {
			key = e.TransactionID
		}
		if key == "" {
			continue
		}
		set, ok := sets[key]
		if !ok {
			set = make(map[string]struct{})
			sets[key] = set
			order = append(order, key)
		}
		set[e.ItemID] = struct{}{}
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		set := sets[key]
		items := make([]string, 0, len(set))
		for id := range set {
			items = append(items, id)
		}
		slices.SortFunc(items, CompareItemIDs)
		out = append(out, Group{Key: key, Items: items})
	}
	return out
}

// Evaluate runs hit@k over groups in order. Group items must be distinct
// and sorted, as Groups returns them.
func Evaluate(ctx context.Context, rec RecommendFunc, groups []Group, opts Options) (Metrics, error) {
	ks := opts.Ks
	if len(ks) == 0 {
		ks = DefaultKs
	}
	maxK := slices.Max(ks)

	m := Metrics{
		Hits:    make(map[int]int, len(ks)),
		HitRate: make(map[int]float64, len(ks)),
	}
	for _, k := range ks {
		m.Hits[k] = 0
	}

	for i := range groups {
		if opts.MaxGroups > 0 && m.GroupsSeen >= opts.MaxGroups {
			break
		}
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return Metrics{}, err
			}
		}
		m.GroupsSeen++

		items := groups[i].Items
		if len(items) < 2 {
			m.SkippedSmall++
			continue
		}

		recs, err := rec(items[0], maxK)
		if err != nil {
			return Metrics{}, fmt.Errorf("recommend %q: %w", items[0], err)
		}
		if len(recs) == 0 {
			m.SkippedNoRecs++
			continue
		}

		m.Tested++
		targets := items[1:]
		for _, k := range ks {
			m.Hits[k] += HitAtK(recs, targets, k)
		}
	}

	for _, k := range ks {
		if m.Tested > 0 {
			m.HitRate[k] = float64(m.Hits[k]) / float64(m.Tested)
		} else {
			m.HitRate[k] = 0
		}
	}
	return m, nil
}

// BlendRecommender recommends with recommend.Blend over idx.
func BlendRecommender(idx *recommend.Index, w recommend.Weights) RecommendFunc {
	return func(itemID string, k int) ([]string, error) {
		scored, err := recommend.Blend(idx, itemID, k, w)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(scored))
		for i, s := range scored {
			ids[i] = s.ItemID
		}
		return ids, nil
	}
}

// KindRecommender recommends with recommend.Query over one kind.
func KindRecommender(idx *recommend.Index, kind recommend.Kind) RecommendFunc {
	return func(itemID string, k int) ([]string, error) {
		neighbors, err := recommend.Query(idx, itemID, kind, k)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(neighbors))
		for i, n := range neighbors {
			ids[i] = n.ItemID
		}
		return ids, nil
	}
}

// MapRecommender serves precomputed lists such as a TopKMap export.
func MapRecommender(topk map[string][]string) RecommendFunc {
	return func(itemID string, k int) ([]string, error) {
		recs := topk[itemID]
		if k < len(recs) {
			recs = recs[:k]
		}
		return recs, nil
	}
}
