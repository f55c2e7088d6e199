// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"context"
	"slices"
	"time"
)

// Builder accumulates events and materializes an Index.
//
// A Builder is not safe for concurrent use. Once Add has rejected a record
// the Builder is poisoned and Build returns the same error, so a batch is
// never published with records silently dropped.
type Builder struct {
	// groups[kind][groupKey] is the set of distinct items seen in that
	// group. Repeated records of an item add nothing to its pairs.
	groups [numKinds]map[string]map[string]struct{}

	events [numKinds]int64
	pos    int
	err    error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	b := &Builder{}
	for _, k := range Kinds() {
		b.groups[k] = make(map[string]map[string]struct{})
	}
	return b
}

// Add validates one event and folds it into its group.
func (b *Builder) Add(e Event) error {
	if b.err != nil {
		return b.err
	}

	pos := b.pos
	b.pos++

	if err := validateEvent(&e, pos); err != nil {
		b.err = err
		return err
	}

	key := e.groupKey()
	group := b.groups[e.Kind][key]
	if group == nil {
		group = make(map[string]struct{})
		b.groups[e.Kind][key] = group
	}
	group[e.ItemID] = struct{}{}
	b.events[e.Kind]++

	return nil
}

// Err returns the error that poisoned the Builder, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build materializes the accumulated events into an Index. The Builder may
// keep receiving events afterwards; later Builds include them.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	if b.err != nil {
		return nil, b.err
	}

	var stats Stats
	weights := [numKinds]map[string]map[string]int64{}
	occurrences := [numKinds]map[string]int64{}

	for _, kind := range Kinds() {
		w := make(map[string]map[string]int64)
		occ := make(map[string]int64)

		for _, items := range b.groups[kind] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			stats.Groups.add(kind, 1)

			// An item occurs once per group it appears in.
			for id := range items {
				occ[id]++
			}
			if len(items) < 2 {
				continue
			}

			// Sorted ids keep the accumulation order independent of map
			// iteration.
			ids := make([]string, 0, len(items))
			for id := range items {
				ids = append(ids, id)
			}
			slices.Sort(ids)

			for i := 0; i < len(ids); i++ {
				a := ids[i]
				for j := i + 1; j < len(ids); j++ {
					c := ids[j]
					addWeight(w, a, c, 1)
					addWeight(w, c, a, 1)
				}
			}
		}

		weights[kind] = w
		occurrences[kind] = occ
		stats.EventsByKind.add(kind, b.events[kind])
		stats.Events += b.events[kind]
	}

	return materialize(weights, occurrences, stats, time.Now().UTC()), nil
}

func addWeight(w map[string]map[string]int64, from, to string, n int64) {
	row := w[from]
	if row == nil {
		row = make(map[string]int64)
		w[from] = row
	}
	row[to] += n
}

// Aggregate folds a batch of events into an Index. It fails with an error
// wrapping ErrInvalidEvent on the first malformed record.
func Aggregate(ctx context.Context, events []Event) (*Index, error) {
	b := NewBuilder()
	for i := range events {
		if err := b.Add(events[i]); err != nil {
			return nil, err
		}
	}
	return b.Build(ctx)
}
