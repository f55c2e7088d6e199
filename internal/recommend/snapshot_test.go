// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDecodeJSON(t *testing.T) {
	events := append(scenarioEvents(), buy("1", "t1", "A"), buy("1", "t1", "C"))
	idx := mustAggregate(t, events)

	var buf bytes.Buffer
	if err := EncodeJSON(&buf, idx); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}

	decoded, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	if decoded.Stats() != idx.Stats() {
		t.Errorf("Stats() = %+v, want %+v", decoded.Stats(), idx.Stats())
	}
	if !decoded.BuiltAt().Equal(idx.BuiltAt()) {
		t.Errorf("BuiltAt() = %v, want %v", decoded.BuiltAt(), idx.BuiltAt())
	}
	for _, id := range idx.Items() {
		for _, kind := range Kinds() {
			want, _ := Query(idx, id, kind, 100)
			got, _ := Query(decoded, id, kind, 100)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Query(%s, %s) after decode = %v, want %v", id, kind, got, want)
			}
			if decoded.Occurrences(id, kind) != idx.Occurrences(id, kind) {
				t.Errorf("Occurrences(%s, %s) = %d, want %d", id, kind,
					decoded.Occurrences(id, kind), idx.Occurrences(id, kind))
			}
		}
	}
}

func TestFromSnapshot_SortsNeighbors(t *testing.T) {
	snap := &Snapshot{
		Format: SnapshotFormat,
		Items: map[string]ItemSnapshot{
			"A": {View: []Neighbor{{ItemID: "C", Weight: 1}, {ItemID: "B", Weight: 1}, {ItemID: "D", Weight: 3}}},
			"B": {View: []Neighbor{{ItemID: "A", Weight: 1}}},
			"C": {View: []Neighbor{{ItemID: "A", Weight: 1}}},
			"D": {View: []Neighbor{{ItemID: "A", Weight: 3}}},
		},
	}

	idx, err := FromSnapshot(snap)
	if err != nil {
		t.Fatalf("FromSnapshot() error = %v", err)
	}

	got, _ := Query(idx, "A", KindView, 3)
	want := []Neighbor{{ItemID: "D", Weight: 3}, {ItemID: "B", Weight: 1}, {ItemID: "C", Weight: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Query() = %v, want %v", got, want)
	}
	if idx.Stats().Edges.View != 3 {
		t.Errorf("Edges.View = %d, want 3", idx.Stats().Edges.View)
	}
}

func TestFromSnapshot_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
	}{
		{
			name: "nil",
			snap: nil,
		},
		{
			name: "unknown format",
			snap: &Snapshot{Format: 99},
		},
		{
			name: "self edge",
			snap: &Snapshot{Format: SnapshotFormat, Items: map[string]ItemSnapshot{
				"A": {View: []Neighbor{{ItemID: "A", Weight: 1}}},
			}},
		},
		{
			name: "zero weight",
			snap: &Snapshot{Format: SnapshotFormat, Items: map[string]ItemSnapshot{
				"A": {View: []Neighbor{{ItemID: "B", Weight: 0}}},
				"B": {View: []Neighbor{{ItemID: "A", Weight: 0}}},
			}},
		},
		{
			name: "asymmetric",
			snap: &Snapshot{Format: SnapshotFormat, Items: map[string]ItemSnapshot{
				"A": {Transaction: []Neighbor{{ItemID: "B", Weight: 2}}},
				"B": {Transaction: []Neighbor{{ItemID: "A", Weight: 1}}},
			}},
		},
		{
			name: "missing reverse edge",
			snap: &Snapshot{Format: SnapshotFormat, Items: map[string]ItemSnapshot{
				"A": {View: []Neighbor{{ItemID: "B", Weight: 1}}},
			}},
		},
		{
			name: "duplicate neighbor",
			snap: &Snapshot{Format: SnapshotFormat, Items: map[string]ItemSnapshot{
				"A": {View: []Neighbor{{ItemID: "B", Weight: 1}, {ItemID: "B", Weight: 1}}},
				"B": {View: []Neighbor{{ItemID: "A", Weight: 2}}},
			}},
		},
		{
			name: "negative count",
			snap: &Snapshot{Format: SnapshotFormat, Items: map[string]ItemSnapshot{
				"A": {ViewCount: -1},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromSnapshot(tt.snap); !errors.Is(err, ErrCorruptIndex) {
				t.Errorf("FromSnapshot() error = %v, want ErrCorruptIndex", err)
			}
		})
	}
}

func TestDecodeJSON_Garbage(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader("{not json"))
	if !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("DecodeJSON() error = %v, want ErrCorruptIndex", err)
	}
}

func TestSnapshot_EmptyIndex(t *testing.T) {
	snap := Empty().Snapshot()
	if snap.Format != SnapshotFormat {
		t.Errorf("Format = %d, want %d", snap.Format, SnapshotFormat)
	}
	if len(snap.Items) != 0 {
		t.Errorf("Items = %v, want empty", snap.Items)
	}

	idx, err := FromSnapshot(snap)
	if err != nil {
		t.Fatalf("FromSnapshot() error = %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
}
