// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"errors"
	"reflect"
	"testing"
)

func TestQuery(t *testing.T) {
	idx := mustAggregate(t, scenarioEvents())

	tests := []struct {
		name    string
		idx     *Index
		item    string
		kind    Kind
		k       int
		want    []Neighbor
		wantErr error
	}{
		{
			name: "top 1",
			idx:  idx, item: "A", kind: KindView, k: 1,
			want: []Neighbor{{ItemID: "B", Weight: 2}},
		},
		{
			name: "k larger than list",
			idx:  idx, item: "C", kind: KindView, k: 10,
			want: []Neighbor{{ItemID: "A", Weight: 1}, {ItemID: "B", Weight: 1}},
		},
		{
			name: "k zero",
			idx:  idx, item: "A", kind: KindView, k: 0,
			want: []Neighbor{},
		},
		{
			name: "unknown item",
			idx:  idx, item: "nonexistent-item", kind: KindView, k: 5,
			want: []Neighbor{},
		},
		{
			name: "kind without edges",
			idx:  idx, item: "A", kind: KindTransaction, k: 5,
			want: []Neighbor{},
		},
		{
			name: "nil index",
			idx:  nil, item: "A", kind: KindView, k: 5,
			want: []Neighbor{},
		},
		{
			name: "negative k",
			idx:  idx, item: "A", kind: KindView, k: -1,
			wantErr: ErrInvalidArgument,
		},
		{
			name: "unknown kind",
			idx:  idx, item: "A", kind: Kind(7), k: 1,
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Query(tt.idx, tt.item, tt.kind, tt.k)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Query() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got == nil {
				t.Fatal("Query() returned nil slice, want non-nil")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_TieBreakByItemID(t *testing.T) {
	idx := mustAggregate(t, []Event{
		view("s", "X"), view("s", "d"), view("s", "b"), view("s", "c"), view("s", "a"),
	})

	got, err := Query(idx, "X", KindView, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	wantOrder := []string{"a", "b", "c", "d"}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ItemID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ItemID, id)
		}
	}
}

func TestQuery_Deterministic(t *testing.T) {
	idx := mustAggregate(t, []Event{
		view("1", "A"), view("1", "B"), view("1", "C"), view("1", "D"),
		view("2", "A"), view("2", "C"),
		view("3", "A"), view("3", "D"),
	})

	first, err := Query(idx, "A", KindView, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	for i := 0; i < 50; i++ {
		got, err := Query(idx, "A", KindView, 3)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d = %v, want %v", i, got, first)
		}
	}
}

func TestQuery_ResultIsACopy(t *testing.T) {
	idx := mustAggregate(t, scenarioEvents())

	got, err := Query(idx, "A", KindView, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	got[0] = Neighbor{ItemID: "Z", Weight: 99}

	again, err := Query(idx, "A", KindView, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if again[0].ItemID != "B" {
		t.Errorf("index was mutated through a query result: %v", again)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"view", KindView, false},
		{" VIEW ", KindView, false},
		{"transaction", KindTransaction, false},
		{"buy", KindTransaction, false},
		{"purchase", KindTransaction, false},
		{"addtocart", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("ParseKind(%q) error = %v, want ErrInvalidArgument", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
