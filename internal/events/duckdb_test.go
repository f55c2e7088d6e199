// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package events

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDuckDBSource_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(retailRocketSample), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := DuckDBSource{Path: path}.Records(context.Background())
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	// ordered by visitor, then timestamp
	wantVisitors := []string{"111016", "257597", "992329", "992329"}
	for i, v := range wantVisitors {
		if got[i].VisitorID != v {
			t.Errorf("record[%d].VisitorID = %q, want %q", i, got[i].VisitorID, v)
		}
	}
	if got[2].Event != TypeTransaction || got[2].TransactionID != "4000" {
		t.Errorf("record[2] = %+v, want the transaction first for visitor 992329", got[2])
	}
	if got[3].TransactionID != "" {
		t.Errorf("view transaction id = %q, want empty", got[3].TransactionID)
	}
}

func TestDuckDBSource_Since(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(retailRocketSample), 0o600); err != nil {
		t.Fatal(err)
	}

	src := DuckDBSource{Path: path, Since: time.UnixMilli(1433222000000)}
	got, err := src.Records(context.Background())
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestDuckDBSource_Query(t *testing.T) {
	tests := []struct {
		name    string
		src     DuckDBSource
		want    string
		wantErr bool
	}{
		{"csv by extension", DuckDBSource{Path: "a.csv"}, "read_csv_auto('a.csv'", false},
		{"parquet by extension", DuckDBSource{Path: "a.parquet"}, "read_parquet('a.parquet')", false},
		{"explicit format", DuckDBSource{Path: "data", Format: "parquet"}, "read_parquet('data')", false},
		{"quote escaped", DuckDBSource{Path: "it's.csv"}, "'it''s.csv'", false},
		{"no path", DuckDBSource{}, "", true},
		{"bad format", DuckDBSource{Path: "a", Format: "json"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _, err := tt.src.query()
			if (err != nil) != tt.wantErr {
				t.Fatalf("query() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(q, tt.want) {
				t.Errorf("query() = %q, want substring %q", q, tt.want)
			}
		})
	}
}
