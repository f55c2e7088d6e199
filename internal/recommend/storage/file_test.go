// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/item2item/internal/recommend"
)

func TestParseArtifactFilename(t *testing.T) {
	tests := []struct {
		base        string
		wantName    string
		wantVersion int
	}{
		{"item2item_v1", "item2item", 1},
		{"item2item_v42", "item2item", 42},
		{"my_var_v3", "my_var", 3},
		{"a_v_v2", "a_v", 2},
		{"item2item", "", 0},
		{"item2item_vx", "", 0},
		{"item2item_v0", "", 0},
		{"_v1", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			name, version := parseArtifactFilename(tt.base)
			if name != tt.wantName || version != tt.wantVersion {
				t.Errorf("parseArtifactFilename(%q) = %q, %d; want %q, %d", tt.base, name, version, tt.wantName, tt.wantVersion)
			}
		})
	}
}

func TestStore_ScanOnOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	for range 3 {
		if _, err := s.Save(ctx, "item2item", testSnapshot(t), Metadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	// stray files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.gob.gz"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	v, ok, _ := reopened.LatestVersion(ctx, "item2item")
	if !ok || v != 3 {
		t.Errorf("LatestVersion() after reopen = %d, %v; want 3, true", v, ok)
	}
	if reopened.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", reopened.Dir(), dir)
	}
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := s.Save(context.Background(), "item2item", testSnapshot(t), Metadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "item2item_v1.gob.gz" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory = %v, want [item2item_v1.gob.gz]", names)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := s.Save(ctx, "item2item", testSnapshot(t), Metadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "item2item_v1.gob.gz"), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(ctx, "item2item", 1); !errors.Is(err, recommend.ErrCorruptIndex) {
		t.Errorf("Load() error = %v, want ErrCorruptIndex", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() = %v, want corrupt artifact skipped", list)
	}
}
