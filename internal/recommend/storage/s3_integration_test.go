// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

//go:build integration

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/item2item/internal/recommend"
	"github.com/tomtom215/item2item/internal/testinfra"
)

// Run with:
//
//	go test -tags integration -run TestS3Store ./internal/recommend/storage/...
func TestS3Store_MinIO(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	minio, err := testinfra.NewMinIOContainer(ctx)
	if err != nil {
		t.Fatalf("start minio: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, minio.Container)

	cfg := minio.S3Config("artifacts")
	cfg.CreateBucket = false
	if _, err := NewS3Store(ctx, cfg); err == nil {
		t.Fatal("NewS3Store() without bucket succeeded, want error")
	}

	cfg.CreateBucket = true
	store, err := NewS3Store(ctx, cfg)
	if err != nil {
		t.Fatalf("NewS3Store() error = %v", err)
	}
	// second construction finds the bucket
	if _, err := NewS3Store(ctx, cfg); err != nil {
		t.Fatalf("NewS3Store() on existing bucket error = %v", err)
	}

	snap := testSnapshot(t)
	for want := 1; want <= 3; want++ {
		meta, err := store.Save(ctx, "item2item", snap, Metadata{})
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if meta.Version != want {
			t.Errorf("version = %d, want %d", meta.Version, want)
		}
	}

	idx, meta, err := LoadIndex(ctx, store, "item2item", 0)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if meta.Version != 3 || idx.Weight("A", "B", recommend.KindView) != 2 {
		t.Errorf("loaded v%d with A-B = %d", meta.Version, idx.Weight("A", "B", recommend.KindView))
	}

	list, err := store.List(ctx)
	if err != nil || len(list) != 1 || list[0].Version != 3 {
		t.Errorf("List() = %+v, %v", list, err)
	}

	if err := store.Prune(ctx, "item2item", 1); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if _, _, err := store.Load(ctx, "item2item", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(v1) after prune error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "item2item", 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(pruned) error = %v, want ErrNotFound", err)
	}

	local := filepath.Join(t.TempDir(), "topk.json")
	if err := os.WriteFile(local, []byte(`{"A":["B"]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	uri, err := store.PutFile(ctx, local)
	if err != nil {
		t.Fatalf("PutFile() error = %v", err)
	}
	if uri != "s3://artifacts/retailrocket-item2item/topk.json" {
		t.Errorf("PutFile() uri = %q", uri)
	}
	data, err := store.get(ctx, "retailrocket-item2item/topk.json")
	if err != nil || string(data) != `{"A":["B"]}` {
		t.Errorf("uploaded content = %q, %v", data, err)
	}
}
