// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

//go:build integration

// Package testinfra starts throwaway containers for integration tests.
//
// # MinIO Container
//
// MinIOContainer runs an S3-compatible server so the S3 artifact store can
// be exercised against a real API:
//
//	func TestS3Store(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    minio, err := testinfra.NewMinIOContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, minio.Container)
//
//	    cfg := minio.S3Config("artifacts")
//	    store, err := storage.NewS3Store(ctx, cfg)
//	    // ...
//	}
//
// # Running
//
// The helpers only build with the integration tag:
//
//	go test -tags integration ./internal/recommend/storage/...
//
// Tests call SkipIfNoDocker so they skip instead of failing on machines
// without a Docker daemon.
package testinfra
