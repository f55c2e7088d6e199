// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package storage persists versioned index snapshots.
//
// Every backend stores the same artifact encoding: the snapshot is gob
// encoded, checksummed with SHA-256 and gzip compressed. Metadata travels
// with the artifact so a loaded snapshot can be verified before it is
// turned back into an index.
//
// # Backends
//
//   - Store: local directory, one {name}_v{version}.gob.gz file per version
//   - BadgerStore: embedded BadgerDB, for single-node deployments that
//     already keep state in Badger
//   - S3Store: S3 or an S3-compatible object store, behind a circuit breaker
//
// # Versions
//
// Versions start at 1 and increase by one per Save. Load with version 0
// returns the latest version.
//
// # Thread Safety
//
// All backends are safe for concurrent use.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/item2item/internal/metrics"
	"github.com/tomtom215/item2item/internal/recommend"
)

// ErrNotFound is returned when no artifact matches the name and version.
var ErrNotFound = errors.New("artifact not found")

// Metadata describes one stored artifact.
type Metadata struct {
	// Name is the artifact name, e.g. "item2item".
	Name string `json:"name"`

	// Version increases by one per save.
	Version int `json:"version"`

	// BuiltAt is when the index was aggregated.
	BuiltAt time.Time `json:"built_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// Stats are the aggregation statistics of the stored index.
	Stats recommend.Stats `json:"stats"`

	// RunID links the artifact to its tracking run, when one exists.
	RunID string `json:"run_id,omitempty"`

	// BuildDurationMS is how long the build took.
	BuildDurationMS int64 `json:"build_duration_ms"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// Repository is implemented by every backend.
type Repository interface {
	// Save stores snap as the next version of name and returns the
	// completed metadata.
	Save(ctx context.Context, name string, snap *recommend.Snapshot, meta Metadata) (Metadata, error)

	// Load returns a version of name; version 0 means latest.
	Load(ctx context.Context, name string, version int) (*recommend.Snapshot, Metadata, error)

	// LatestVersion returns the newest version of name.
	LatestVersion(ctx context.Context, name string) (int, bool, error)

	// List returns the metadata of the latest version of every artifact.
	List(ctx context.Context) ([]Metadata, error)

	// Delete removes one version.
	Delete(ctx context.Context, name string, version int) error

	// Prune keeps the newest keep versions of name and deletes the rest.
	Prune(ctx context.Context, name string, keep int) error

	Close() error
}

// LoadIndex loads a version of name and rebuilds the index from it.
func LoadIndex(ctx context.Context, repo Repository, name string, version int) (*recommend.Index, Metadata, error) {
	snap, meta, err := repo.Load(ctx, name, version)
	if err != nil {
		return nil, Metadata{}, err
	}
	idx, err := recommend.FromSnapshot(snap)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%s v%d: %w", name, meta.Version, err)
	}
	return idx, meta, nil
}

// storedFile is the encoded form of one artifact.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// validateName rejects names that cannot be embedded in file names, keys
// or object keys.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("artifact name is required")
	}
	if strings.ContainsAny(name, `/\: `) || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}

// compressPayload serializes snap into the checksummed gzip payload and
// fills the checksum and size fields of meta.
//
//nolint:gocritic // meta is copied and completed
func compressPayload(snap *recommend.Snapshot, meta Metadata) ([]byte, Metadata, error) {
	if snap == nil {
		return nil, Metadata{}, fmt.Errorf("encode artifact: nil snapshot")
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(snap); err != nil {
		return nil, Metadata{}, fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())
	meta.Checksum = hex.EncodeToString(sum[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, Metadata{}, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = snap.BuiltAt
	}
	if meta.Stats == (recommend.Stats{}) {
		meta.Stats = snap.Stats
	}
	return compressed.Bytes(), meta, nil
}

// encodeArtifact wraps the payload and its metadata into one gob stream.
//
//nolint:gocritic // meta is copied and completed
func encodeArtifact(snap *recommend.Snapshot, meta Metadata) ([]byte, Metadata, error) {
	payload, meta, err := compressPayload(snap, meta)
	if err != nil {
		return nil, Metadata{}, err
	}
	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(storedFile{Metadata: meta, CompressedData: payload}); err != nil {
		return nil, Metadata{}, fmt.Errorf("encode artifact: %w", err)
	}
	return out.Bytes(), meta, nil
}

// decodeArtifact reverses encodeArtifact, verifying the checksum.
func decodeArtifact(r io.Reader) (*recommend.Snapshot, Metadata, error) {
	var sf storedFile
	if err := gob.NewDecoder(r).Decode(&sf); err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: read artifact: %v", recommend.ErrCorruptIndex, err)
	}
	return decodePayload(sf.CompressedData, sf.Metadata)
}

// decodePayload decompresses and verifies a payload against meta.
//
//nolint:gocritic // meta is returned by value
func decodePayload(compressed []byte, meta Metadata) (*recommend.Snapshot, Metadata, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: decompress: %v", recommend.ErrCorruptIndex, err)
	}
	defer func() { _ = gzr.Close() }()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: decompress: %v", recommend.ErrCorruptIndex, err)
	}

	sum := sha256.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != meta.Checksum {
		return nil, Metadata{}, fmt.Errorf("%w: checksum mismatch: expected %s, got %s", recommend.ErrCorruptIndex, meta.Checksum, got)
	}

	var snap recommend.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: decode snapshot: %v", recommend.ErrCorruptIndex, err)
	}
	return &snap, meta, nil
}

// observe records a store operation on the backend's metrics.
func observe(backend, op string, start time.Time, err error) {
	metrics.RecordStoreOperation(backend, op, time.Since(start), err)
}
