// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/item2item/internal/recommend"
)

const (
	backendFile    = "file"
	artifactExt    = ".gob.gz"
	tempFilePrefix = ".tmp-"
)

// Store keeps artifacts as files in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// versions lists the stored versions of each name in ascending order.
	versions map[string][]int
}

// NewStore creates the directory if needed and indexes existing artifacts.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string][]int),
	}
	if err := s.scanArtifacts(); err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) scanArtifacts() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), artifactExt) {
			continue
		}
		name, version := parseArtifactFilename(strings.TrimSuffix(entry.Name(), artifactExt))
		if name == "" {
			continue
		}
		s.versions[name] = append(s.versions[name], version)
	}
	for name := range s.versions {
		slices.Sort(s.versions[name])
	}
	return nil
}

// parseArtifactFilename splits "item2item_v3" into its name and version.
func parseArtifactFilename(base string) (name string, version int) {
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	v, err := strconv.Atoi(base[idx+2:])
	if err != nil || v < 1 {
		return "", 0
	}
	return base[:idx], v
}

func (s *Store) artifactPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, artifactExt))
}

// Save writes snap as the next version of name. The file is written to a
// temporary name first and renamed into place.
//
//nolint:gocritic // meta passed by value is completed and returned
func (s *Store) Save(ctx context.Context, name string, snap *recommend.Snapshot, meta Metadata) (_ Metadata, err error) {
	start := time.Now()
	defer func() { observe(backendFile, "save", start, err) }()

	if err := validateName(name); err != nil {
		return Metadata{}, err
	}
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta.Name = name
	meta.Version = latest(s.versions[name]) + 1
	meta.SavedAt = time.Now().UTC()

	data, meta, err := encodeArtifact(snap, meta)
	if err != nil {
		return Metadata{}, err
	}

	tmp, err := os.CreateTemp(s.baseDir, tempFilePrefix+name+"-*")
	if err != nil {
		return Metadata{}, fmt.Errorf("create artifact file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return Metadata{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error takes precedence
		return Metadata{}, fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Metadata{}, fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, s.artifactPath(name, meta.Version)); err != nil {
		return Metadata{}, fmt.Errorf("rename artifact: %w", err)
	}

	s.versions[name] = append(s.versions[name], meta.Version)
	return meta, nil
}

// Load reads a version of name; version 0 means latest.
func (s *Store) Load(ctx context.Context, name string, version int) (_ *recommend.Snapshot, _ Metadata, err error) {
	start := time.Now()
	defer func() { observe(backendFile, "load", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		version = latest(s.versions[name])
		if version == 0 {
			return nil, Metadata{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}

	data, err := os.ReadFile(s.artifactPath(name, version))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Metadata{}, fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
	}
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("read artifact: %w", err)
	}
	return decodeArtifact(bytes.NewReader(data))
}

// LatestVersion returns the newest version of name.
func (s *Store) LatestVersion(_ context.Context, name string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := latest(s.versions[name])
	return v, v > 0, nil
}

// List returns the metadata of the latest version of every artifact,
// ordered by name. Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	slices.Sort(names)

	list := make([]Metadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(s.artifactPath(name, latest(s.versions[name])))
		if err != nil {
			continue
		}
		_, meta, err := decodeArtifact(bytes.NewReader(data))
		if err != nil {
			continue
		}
		list = append(list, meta)
	}
	return list, nil
}

// Delete removes one version.
func (s *Store) Delete(_ context.Context, name string, version int) (err error) {
	start := time.Now()
	defer func() { observe(backendFile, "delete", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.artifactPath(name, version)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
		}
		return fmt.Errorf("delete artifact: %w", err)
	}
	s.forget(name, version)
	return nil
}

// Prune keeps the newest keep versions of name. keep below 1 is treated
// as 1.
func (s *Store) Prune(_ context.Context, name string, keep int) (err error) {
	start := time.Now()
	defer func() { observe(backendFile, "prune", start, err) }()

	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.versions[name]
	if len(versions) <= keep {
		return nil
	}
	for _, v := range versions[:len(versions)-keep] {
		if err := os.Remove(s.artifactPath(name, v)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("prune %s v%d: %w", name, v, err)
		}
		s.forget(name, v)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// forget drops version from the index; s.mu must be held.
func (s *Store) forget(name string, version int) {
	versions := slices.DeleteFunc(s.versions[name], func(v int) bool { return v == version })
	if len(versions) == 0 {
		delete(s.versions, name)
		return
	}
	s.versions[name] = versions
}

// latest returns the last element of an ascending version list, or 0.
func latest(versions []int) int {
	if len(versions) == 0 {
		return 0
	}
	return versions[len(versions)-1]
}

var _ Repository = (*Store)(nil)
