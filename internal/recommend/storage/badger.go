// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/item2item/internal/recommend"
)

const (
	backendBadger = "badger"

	// Key layout, versions zero padded so key order matches version order:
	//   artifact:meta:{name}:{version} -> JSON Metadata
	//   artifact:data:{name}:{version} -> gzip payload
	badgerMetaPrefix = "artifact:meta:"
	badgerDataPrefix = "artifact:data:"
)

// BadgerStore keeps artifacts in BadgerDB.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerStore opens (or creates) a Badger database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger artifact store: %w", err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStore uses an already open database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func badgerKey(prefix, name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", prefix, name, version))
}

// versionsOf returns the stored versions of name in ascending order.
func versionsOf(txn *badger.Txn, name string) []int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var versions []int
	prefix := []byte(badgerMetaPrefix + name + ":")
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		v, err := strconv.Atoi(string(it.Item().Key()[len(prefix):]))
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	return versions
}

func readMeta(txn *badger.Txn, name string, version int) (Metadata, error) {
	var meta Metadata
	item, err := txn.Get(badgerKey(badgerMetaPrefix, name, version))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return meta, fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
	}
	if err != nil {
		return meta, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	if err != nil {
		return meta, fmt.Errorf("%w: metadata: %v", recommend.ErrCorruptIndex, err)
	}
	return meta, nil
}

// Save stores snap as the next version of name in one transaction.
//
//nolint:gocritic // meta passed by value is completed and returned
func (s *BadgerStore) Save(ctx context.Context, name string, snap *recommend.Snapshot, meta Metadata) (_ Metadata, err error) {
	start := time.Now()
	defer func() { observe(backendBadger, "save", start, err) }()

	if err := validateName(name); err != nil {
		return Metadata{}, err
	}
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	payload, meta, err := compressPayload(snap, meta)
	if err != nil {
		return Metadata{}, err
	}
	meta.Name = name

	err = s.db.Update(func(txn *badger.Txn) error {
		meta.Version = latest(versionsOf(txn, name)) + 1
		meta.SavedAt = time.Now().UTC()

		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if err := txn.Set(badgerKey(badgerDataPrefix, name, meta.Version), payload); err != nil {
			return err
		}
		return txn.Set(badgerKey(badgerMetaPrefix, name, meta.Version), metaJSON)
	})
	if err != nil {
		return Metadata{}, fmt.Errorf("save artifact: %w", err)
	}
	return meta, nil
}

// Load reads a version of name; version 0 means latest.
func (s *BadgerStore) Load(ctx context.Context, name string, version int) (_ *recommend.Snapshot, _ Metadata, err error) {
	start := time.Now()
	defer func() { observe(backendBadger, "load", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}

	var (
		meta    Metadata
		payload []byte
	)
	err = s.db.View(func(txn *badger.Txn) error {
		if version == 0 {
			version = latest(versionsOf(txn, name))
			if version == 0 {
				return fmt.Errorf("%w: %s", ErrNotFound, name)
			}
		}

		var err error
		meta, err = readMeta(txn, name, version)
		if err != nil {
			return err
		}
		item, err := txn.Get(badgerKey(badgerDataPrefix, name, version))
		if err != nil {
			return fmt.Errorf("%w: payload of %s v%d: %v", recommend.ErrCorruptIndex, name, version, err)
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, Metadata{}, err
	}
	return decodePayload(payload, meta)
}

// LatestVersion returns the newest version of name.
func (s *BadgerStore) LatestVersion(_ context.Context, name string) (int, bool, error) {
	var v int
	err := s.db.View(func(txn *badger.Txn) error {
		v = latest(versionsOf(txn, name))
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return v, v > 0, nil
}

// List returns the metadata of the latest version of every artifact,
// ordered by name.
func (s *BadgerStore) List(_ context.Context) ([]Metadata, error) {
	var list []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerMetaPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			name := nameFromKey(it.Item().Key())
			var meta Metadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				continue
			}
			// Keys are ordered by name then version, so the last entry of a
			// run of equal names is the latest version.
			if n := len(list); n > 0 && list[n-1].Name == name {
				list[n-1] = meta
				continue
			}
			list = append(list, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return list, nil
}

// Delete removes one version.
func (s *BadgerStore) Delete(_ context.Context, name string, version int) (err error) {
	start := time.Now()
	defer func() { observe(backendBadger, "delete", start, err) }()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(badgerMetaPrefix, name, version)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
			}
			return err
		}
		return deleteVersion(txn, name, version)
	})
}

// Prune keeps the newest keep versions of name. keep below 1 is treated
// as 1.
func (s *BadgerStore) Prune(_ context.Context, name string, keep int) (err error) {
	start := time.Now()
	defer func() { observe(backendBadger, "prune", start, err) }()

	if keep < 1 {
		keep = 1
	}
	return s.db.Update(func(txn *badger.Txn) error {
		versions := versionsOf(txn, name)
		if len(versions) <= keep {
			return nil
		}
		for _, v := range versions[:len(versions)-keep] {
			if err := deleteVersion(txn, name, v); err != nil {
				return fmt.Errorf("prune %s v%d: %w", name, v, err)
			}
		}
		return nil
	})
}

func deleteVersion(txn *badger.Txn, name string, version int) error {
	for _, prefix := range []string{badgerMetaPrefix, badgerDataPrefix} {
		if err := txn.Delete(badgerKey(prefix, name, version)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

// Close closes the database when the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// nameFromKey extracts the artifact name from a metadata key.
func nameFromKey(key []byte) string {
	rest := strings.TrimPrefix(string(key), badgerMetaPrefix)
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		return rest[:i]
	}
	return rest
}

var _ Repository = (*BadgerStore)(nil)
