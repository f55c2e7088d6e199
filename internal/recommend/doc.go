// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package recommend implements item-to-item co-occurrence recommendations.
//
// # Architecture
//
// Interaction events are folded into an immutable co-occurrence Index that is
// split by interaction kind:
//
//   - View: items viewed in the same session ("also viewed")
//   - Transaction: items bought in the same basket ("also bought")
//
// Each unordered pair of distinct items inside one grouping unit adds one to
// the pair's weight, stored in both directions. Neighbor lists are sorted once
// at build time by weight descending, then item id ascending, so a Top-K query
// is a slice of a precomputed list.
//
// # Usage
//
//	idx, err := recommend.Aggregate(ctx, events)
//	if err != nil {
//	    return err // errors.Is(err, recommend.ErrInvalidEvent)
//	}
//
//	handle := recommend.NewHandle(idx)
//	related, err := handle.Related("item-42", recommend.KindView, 10)
//
// # Thread Safety
//
// An Index never changes after Build returns, so any number of goroutines may
// query it without locking. A Handle publishes a replacement Index with an
// atomic pointer swap; queries already running keep the Index they loaded.
//
// # Persistence
//
// Snapshot and FromSnapshot convert an Index to and from a portable record
// form. EncodeJSON and DecodeJSON write that form as JSON; the storage
// subpackage persists it as compressed gob.
package recommend
