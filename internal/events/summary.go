// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package events

import "time"

// Summary describes a raw input before it is aggregated.
type Summary struct {
	Rows     int            `json:"rows"`
	Visitors int            `json:"visitors"`
	Items    int            `json:"items"`
	ByEvent  map[string]int `json:"by_event"`
	First    time.Time      `json:"first,omitempty"`
	Last     time.Time      `json:"last,omitempty"`

	// MissingTransactionID counts transaction rows without a basket id.
	MissingTransactionID int `json:"missing_transaction_id"`
}

// Summarize counts rows, distinct visitors and items, event types and the
// timestamp range of records.
func Summarize(records []Record) Summary {
	s := Summary{Rows: len(records), ByEvent: make(map[string]int)}
	visitors := make(map[string]struct{})
	items := make(map[string]struct{})

	for i := range records {
		r := &records[i]
		s.ByEvent[r.Event]++
		visitors[r.VisitorID] = struct{}{}
		items[r.ItemID] = struct{}{}
		if r.Event == TypeTransaction && r.TransactionID == "" {
			s.MissingTransactionID++
		}
		if r.Timestamp.IsZero() {
			continue
		}
		if s.First.IsZero() || r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}
	}

	s.Visitors = len(visitors)
	s.Items = len(items)
	return s
}
