// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package events

import (
	"github.com/tomtom215/item2item/internal/recommend"
)

// Skipped counts records dropped by ToEvents, keyed by raw event type.
type Skipped map[string]int

// Total returns the number of skipped records.
func (s Skipped) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// ToEvents maps view and transaction records onto recommend events. Other
// event types such as addtocart are skipped and counted. Views never carry
// a transaction id forward; field validation is left to the aggregator.
func ToEvents(records []Record) ([]recommend.Event, Skipped) {
	out := make([]recommend.Event, 0, len(records))
	skipped := Skipped{}

	for i := range records {
		r := &records[i]
		ev := recommend.Event{
			SessionID: r.SessionID,
			ItemID:    r.ItemID,
			Timestamp: r.Timestamp,
		}
		switch r.Event {
		case TypeView:
			ev.Kind = recommend.KindView
		case TypeTransaction:
			ev.Kind = recommend.KindTransaction
			ev.TransactionID = r.TransactionID
		default:
			skipped[r.Event]++
			continue
		}
		out = append(out, ev)
	}
	return out, skipped
}
