// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package events

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Sessionize assigns session ids per visitor. Records are ordered by
// visitor then timestamp; a new session starts at a visitor's first record
// and whenever the gap to the previous record is strictly greater than gap.
// Session ids are "{visitor}_{n}" with n starting at 1. A non-positive gap
// means DefaultSessionGap. The input slice is not modified.
func Sessionize(records []Record, gap time.Duration) []Record {
	if gap <= 0 {
		gap = DefaultSessionGap
	}

	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		if c := strings.Compare(a.VisitorID, b.VisitorID); c != 0 {
			return c
		}
		return a.Timestamp.Compare(b.Timestamp)
	})

	var (
		visitor string
		last    time.Time
		n       int
	)
	for i := range out {
		r := &out[i]
		if i == 0 || r.VisitorID != visitor {
			visitor = r.VisitorID
			n = 1
		} else if r.Timestamp.Sub(last) > gap {
			n++
		}
		last = r.Timestamp
		r.SessionID = r.VisitorID + "_" + strconv.Itoa(n)
	}
	return out
}
