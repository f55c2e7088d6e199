// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package events loads raw interaction logs and turns them into the
// recommend.Event values the aggregator consumes.
//
// The expected input is the RetailRocket layout:
//
//	timestamp,visitorid,event,itemid,transactionid
//	1433221332117,257597,view,355908,
//	1433224214164,992329,transaction,248676,4000
//
// Views are grouped into sessions by Sessionize; transactions keep their
// transaction id as the basket key.
package events

import (
	"context"
	"errors"
	"time"
)

// Raw event type names.
const (
	TypeView        = "view"
	TypeAddToCart   = "addtocart"
	TypeTransaction = "transaction"
)

// DefaultSessionGap is the inactivity gap that closes a session.
const DefaultSessionGap = 30 * time.Minute

// ErrMalformedRecord is returned when an input row cannot be parsed.
var ErrMalformedRecord = errors.New("malformed record")

// Record is one raw interaction row.
type Record struct {
	VisitorID     string
	SessionID     string
	Timestamp     time.Time
	Event         string
	ItemID        string
	TransactionID string
}

// Source yields raw records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// NeedsSessions reports whether any record lacks a session id.
func NeedsSessions(records []Record) bool {
	for i := range records {
		if records[i].SessionID == "" {
			return true
		}
	}
	return false
}
