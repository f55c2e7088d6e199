// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies an interaction and selects which co-occurrence graph a
// query reads.
type Kind uint8

const (
	// KindView is a product view, grouped by session.
	KindView Kind = iota
	// KindTransaction is a purchase, grouped by transaction (basket).
	KindTransaction

	numKinds
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < numKinds
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidArgument, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name. "buy" and "purchase" are accepted as aliases
// for transaction.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view", "views":
		return KindView, nil
	case "transaction", "transactions", "buy", "purchase":
		return KindTransaction, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidArgument, s)
	}
}

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindView, KindTransaction}
}

// Event is one interaction record.
type Event struct {
	// SessionID groups view events. Required for every kind.
	SessionID string

	// ItemID is the catalog item the event refers to.
	ItemID string

	// Kind is the interaction kind.
	Kind Kind

	// TransactionID groups purchase events. Present iff Kind is KindTransaction.
	TransactionID string

	// Timestamp is when the interaction happened. Informational only;
	// aggregation does not depend on event order.
	Timestamp time.Time
}

// groupKey returns the grouping unit of the event for its kind.
func (e *Event) groupKey() string {
	if e.Kind == KindTransaction {
		return e.TransactionID
	}
	return e.SessionID
}

// Neighbor is one related item with its co-occurrence weight.
type Neighbor struct {
	ItemID string `json:"item_id"`
	Weight int64  `json:"weight"`
}

// Scored is one related item with a blended, normalized score.
type Scored struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}
