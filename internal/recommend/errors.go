// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEvent is returned when an input record is malformed. The
	// whole aggregation batch is rejected.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidArgument is returned for bad query parameters such as a
	// negative k or an unknown kind.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptIndex is returned when a serialized index violates an
	// index invariant.
	ErrCorruptIndex = errors.New("corrupt index")
)

// EventError describes a rejected record. It unwraps to ErrInvalidEvent.
type EventError struct {
	// Position is the zero-based position of the record in the input.
	Position int

	// Field names the offending field.
	Field string

	// Reason is a short human-readable description.
	Reason string
}

// Error implements error.
func (e *EventError) Error() string {
	return fmt.Sprintf("invalid event at position %d: %s %s", e.Position, e.Field, e.Reason)
}

// Unwrap returns ErrInvalidEvent.
func (e *EventError) Unwrap() error {
	return ErrInvalidEvent
}

// validateEvent checks the record-level rules of an Event.
func validateEvent(e *Event, pos int) error {
	switch {
	case !e.Kind.Valid():
		return &EventError{Position: pos, Field: "kind", Reason: fmt.Sprintf("is unknown (%d)", e.Kind)}
	case e.ItemID == "":
		return &EventError{Position: pos, Field: "item_id", Reason: "is empty"}
	case e.SessionID == "":
		return &EventError{Position: pos, Field: "session_id", Reason: "is empty"}
	case e.Kind == KindTransaction && e.TransactionID == "":
		return &EventError{Position: pos, Field: "transaction_id", Reason: "is required for transaction events"}
	case e.Kind == KindView && e.TransactionID != "":
		return &EventError{Position: pos, Field: "transaction_id", Reason: "must be empty for view events"}
	}
	return nil
}
