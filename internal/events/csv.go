// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package events

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// column aliases, matched case-insensitively against the header row
var columnAliases = map[string][]string{
	"visitor":     {"visitorid", "visitor_id", "visitor"},
	"session":     {"session_id", "sessionid", "session"},
	"timestamp":   {"timestamp", "ts", "time"},
	"event":       {"event", "event_kind", "event_type", "kind"},
	"item":        {"itemid", "item_id", "item"},
	"transaction": {"transactionid", "transaction_id", "transaction"},
}

// CSVReader reads records from CSV with a header row. Columns are located
// by name, so column order does not matter.
type CSVReader struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

// NewCSVReader reads the header row from r and returns a reader positioned
// at the first data row. The event and item columns are required, and at
// least one of visitor or session must be present.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", ErrMalformedRecord)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(columnAliases))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		for field, aliases := range columnAliases {
			if _, seen := cols[field]; seen {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					cols[field] = i
					break
				}
			}
		}
	}

	for _, required := range []string{"event", "item"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: header has no %s column", ErrMalformedRecord, required)
		}
	}
	_, hasVisitor := cols["visitor"]
	_, hasSession := cols["session"]
	if !hasVisitor && !hasSession {
		return nil, fmt.Errorf("%w: header needs a visitor or session column", ErrMalformedRecord)
	}

	return &CSVReader{r: cr, cols: cols, line: 1}, nil
}

// Next returns the next record, or io.EOF when the input is exhausted.
func (c *CSVReader) Next() (Record, error) {
	row, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, c.line+1, err)
	}
	c.line++

	rec := Record{
		VisitorID:     c.field(row, "visitor"),
		SessionID:     c.field(row, "session"),
		Event:         strings.ToLower(c.field(row, "event")),
		ItemID:        c.field(row, "item"),
		TransactionID: c.field(row, "transaction"),
	}

	if raw := c.field(row, "timestamp"); raw != "" {
		ts, err := ParseTimestamp(raw)
		if err != nil {
			return Record{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, c.line, err)
		}
		rec.Timestamp = ts
	}
	if rec.SessionID == "" && rec.Timestamp.IsZero() {
		return Record{}, fmt.Errorf("%w: line %d: timestamp required without session_id", ErrMalformedRecord, c.line)
	}
	return rec, nil
}

// ReadAll drains the reader.
func (c *CSVReader) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := c.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func (c *CSVReader) field(row []string, name string) string {
	i, ok := c.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseTimestamp accepts Unix epoch milliseconds or RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return ts.UTC(), nil
}

// CSVSource reads every record from a CSV file.
type CSVSource struct {
	Path string
}

// Records implements Source.
func (s CSVSource) Records(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cr, err := NewCSVReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	var out []Record
	for {
		if len(out)%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
		out = append(out, rec)
	}
}
