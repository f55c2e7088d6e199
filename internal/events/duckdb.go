// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package events

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DuckDBSource loads RetailRocket-layout records through DuckDB's file
// readers. It handles CSV and Parquet inputs far faster than row-by-row
// parsing and returns records ordered by visitor and timestamp.
type DuckDBSource struct {
	// Path is a CSV or Parquet file. Globs are passed through to DuckDB.
	Path string

	// Format is "csv" or "parquet". Empty infers it from the extension.
	Format string

	// Since keeps only events at or after this instant when non-zero.
	Since time.Time
}

// Records implements Source.
func (s DuckDBSource) Records(ctx context.Context) ([]Record, error) {
	query, args, err := s.query()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.Path, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			ms  int64
		)
		if err := rows.Scan(&rec.VisitorID, &ms, &rec.Event, &rec.ItemID, &rec.TransactionID); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ms).UTC()
		rec.Event = strings.ToLower(rec.Event)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return out, nil
}

func (s DuckDBSource) query() (string, []any, error) {
	if s.Path == "" {
		return "", nil, fmt.Errorf("duckdb source: path is required")
	}

	format := strings.ToLower(s.Format)
	if format == "" {
		switch strings.ToLower(filepath.Ext(s.Path)) {
		case ".parquet", ".pq":
			format = "parquet"
		default:
			format = "csv"
		}
	}

	// table functions take a literal path, not a bind parameter
	path := "'" + strings.ReplaceAll(s.Path, "'", "''") + "'"
	var from string
	switch format {
	case "csv":
		from = "read_csv_auto(" + path + ", header=true, all_varchar=true)"
	case "parquet":
		from = "read_parquet(" + path + ")"
	default:
		return "", nil, fmt.Errorf("duckdb source: unsupported format %q", s.Format)
	}

	var b strings.Builder
	b.WriteString(`SELECT CAST(visitorid AS VARCHAR),
       CAST("timestamp" AS BIGINT),
       CAST(event AS VARCHAR),
       CAST(itemid AS VARCHAR),
       COALESCE(CAST(transactionid AS VARCHAR), '')
FROM `)
	b.WriteString(from)

	var args []any
	if !s.Since.IsZero() {
		b.WriteString(` WHERE CAST("timestamp" AS BIGINT) >= ?`)
		args = append(args, s.Since.UnixMilli())
	}
	b.WriteString(` ORDER BY CAST(visitorid AS VARCHAR), CAST("timestamp" AS BIGINT)`)
	return b.String(), args, nil
}
