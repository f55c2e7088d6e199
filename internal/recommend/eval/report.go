// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package eval

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Params records the settings an evaluation ran with.
type Params struct {
	TopK       int     `json:"topk"`
	ViewWeight float64 `json:"view_weight"`
	BuyWeight  float64 `json:"buy_weight"`
	MaxGroups  int     `json:"eval_max_sessions"`
	Ks         []int   `json:"ks"`
}

// Report is the eval report artifact: parameters plus flat metrics keyed
// like "buy_hit@10" and "view_total_tested".
type Report struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Params      Params             `json:"params"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewReport builds a report from per-prefix metrics, e.g. {"buy": ...,
// "view": ...}.
func NewReport(params Params, byPrefix map[string]Metrics) Report {
	r := Report{
		GeneratedAt: time.Now().UTC(),
		Params:      params,
		Metrics:     make(map[string]float64),
	}
	for prefix, m := range byPrefix {
		for k, v := range m.Flatten(prefix) {
			r.Metrics[k] = v
		}
	}
	return r
}

// Flatten returns the metrics as prefix_name keys.
func (m Metrics) Flatten(prefix string) map[string]float64 {
	out := map[string]float64{
		prefix + "_groups_seen":     float64(m.GroupsSeen),
		prefix + "_total_tested":    float64(m.Tested),
		prefix + "_skipped_small":   float64(m.SkippedSmall),
		prefix + "_skipped_no_recs": float64(m.SkippedNoRecs),
	}
	for k, rate := range m.HitRate {
		out[prefix+"_hit@"+strconv.Itoa(k)] = rate
	}
	return out
}

// WriteReport writes r as indented JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode eval report: %w", err)
	}
	return nil
}

// WriteReportFile writes r to path, creating parent directories.
func WriteReportFile(path string, r Report) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteReport(f, r)
}

// ReadReport decodes a report written by WriteReport.
func ReadReport(r io.Reader) (Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, fmt.Errorf("failed to decode eval report: %w", err)
	}
	return rep, nil
}
