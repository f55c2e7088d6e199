// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/tomtom215/item2item/internal/logging"
	"github.com/tomtom215/item2item/internal/recommend"
	"github.com/tomtom215/item2item/internal/recommend/eval"
)

// EvalOptions configures Evaluate.
type EvalOptions struct {
	// TopK is the length of each exported recommendation list.
	TopK int

	Weights recommend.Weights

	// Ks are the hit-rate cutoffs. Empty means eval.DefaultKs.
	Ks []int

	// MaxGroups caps the groups evaluated per kind. Zero means all.
	MaxGroups int
}

// Evaluate scores the blended top-K lists of idx against the sessions
// ("view" metrics) and baskets ("buy" metrics) in evts.
//
//nolint:gocritic // options are read once
func Evaluate(ctx context.Context, idx *recommend.Index, evts []recommend.Event, opts EvalOptions) (eval.Report, error) {
	topk, err := recommend.TopKMap(idx, opts.TopK, opts.Weights)
	if err != nil {
		return eval.Report{}, err
	}
	rec := eval.MapRecommender(topk)
	evalOpts := eval.Options{Ks: opts.Ks, MaxGroups: opts.MaxGroups}

	byPrefix := make(map[string]eval.Metrics, 2)
	for prefix, kind := range map[string]recommend.Kind{"view": recommend.KindView, "buy": recommend.KindTransaction} {
		m, err := eval.Evaluate(ctx, rec, eval.Groups(evts, kind), evalOpts)
		if err != nil {
			return eval.Report{}, fmt.Errorf("evaluate %s: %w", prefix, err)
		}
		byPrefix[prefix] = m
		logging.Ctx(ctx).Info().
			Str("kind", prefix).
			Int("tested", m.Tested).
			Int("skipped_small", m.SkippedSmall).
			Int("skipped_no_recs", m.SkippedNoRecs).
			Msg("evaluation finished")
	}

	ks := opts.Ks
	if len(ks) == 0 {
		ks = eval.DefaultKs
	}
	return eval.NewReport(eval.Params{
		TopK:       opts.TopK,
		ViewWeight: opts.Weights.View,
		BuyWeight:  opts.Weights.Transaction,
		MaxGroups:  opts.MaxGroups,
		Ks:         ks,
	}, byPrefix), nil
}

// WriteTopK writes a TopKMap export as JSON.
func WriteTopK(w io.Writer, topk map[string][]string) error {
	if err := json.NewEncoder(w).Encode(topk); err != nil {
		return fmt.Errorf("failed to encode top-k map: %w", err)
	}
	return nil
}

// ExportTopK writes the blended top-K lists of idx to path and returns the
// number of items exported.
func ExportTopK(path string, idx *recommend.Index, k int, w recommend.Weights) (n int, err error) {
	topk, err := recommend.TopKMap(idx, k, w)
	if err != nil {
		return 0, err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return 0, fmt.Errorf("failed to create top-k file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := WriteTopK(f, topk); err != nil {
		return 0, err
	}
	return len(topk), nil
}

// ReadTopK decodes a TopKMap export.
func ReadTopK(r io.Reader) (map[string][]string, error) {
	var topk map[string][]string
	if err := json.NewDecoder(r).Decode(&topk); err != nil {
		return nil, fmt.Errorf("failed to decode top-k map: %w", err)
	}
	return topk, nil
}
