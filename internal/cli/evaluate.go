// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/item2item/internal/logging"
	"github.com/tomtom215/item2item/internal/pipeline"
	"github.com/tomtom215/item2item/internal/recommend/eval"
	"github.com/tomtom215/item2item/internal/recommend/storage"
	"github.com/tomtom215/item2item/internal/tracking"
)

// DefaultTopKPath is where evaluate exports the top-k lists.
const DefaultTopKPath = "data/topk.json"

func (a *app) evaluateCmd() *cobra.Command {
	var (
		eventsPath string
		topkPath   string
		reportPath string
		version    int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure hit@k of the stored index against sessions and baskets",
		Long: `Export the blended top-k list of every item, then replay each session and
basket: the lowest item id is the query and the rest are targets. A group
is a hit at k when any target appears in the query's first k items.

Writes the eval report and topk.json and records an "evaluate" run.

Examples:
  item2item evaluate
  EVAL_KS=5,10 EVAL_MAX_SESSIONS=1000 item2item evaluate --events data/raw/holdout.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if eventsPath != "" {
				a.cfg.Source.Path = eventsPath
			}
			if reportPath == "" {
				reportPath = a.cfg.Eval.ReportPath
			}
			ctx := cmd.Context()
			start := time.Now()

			d, err := a.openDeps(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			idx, meta, err := storage.LoadIndex(ctx, d.repo, a.cfg.Index.Name, version)
			if err != nil {
				return fmt.Errorf("load index %s: %w", a.cfg.Index.Name, err)
			}
			evts, _, err := pipeline.LoadEvents(ctx, newSource(a.cfg.Source), a.cfg.Source.SessionGap)
			if err != nil {
				return err
			}

			w := weights(a.cfg.Index)
			report, err := pipeline.Evaluate(ctx, idx, evts, pipeline.EvalOptions{
				TopK:      a.cfg.Index.TopK,
				Weights:   w,
				Ks:        a.cfg.Eval.Ks,
				MaxGroups: a.cfg.Eval.MaxGroups,
			})
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}

			if err := eval.WriteReportFile(reportPath, report); err != nil {
				return err
			}
			exported, err := pipeline.ExportTopK(topkPath, idx, a.cfg.Index.TopK, w)
			if err != nil {
				return err
			}

			runID := ""
			if d.tracker != nil {
				run, err := d.tracker.Record(ctx, tracking.Run{
					Name:       "evaluate",
					DurationMS: time.Since(start).Milliseconds(),
					Params:     evalParams(report.Params, meta),
					Metrics:    report.Metrics,
					Artifact:   filepath.Base(reportPath),
				})
				if err != nil {
					logging.Warn().Err(err).Msg("failed to track evaluation run")
				} else {
					runID = run.ID
				}
			}

			return a.render(cmd, report, func(w io.Writer) error {
				fmt.Fprintf(w, "Evaluated %s v%d: wrote %s and %s (%d items)\n",
					meta.Name, meta.Version, reportPath, topkPath, exported)
				if runID != "" {
					fmt.Fprintf(w, "Tracked as run %s\n", runID)
				}
				return printMetrics(w, report.Metrics)
			})
		},
	}

	cmd.Flags().StringVar(&eventsPath, "events", "", "events to evaluate against (overrides EVENTS_PATH)")
	cmd.Flags().StringVar(&topkPath, "topk-out", DefaultTopKPath, "top-k export path")
	cmd.Flags().StringVar(&reportPath, "report", "", "report path (default EVAL_REPORT_PATH)")
	cmd.Flags().IntVar(&version, "version", 0, "index version (0 = latest)")
	return cmd
}

func evalParams(p eval.Params, meta storage.Metadata) map[string]string {
	ks := make([]string, len(p.Ks))
	for i, k := range p.Ks {
		ks[i] = strconv.Itoa(k)
	}
	return map[string]string{
		"index":             meta.Name + " v" + strconv.Itoa(meta.Version),
		"topk":              strconv.Itoa(p.TopK),
		"view_weight":       strconv.FormatFloat(p.ViewWeight, 'g', -1, 64),
		"buy_weight":        strconv.FormatFloat(p.BuyWeight, 'g', -1, 64),
		"eval_max_sessions": strconv.Itoa(p.MaxGroups),
		"ks":                strings.Join(ks, ","),
	}
}

func printMetrics(w io.Writer, m map[string]float64) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return table(w, "METRIC\tVALUE", func(tw io.Writer) {
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t%s\n", name, strconv.FormatFloat(m[name], 'g', 6, 64))
		}
	})
}
