// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/item2item/internal/tracking"
)

func (a *app) runsCmd() *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List tracked build and evaluation runs",
		Long: `List runs recorded in the tracking database, newest first, or show the
params and metrics of one run.

Examples:
  item2item runs
  item2item runs --limit 5
  item2item runs --id 0f8c2c1e-... --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.Tracking.Enabled {
				return errors.New("run tracking is disabled (TRACKING_ENABLED=false)")
			}
			ctx := cmd.Context()
			tr, err := tracking.NewDuckDBTracker(a.cfg.Tracking.Path)
			if err != nil {
				return fmt.Errorf("open run tracker: %w", err)
			}
			defer func() { _ = tr.Close() }()

			if runID != "" {
				run, err := tr.Get(ctx, runID)
				if err != nil {
					return err
				}
				return a.render(cmd, run, func(w io.Writer) error {
					printRun(w, &run)
					return nil
				})
			}

			runs, err := tr.List(ctx, limit)
			if err != nil {
				return err
			}
			return a.render(cmd, runs, func(w io.Writer) error {
				if len(runs) == 0 {
					fmt.Fprintln(w, "No tracked runs.")
					return nil
				}
				return table(w, "ID\tNAME\tSTARTED\tDURATION\tARTIFACT", func(tw io.Writer) {
					for i := range runs {
						r := &runs[i]
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.StartedAt.Format(time.RFC3339),
							(time.Duration(r.DurationMS) * time.Millisecond).String(), r.Artifact)
					}
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max runs to list")
	cmd.Flags().StringVar(&runID, "id", "", "show one run")
	return cmd
}

func printRun(w io.Writer, r *tracking.Run) {
	fmt.Fprintf(w, "Run %s (%s)\n", r.ID, r.Name)
	fmt.Fprintf(w, "  started:  %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  duration: %s\n", time.Duration(r.DurationMS)*time.Millisecond)
	if r.Artifact != "" {
		fmt.Fprintf(w, "  artifact: %s\n", r.Artifact)
	}

	if len(r.Params) > 0 {
		fmt.Fprintln(w, "  params:")
		keys := make([]string, 0, len(r.Params))
		for k := range r.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "    %s = %s\n", k, r.Params[k])
		}
	}
	if len(r.Metrics) > 0 {
		fmt.Fprintln(w, "  metrics:")
		_ = printMetrics(w, r.Metrics)
	}
}
