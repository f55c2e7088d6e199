// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/item2item/internal/recommend"
)

func (a *app) buildCmd() *cobra.Command {
	var eventsPath string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Aggregate events into a new index version",
		Long: `Load interaction records, group views into sessions and purchases into
baskets, count co-occurrences and save the result as a new index version.

Examples:
  item2item build
  item2item build --events data/raw/events.csv
  STORE_TYPE=badger item2item build`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if eventsPath != "" {
				a.cfg.Source.Path = eventsPath
			}
			ctx := cmd.Context()

			d, err := a.openDeps(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := a.newPipeline(d, recommend.NewHandle(nil)).Run(ctx)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}

			return a.render(cmd, res, func(w io.Writer) error {
				fmt.Fprintf(w, "Built %s v%d in %s (run %s)\n", res.Name, res.Version, res.Duration.Round(time.Millisecond), res.RunID)
				fmt.Fprintf(w, "  records loaded:   %d\n", res.Loaded)
				fmt.Fprintf(w, "  events:           %d (view %d, transaction %d)\n",
					res.Stats.Events, res.Stats.EventsByKind.View, res.Stats.EventsByKind.Transaction)
				fmt.Fprintf(w, "  sessions/baskets: %d / %d\n", res.Stats.Groups.View, res.Stats.Groups.Transaction)
				fmt.Fprintf(w, "  edges:            view %d, transaction %d\n", res.Stats.Edges.View, res.Stats.Edges.Transaction)
				fmt.Fprintf(w, "  items:            %d\n", res.Stats.Items)
				if len(res.Skipped) > 0 {
					types := make([]string, 0, len(res.Skipped))
					for t := range res.Skipped {
						types = append(types, t)
					}
					sort.Strings(types)
					for _, t := range types {
						fmt.Fprintf(w, "  skipped %-9s %d\n", t+":", res.Skipped[t])
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&eventsPath, "events", "", "events file (overrides EVENTS_PATH)")
	return cmd
}
