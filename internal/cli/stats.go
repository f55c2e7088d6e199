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

	"github.com/tomtom215/item2item/internal/events"
	"github.com/tomtom215/item2item/internal/recommend/storage"
)

// statsOutput is the --json form of the stats command.
type statsOutput struct {
	Indexes []storage.Metadata `json:"indexes"`
	Events  *events.Summary    `json:"events,omitempty"`
}

func (a *app) statsCmd() *cobra.Command {
	var checkEvents bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored index versions and, optionally, an input summary",
		Long: `List the latest stored version of every index with its aggregation stats.
With --events, also load the configured source and print row counts, event
types and the timestamp range, which is a quick sanity check before a build.

Examples:
  item2item stats
  item2item stats --events --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := a.openDeps(ctx, false)
			if err != nil {
				return err
			}
			defer d.Close()

			metas, err := d.repo.List(ctx)
			if err != nil {
				return fmt.Errorf("list indexes: %w", err)
			}
			out := statsOutput{Indexes: metas}

			if checkEvents {
				records, err := newSource(a.cfg.Source).Records(ctx)
				if err != nil {
					return fmt.Errorf("load events: %w", err)
				}
				s := events.Summarize(records)
				out.Events = &s
			}

			return a.render(cmd, out, func(w io.Writer) error {
				if len(metas) == 0 {
					fmt.Fprintln(w, "No stored indexes.")
				} else if err := table(w, "NAME\tVERSION\tBUILT\tITEMS\tEVENTS\tVIEW EDGES\tBUY EDGES\tSIZE", func(tw io.Writer) {
					for i := range metas {
						m := &metas[i]
						fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%d\t%d\t%d\n",
							m.Name, m.Version, m.BuiltAt.Format(time.RFC3339), m.Stats.Items, m.Stats.Events,
							m.Stats.Edges.View, m.Stats.Edges.Transaction, m.SizeBytes)
					}
				}); err != nil {
					return err
				}

				if out.Events != nil {
					printSummary(w, a.cfg.Source.Path, out.Events)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&checkEvents, "events", false, "also summarize the configured event source")
	return cmd
}

func printSummary(w io.Writer, path string, s *events.Summary) {
	fmt.Fprintf(w, "\nEvents in %s\n", path)
	fmt.Fprintf(w, "  rows:     %d\n", s.Rows)
	fmt.Fprintf(w, "  visitors: %d\n", s.Visitors)
	fmt.Fprintf(w, "  items:    %d\n", s.Items)
	if !s.First.IsZero() {
		fmt.Fprintf(w, "  range:    %s .. %s\n", s.First.Format(time.RFC3339), s.Last.Format(time.RFC3339))
	}
	types := make([]string, 0, len(s.ByEvent))
	for t := range s.ByEvent {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-12s %d\n", t+":", s.ByEvent[t])
	}
	if s.MissingTransactionID > 0 {
		fmt.Fprintf(w, "  warning: %d transaction rows have no transaction id\n", s.MissingTransactionID)
	}
}
