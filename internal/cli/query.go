// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/item2item/internal/models"
	"github.com/tomtom215/item2item/internal/recommend"
	"github.com/tomtom215/item2item/internal/recommend/storage"
)

// loadIndex loads a stored index version; 0 means the latest.
func (a *app) loadIndex(ctx context.Context, version int) (*recommend.Index, storage.Metadata, error) {
	d, err := a.openDeps(ctx, false)
	if err != nil {
		return nil, storage.Metadata{}, err
	}
	defer d.Close()

	idx, meta, err := storage.LoadIndex(ctx, d.repo, a.cfg.Index.Name, version)
	if err != nil {
		return nil, storage.Metadata{}, fmt.Errorf("load index %s: %w", a.cfg.Index.Name, err)
	}
	return idx, meta, nil
}

func (a *app) queryCmd() *cobra.Command {
	var (
		kindName string
		k        int
		version  int
	)

	cmd := &cobra.Command{
		Use:   "query <item-id>",
		Short: "Print the top-k related items for one kind",
		Long: `Print the items most often seen together with an item, ordered by
co-occurrence count and then item id.

Examples:
  item2item query 355908
  item2item query 355908 --kind transaction -k 5
  item2item query 355908 --version 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := recommend.ParseKind(kindName)
			if err != nil {
				return err
			}
			idx, _, err := a.loadIndex(cmd.Context(), version)
			if err != nil {
				return err
			}

			neighbors, err := recommend.Query(idx, args[0], kind, k)
			if err != nil {
				return err
			}

			resp := models.RelatedResponse{ItemID: args[0], Kind: kind, K: k, Neighbors: neighbors}
			return a.render(cmd, resp, func(w io.Writer) error {
				if len(neighbors) == 0 {
					fmt.Fprintf(w, "No %s neighbors for %s.\n", kind, args[0])
					return nil
				}
				return table(w, "RANK\tITEM\tWEIGHT", func(tw io.Writer) {
					for i, n := range neighbors {
						fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, n.ItemID, n.Weight)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "view", "view or transaction")
	cmd.Flags().IntVarP(&k, "k", "k", 10, "number of neighbors")
	cmd.Flags().IntVar(&version, "version", 0, "index version (0 = latest)")
	return cmd
}

func (a *app) recommendCmd() *cobra.Command {
	var (
		k       int
		version int
	)

	cmd := &cobra.Command{
		Use:   "recommend <item-id>",
		Short: "Print blended recommendations for an item",
		Long: `Blend view and purchase co-occurrences into one list. A candidate scores
the larger of its view cosine times VIEW_WEIGHT and its purchase cosine
times BUY_WEIGHT.

Examples:
  item2item recommend 355908
  item2item recommend 355908 -k 20 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, _, err := a.loadIndex(cmd.Context(), version)
			if err != nil {
				return err
			}

			scored, err := recommend.Blend(idx, args[0], k, weights(a.cfg.Index))
			if err != nil {
				return err
			}

			resp := models.RecommendationsResponse{
				ItemID:          args[0],
				K:               k,
				Recommendations: scored,
				Available:       idx.Contains(args[0]),
			}
			return a.render(cmd, resp, func(w io.Writer) error {
				if !resp.Available {
					fmt.Fprintf(w, "Item %s is not in the index.\n", args[0])
					return nil
				}
				return table(w, "RANK\tITEM\tSCORE", func(tw io.Writer) {
					for i, s := range scored {
						fmt.Fprintf(tw, "%d\t%s\t%.4f\n", i+1, s.ItemID, s.Score)
					}
				})
			})
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 10, "number of recommendations")
	cmd.Flags().IntVar(&version, "version", 0, "index version (0 = latest)")
	return cmd
}
