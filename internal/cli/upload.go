// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/item2item/internal/recommend/storage"
)

// ErrS3Disabled is returned by upload when S3 is not configured.
var ErrS3Disabled = errors.New("S3 is not enabled: set S3_ENABLED=true and S3_BUCKET")

func (a *app) uploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload [file...]",
		Short: "Upload evaluation artifacts to S3",
		Long: `Upload files to s3://$S3_BUCKET/$S3_PREFIX/<file name>. Without arguments the
top-k export and the eval report are uploaded; run evaluate first.

Examples:
  item2item upload
  item2item upload data/topk.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.S3.Enabled || a.cfg.S3.Bucket == "" {
				return ErrS3Disabled
			}
			files := args
			if len(files) == 0 {
				files = []string{DefaultTopKPath, a.cfg.Eval.ReportPath}
			}
			for _, f := range files {
				if _, err := os.Stat(f); err != nil {
					return fmt.Errorf("missing artifact %s: %w", f, err)
				}
			}

			ctx := cmd.Context()
			store, err := storage.NewS3Store(ctx, a.cfg.S3)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			uris := make([]string, 0, len(files))
			for _, f := range files {
				uri, err := store.PutFile(ctx, f)
				if err != nil {
					return err
				}
				uris = append(uris, uri)
			}

			return a.render(cmd, uris, func(w io.Writer) error {
				for i, uri := range uris {
					fmt.Fprintf(w, "%s -> %s\n", files[i], uri)
				}
				return nil
			})
		},
	}
	return cmd
}
