// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package cli provides the item2item command line.
//
//	item2item build                      aggregate events and save a new index version
//	item2item query 355908 --kind view   top-k neighbors from the latest index
//	item2item recommend 355908 -k 20     blended recommendations
//	item2item evaluate                   hit@k report plus topk.json export
//	item2item upload                     copy topk.json and the report to S3
//	item2item stats                      stored versions and input summary
//	item2item runs                       tracked build and evaluation runs
//	item2item serve                      HTTP API with scheduled rebuilds
//
// Every command reads the same configuration as the server: defaults, then
// config.yaml, then .env and the environment.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/item2item/internal/config"
	"github.com/tomtom215/item2item/internal/logging"
)

// Version is set at build time.
var Version = "dev"

// app holds state shared by every command.
type app struct {
	cfg *config.Config

	configPath string
	logLevel   string
	jsonOutput bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "item2item",
		Short: "Item-to-item co-occurrence recommender",
		Long: `item2item builds "people who viewed this also viewed" and "bought together"
indexes from interaction logs and serves the top-k related items over HTTP.

Views are grouped into sessions and purchases into baskets. Every pair of
distinct items sharing a group gains one co-occurrence in both directions.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default config.yaml or $CONFIG_PATH)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print JSON instead of text")

	root.AddCommand(
		a.buildCmd(),
		a.queryCmd(),
		a.recommendCmd(),
		a.evaluateCmd(),
		a.uploadCmd(),
		a.statsCmd(),
		a.runsCmd(),
		a.serveCmd(),
	)
	return root
}

// Execute runs the command line with ctx, which is canceled on SIGINT or
// SIGTERM by the caller.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig loads and validates configuration, then configures logging.
func (a *app) loadConfig() error {
	if a.configPath != "" {
		if _, err := os.Stat(a.configPath); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		if err := os.Setenv(config.ConfigPathEnvVar, a.configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return nil
}
