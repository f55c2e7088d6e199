// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package main is the entry point for the item2item command.
//
// item2item aggregates view sessions and purchase baskets into an
// item-to-item co-occurrence index, evaluates it, and serves top-k related
// items over HTTP.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables and a .env file (names in internal/config/koanf.go)
//   - Config file (config.yaml, or --config / CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the command context. serve then stops the
// supervisor tree, which shuts the HTTP server down gracefully and lets a
// running rebuild finish or time out.
//
// # Example Usage
//
//	export EVENTS_PATH=data/raw/events.csv
//	item2item build
//	item2item query 355908 --kind view -k 5
//	item2item serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/item2item/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
