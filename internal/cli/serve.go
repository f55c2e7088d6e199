// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/item2item/internal/api"
	"github.com/tomtom215/item2item/internal/logging"
	"github.com/tomtom215/item2item/internal/recommend"
	"github.com/tomtom215/item2item/internal/supervisor"
	"github.com/tomtom215/item2item/internal/supervisor/services"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and rebuild the index on a schedule",
		Long: `Start the HTTP API under a supervisor tree. The latest stored index is
restored at startup; with REBUILD_ENABLED the index is also rebuilt on
REBUILD_SCHEDULE and can be rebuilt on demand with POST /api/v1/index/rebuild.

Examples:
  item2item serve
  HTTP_PORT=9000 REBUILD_SCHEDULE="0 3 * * *" item2item serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.serve(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	log := logging.WithComponent("serve")

	d, err := a.openDeps(ctx, true)
	if err != nil {
		return err
	}
	defer d.Close()

	handle := recommend.NewHandle(nil)
	p := a.newPipeline(d, handle)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	var rebuilder api.Rebuilder
	if cfg.Rebuild.Enabled {
		svc, err := services.NewRebuildService(p, services.RebuildServiceConfig{
			Schedule:  cfg.Rebuild.Schedule,
			OnStartup: cfg.Rebuild.OnStartup,
			Timeout:   cfg.Rebuild.Timeout,
		}, logging.WithComponent("rebuild"))
		if err != nil {
			return err
		}
		tree.AddDataService(svc)
		rebuilder = p
	} else {
		meta, ok, err := p.Restore(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("restore failed, serving an empty index")
		case !ok:
			log.Warn().Str("index", cfg.Index.Name).Msg("no stored index, serving an empty index")
		default:
			log.Info().Str("index", meta.Name).Int("version", meta.Version).Msg("restored index")
		}
	}

	handler := api.NewHandler(handle, rebuilder, api.HandlerConfig{
		DefaultK:       cfg.Index.DefaultK,
		MaxK:           cfg.Index.MaxK,
		Weights:        weights(cfg.Index),
		RebuildTimeout: cfg.Rebuild.Timeout,
		CacheSize:      cfg.Index.CacheSize,
		CacheTTL:       cfg.Index.CacheTTL,
	})
	router := api.NewRouter(handler, api.MiddlewareConfigFromSecurity(cfg.Security))

	// Rebuilds over HTTP answer synchronously, so the write deadline must
	// outlast the rebuild timeout.
	writeTimeout := cfg.Server.Timeout
	if rebuilder != nil && cfg.Rebuild.Timeout > writeTimeout {
		writeTimeout = cfg.Rebuild.Timeout + 5*time.Second
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	log.Info().
		Str("addr", srv.Addr).
		Str("index", cfg.Index.Name).
		Bool("rebuild", cfg.Rebuild.Enabled).
		Msg("starting item2item")

	return tree.Serve(ctx)
}
