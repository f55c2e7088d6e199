// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/item2item/internal/config"
	"github.com/tomtom215/item2item/internal/middleware"
)

// Router builds the chi router for a Handler.
type Router struct {
	handler *Handler
	chiMw   *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses
// DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler: handler,
		chiMw:   NewChiMiddleware(mwConfig),
	}
}

// MiddlewareConfigFromSecurity maps the security settings onto the Chi
// middleware configuration.
func MiddlewareConfigFromSecurity(sec config.SecurityConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	if sec.RateLimitReqs > 0 {
		cfg.RateLimitRequests = sec.RateLimitReqs
	}
	if sec.RateLimitWindow > 0 {
		cfg.RateLimitWindow = sec.RateLimitWindow
	}
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	return cfg
}

// SetupChi returns the complete HTTP handler.
//
// Route layout:
//
//	GET  /api/v1/health
//	GET  /api/v1/items/{itemID}/related?kind=&k=
//	GET  /api/v1/items/{itemID}/recommendations?k=
//	GET  /api/v1/index/stats
//	POST /api/v1/index/rebuild
//	GET  /recommend?itemid=&k=
//	GET  /metrics
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMw.CORS())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", h.Health)

		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/related", h.Related)
			r.Get("/recommendations", h.Recommendations)
		})

		r.Route("/index", func(r chi.Router) {
			r.Get("/stats", h.IndexStats)
			r.Post("/rebuild", h.Rebuild)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Get("/recommend", h.LegacyRecommend)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
