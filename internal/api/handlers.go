// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/item2item/internal/cache"
	"github.com/tomtom215/item2item/internal/logging"
	"github.com/tomtom215/item2item/internal/metrics"
	"github.com/tomtom215/item2item/internal/models"
	"github.com/tomtom215/item2item/internal/pipeline"
	"github.com/tomtom215/item2item/internal/recommend"
)

// Rebuilder runs an index build. *pipeline.Pipeline implements it.
type Rebuilder interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// HandlerConfig tunes query defaults.
type HandlerConfig struct {
	// DefaultK is used when a request has no k parameter.
	DefaultK int

	// MaxK caps k on every endpoint.
	MaxK int

	// Weights blend the kinds on the recommendations endpoint.
	Weights recommend.Weights

	// RebuildTimeout bounds a rebuild triggered over HTTP. Zero means no
	// limit beyond the server's own.
	RebuildTimeout time.Duration

	// CacheSize bounds the blended recommendations cache. 0 disables it.
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultHandlerConfig returns k=10, max 50 and the default blend weights.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultK: 10,
		MaxK:     50,
		Weights:  recommend.DefaultWeights(),
	}
}

// Handler serves the HTTP API from the index published on a handle.
type Handler struct {
	handle    *recommend.Handle
	rebuilder Rebuilder
	cfg       HandlerConfig

	// blended caches Blend results keyed by generation, item and k. A
	// publish changes the generation, so older entries are never read
	// again and age out.
	blended *cache.LRU[[]recommend.Scored]
}

// NewHandler creates a Handler. rebuilder may be nil, in which case
// POST /index/rebuild answers 503.
func NewHandler(handle *recommend.Handle, rebuilder Rebuilder, cfg HandlerConfig) *Handler {
	defaults := DefaultHandlerConfig()
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = defaults.DefaultK
	}
	if cfg.MaxK <= 0 {
		cfg.MaxK = defaults.MaxK
	}
	if cfg.DefaultK > cfg.MaxK {
		cfg.DefaultK = cfg.MaxK
	}
	if cfg.Weights == (recommend.Weights{}) {
		cfg.Weights = defaults.Weights
	}
	if handle == nil {
		handle = recommend.NewHandle(nil)
	}
	h := &Handler{handle: handle, rebuilder: rebuilder, cfg: cfg}
	if cfg.CacheSize > 0 {
		h.blended = cache.NewLRU[[]recommend.Scored](cfg.CacheSize, cfg.CacheTTL)
	}
	return h
}

// Health reports the serving generation and item count.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	idx := h.handle.Current()
	generation := h.handle.Generation()

	w.Header().Set("Cache-Control", "no-store")
	respondData(w, models.HealthResponse{
		Status:     "ok",
		Generation: generation,
		Items:      idx.Len(),
		BuiltAt:    idx.BuiltAt(),
	}, start, generation)
}

// Related returns the top-k neighbors of an item for one kind.
//
// GET /api/v1/items/{itemID}/related?kind=view&k=10
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, apiErr := getIntParam(r, "k", h.cfg.DefaultK)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	kindParam := r.URL.Query().Get("kind")
	if kindParam == "" {
		kindParam = recommend.KindView.String()
	}

	req := RelatedRequest{ItemID: chi.URLParam(r, "itemID"), Kind: kindParam, K: k}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if !h.checkMaxK(w, req.K) {
		return
	}

	kind, err := recommend.ParseKind(req.Kind)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
		return
	}

	idx := h.handle.Current()
	generation := h.handle.Generation()
	neighbors, err := recommend.Query(idx, req.ItemID, kind, req.K)
	if err != nil {
		metrics.RecordQuery(kind.String(), "invalid", time.Since(start))
		h.queryError(w, err)
		return
	}
	metrics.RecordQuery(kind.String(), queryResult(len(neighbors)), time.Since(start))

	logging.Ctx(r.Context()).Debug().
		Str("item_id", logging.SanitizeValue(req.ItemID)).
		Str("kind", kind.String()).
		Int("k", req.K).
		Int("results", len(neighbors)).
		Msg("related items served")

	respondData(w, models.RelatedResponse{
		ItemID:    req.ItemID,
		Kind:      kind,
		K:         req.K,
		Neighbors: neighbors,
	}, start, generation)
}

// Recommendations returns the blended top-k list of an item.
//
// GET /api/v1/items/{itemID}/recommendations?k=10
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, chi.URLParam(r, "itemID"))
}

// LegacyRecommend serves GET /recommend?itemid=...&k=... with the same body
// as Recommendations.
func (h *Handler) LegacyRecommend(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, r.URL.Query().Get("itemid"))
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, itemID string) {
	start := time.Now()

	k, apiErr := getIntParam(r, "k", h.cfg.DefaultK)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	req := RecommendationsRequest{ItemID: strings.TrimSpace(itemID), K: k}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if !h.checkMaxK(w, req.K) {
		return
	}

	generation := h.handle.Generation()
	idx := h.handle.Current()
	scored, err := h.blend(idx, generation, req.ItemID, req.K)
	if err != nil {
		metrics.RecordQuery("blend", "invalid", time.Since(start))
		h.queryError(w, err)
		return
	}
	metrics.RecordQuery("blend", queryResult(len(scored)), time.Since(start))

	respondData(w, models.RecommendationsResponse{
		ItemID:          req.ItemID,
		K:               req.K,
		Recommendations: scored,
		Available:       idx.Contains(req.ItemID),
	}, start, generation)
}

// blend returns Blend(idx, itemID, k), consulting the cache when enabled.
func (h *Handler) blend(idx *recommend.Index, generation uint64, itemID string, k int) ([]recommend.Scored, error) {
	if h.blended == nil {
		return recommend.Blend(idx, itemID, k, h.cfg.Weights)
	}

	key := strconv.FormatUint(generation, 10) + "|" + strconv.Itoa(k) + "|" + itemID
	if scored, ok := h.blended.Get(key); ok {
		metrics.RecordQueryCache(true)
		return scored, nil
	}
	metrics.RecordQueryCache(false)

	scored, err := recommend.Blend(idx, itemID, k, h.cfg.Weights)
	if err != nil {
		return nil, err
	}
	h.blended.Add(key, scored)
	return scored, nil
}

// IndexStats returns the aggregation stats of the serving index.
func (h *Handler) IndexStats(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	idx := h.handle.Current()
	generation := h.handle.Generation()

	respondData(w, models.IndexStatsResponse{
		Generation: generation,
		BuiltAt:    idx.BuiltAt(),
		Stats:      idx.Stats(),
	}, start, generation)
}

// Rebuild runs the pipeline synchronously and returns the new version. The
// build is detached from the client connection so a disconnect does not
// abort it halfway.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.rebuilder == nil {
		respondError(w, http.StatusServiceUnavailable, "REBUILD_UNAVAILABLE", "Index rebuilds are not configured", nil)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if h.cfg.RebuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.RebuildTimeout)
		defer cancel()
	}

	res, err := h.rebuilder.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		respondError(w, http.StatusConflict, "REBUILD_IN_PROGRESS", "An index build is already running", nil)
		return
	case errors.Is(err, recommend.ErrInvalidEvent):
		respondError(w, http.StatusUnprocessableEntity, "INVALID_EVENT", err.Error(), err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "REBUILD_FAILED", "Index build failed", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondData(w, models.RebuildResponse{
		RunID:      res.RunID,
		Version:    res.Version,
		Generation: res.Generation,
		DurationMS: res.Duration.Milliseconds(),
		Stats:      res.Stats,
		Skipped:    res.Skipped,
	}, start, res.Generation)
}

// checkMaxK rejects k above the configured maximum.
func (h *Handler) checkMaxK(w http.ResponseWriter, k int) bool {
	if k <= h.cfg.MaxK {
		return true
	}
	respondAPIError(w, http.StatusBadRequest, &models.APIError{
		Code:    "VALIDATION_ERROR",
		Message: "K must be less than or equal to " + strconv.Itoa(h.cfg.MaxK),
		Details: map[string]interface{}{"fields": []string{"K"}},
	})
	return false
}

func (h *Handler) queryError(w http.ResponseWriter, err error) {
	if errors.Is(err, recommend.ErrInvalidArgument) {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Query failed", err)
}

func queryResult(n int) string {
	if n == 0 {
		return "miss"
	}
	return "hit"
}
