// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

/*
Package api serves the item2item index over HTTP.

Every query reads the index currently published on a recommend.Handle, so a
rebuild swaps what new requests see without blocking requests in flight.

# Endpoints

	GET  /api/v1/health                              status, generation, item count
	GET  /api/v1/items/{itemID}/related?kind=&k=     top-k neighbors for one kind
	GET  /api/v1/items/{itemID}/recommendations?k=   blended top-k plus "available"
	GET  /api/v1/index/stats                         aggregation stats
	POST /api/v1/index/rebuild                       run the pipeline now
	GET  /recommend?itemid=&k=                       alias of recommendations
	GET  /metrics                                    Prometheus exposition

kind accepts view or transaction (buy and purchase are aliases) and defaults
to view. k defaults to 10 and may not exceed 50. A negative k is rejected
with 400 VALIDATION_ERROR; k=0 on the related endpoint returns an empty list.
An item absent from the index yields an empty list, never an error.

Blended lists are cached per generation, item and k when
HandlerConfig.CacheSize is positive.

# Response Format

All JSON endpoints use models.APIResponse:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "generation": 3}}
	{"status": "error", "error": {"code": "VALIDATION_ERROR", "message": "..."}, "metadata": {...}}

# Middleware

Requests pass through RequestID, chi RealIP, chi Recoverer and go-chi/cors.
The API routes add go-chi/httprate limiting, security headers and the
Prometheus request metrics.
*/
package api
