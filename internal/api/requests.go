// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package api

// RelatedRequest holds the parameters of GET /items/{itemID}/related.
// K may be zero, which returns an empty list.
type RelatedRequest struct {
	ItemID string `validate:"required,itemid"`
	Kind   string `validate:"required,kind"`
	K      int    `validate:"gte=0"`
}

// RecommendationsRequest holds the parameters of
// GET /items/{itemID}/recommendations.
type RecommendationsRequest struct {
	ItemID string `validate:"required,itemid"`
	K      int    `validate:"gte=1"`
}
