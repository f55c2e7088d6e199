// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/item2item/internal/logging"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		check    func(t *testing.T, id string)
	}{
		{
			name: "generates uuid",
			check: func(t *testing.T, id string) {
				if _, err := uuid.Parse(id); err != nil {
					t.Errorf("id %q is not a UUID: %v", id, err)
				}
			},
		},
		{
			name:     "keeps upstream id",
			incoming: "upstream-123",
			check: func(t *testing.T, id string) {
				if id != "upstream-123" {
					t.Errorf("id = %q, want upstream-123", id)
				}
			},
		},
		{
			name:     "replaces oversized id",
			incoming: strings.Repeat("x", maxRequestIDLen+1),
			check: func(t *testing.T, id string) {
				if _, err := uuid.Parse(id); err != nil {
					t.Errorf("oversized id not replaced: %q", id)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID, logID, corrID string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				logID = logging.RequestIDFromContext(r.Context())
				corrID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header != ctxID || header != logID {
				t.Errorf("ids differ: header=%q chi=%q logging=%q", header, ctxID, logID)
			}
			if corrID == "" {
				t.Error("correlation id not set")
			}
			tt.check(t, header)
		})
	}
}
