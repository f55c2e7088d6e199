// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package validation

import (
	"strings"
	"testing"
)

type relatedRequest struct {
	ItemID string `validate:"required,itemid"`
	Kind   string `validate:"required,kind"`
	K      int    `validate:"min=0,max=50"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       relatedRequest
		wantField string
		wantTag   string
	}{
		{"valid", relatedRequest{"355908", "view", 10}, "", ""},
		{"alias kind", relatedRequest{"355908", "buy", 0}, "", ""},
		{"missing item", relatedRequest{"", "view", 10}, "ItemID", "required"},
		{"control char item", relatedRequest{"a\nb", "view", 10}, "ItemID", "itemid"},
		{"oversized item", relatedRequest{strings.Repeat("x", MaxItemIDLength+1), "view", 10}, "ItemID", "itemid"},
		{"bad kind", relatedRequest{"1", "addtocart", 10}, "Kind", "kind"},
		{"negative k", relatedRequest{"1", "view", -1}, "K", "min"},
		{"k too large", relatedRequest{"1", "view", 51}, "K", "max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 || errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("errors = %+v, want %s/%s", errs, tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&relatedRequest{ItemID: "1", Kind: "view", K: -1}).ToAPIError()
	if single.Code != "VALIDATION_ERROR" || single.Message != "K must be at least 0" {
		t.Errorf("single = %+v", single)
	}
	if single.Details["field"] != "K" {
		t.Errorf("single details = %v", single.Details)
	}

	multi := ValidateStruct(&relatedRequest{K: 99}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("multi details = %v", multi.Details)
	}
	if !strings.Contains(multi.Message, "ItemID: ItemID is required") {
		t.Errorf("multi message = %q", multi.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty = %+v", empty)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}
