// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package validation

import (
	"strings"
	"testing"
)

type userRequest struct {
	UserID string `validate:"required,userid"`
	Limit  int    `validate:"min=1,max=50"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     userRequest
		wantErr bool
		wantTag string
	}{
		{name: "valid object id", req: userRequest{UserID: "65a1f0c2e4b0a1b2c3d4e5f6", Limit: 10}},
		{name: "empty id", req: userRequest{UserID: "", Limit: 10}, wantErr: true, wantTag: "required"},
		{name: "id with space", req: userRequest{UserID: "user 1", Limit: 10}, wantErr: true, wantTag: "userid"},
		{name: "id with slash", req: userRequest{UserID: "a/b", Limit: 10}, wantErr: true, wantTag: "userid"},
		{name: "id too long", req: userRequest{UserID: strings.Repeat("x", MaxUserIDLength+1), Limit: 10}, wantErr: true, wantTag: "userid"},
		{name: "limit too large", req: userRequest{UserID: "u1", Limit: 51}, wantErr: true, wantTag: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.req)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Errors()[0].Tag(); got != tt.wantTag {
				t.Errorf("tag = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestMovieIDRule(t *testing.T) {
	t.Parallel()

	type movieRequest struct {
		MovieID string `validate:"required,movieid"`
	}

	tests := []struct {
		id    string
		valid bool
	}{
		{"550", true},
		{"9223372036854775807", true},
		{"0", false},
		{"-5", false},
		{"+5", false},
		{"1.5", false},
		{"1e3", false},
		{"9223372036854775808", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&movieRequest{MovieID: tt.id})
			if tt.valid && err != nil {
				t.Errorf("%q rejected: %v", tt.id, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("%q accepted", tt.id)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&userRequest{UserID: "", Limit: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("expected fields detail for multiple errors, got %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "userRequest.UserID is required") {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}
