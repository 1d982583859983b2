// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package validation

import (
	"strings"
	"testing"
)

type coordRequest struct {
	Lat *float64 `validate:"required"`
	Lng *float64 `validate:"required"`
}

func f(v float64) *float64 { return &v }

func TestValidateStructCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		req     coordRequest
		wantErr bool
	}{
		{"valid", coordRequest{Lat: f(50.08), Lng: f(14.43)}, false},
		{"zero is a valid coordinate", coordRequest{Lat: f(0), Lng: f(0)}, false},
		{"out of range is still numeric", coordRequest{Lat: f(90.5), Lng: f(-180.5)}, false},
		{"missing lat", coordRequest{Lng: f(14.43)}, true},
		{"missing lng", coordRequest{Lat: f(50.08)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type layerRequest struct {
	Key string `validate:"required,layerkey"`
}

func TestLayerKeyValidator(t *testing.T) {
	valid := []string{"feelings", "city_buildings", "a", "x-1"}
	invalid := []string{"", "Feelings", "1abc", "with space", "_x", strings.Repeat("a", 65)}

	for _, key := range valid {
		if err := ValidateStruct(&layerRequest{Key: key}); err != nil {
			t.Errorf("key %q rejected: %v", key, err)
		}
	}
	for _, key := range invalid {
		if err := ValidateStruct(&layerRequest{Key: key}); err == nil {
			t.Errorf("key %q accepted, want rejection", key)
		}
	}
}

func TestErrorMessagesAreServable(t *testing.T) {
	err := ValidateStruct(&coordRequest{})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "lat is required") || !strings.Contains(msg, "lng is required") {
		t.Errorf("message = %q", msg)
	}
	if len(err.Fields()) != 2 {
		t.Errorf("got %d field errors, want 2", len(err.Fields()))
	}
}
