// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package api

import (
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
)

func TestEscapeNonASCII(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii untouched", `{"name":"hello"}`, `{"name":"hello"}`},
		{"latin diacritics", "{\"name\":\"Pocitov\u00e1 mapa\"}", `{"name":"Pocitov\u00e1 mapa"}`},
		{"czech consonants", "{\"name\":\"\u0158\u00edp\"}", `{"name":"\u0158\u00edp"}`},
		{"astral plane needs a surrogate pair", "{\"e\":\"\U0001F5FA\"}", `{"e":"\ud83d\uddfa"}`},
		{"empty", ``, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(escapeNonASCII([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("escapeNonASCII(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeNonASCIIRoundTrips(t *testing.T) {
	original := map[string]string{"name": "Pocitová mapa \U0001F5FA"}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(escapeNonASCII(raw), &decoded); err != nil {
		t.Fatalf("escaped JSON no longer parses: %v", err)
	}
	if decoded["name"] != original["name"] {
		t.Errorf("round trip = %q, want %q", decoded["name"], original["name"])
	}
}

func TestWriteJSONHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, 200, map[string]string{"status": "ok"})

	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, 404, "layer not found")

	if rec.Code != 404 {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"error":"layer not found"}` {
		t.Errorf("body = %s", got)
	}
}
