// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

// Package api is the HTTP surface: routing, request decoding, response
// encoding, and the translation of store/service errors into status codes.
package api

import (
	"fmt"
	"io"
	"net/http"
	"unicode/utf16"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/pinmap/internal/logging"
)

// maxBodyBytes caps request bodies. Point payloads are tiny; anything
// bigger is abuse.
const maxBodyBytes = 1 << 20

// writeJSON serializes payload and writes it with the given status. All
// non-ASCII output is \uXXXX-escaped so the bytes survive any downstream
// charset mishandling.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal response")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(escapeNonASCII(body)); err != nil {
		logging.Debug().Err(err).Msg("Failed to write response body")
	}
}

// writeError writes the {"error": message} body every failure uses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeInternalError logs the cause and serves an opaque 500.
func writeInternalError(w http.ResponseWriter, err error) {
	logging.Error().Err(err).Msg("Request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads a size-limited request body into dst. Unknown fields
// are tolerated; old clients send fields this generation dropped.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body too large")
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// escapeNonASCII rewrites every rune >= 0x80 in marshaled JSON as a
// \uXXXX escape (surrogate pairs above the BMP). JSON confines non-ASCII
// bytes to string values, so escaping them document-wide is safe.
func escapeNonASCII(b []byte) []byte {
	ascii := true
	for _, c := range b {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return b
	}

	out := make([]byte, 0, len(b)+16)
	for i := 0; i < len(b); {
		c := b[i]
		if c < utf8.RuneSelf {
			out = append(out, c)
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		i += size
		if r <= 0xFFFF {
			out = append(out, fmt.Sprintf(`\u%04x`, r)...)
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		out = append(out, fmt.Sprintf(`\u%04x\u%04x`, hi, lo)...)
	}
	return out
}
