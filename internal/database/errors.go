// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package database

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the store layer. Callers translate these into
// HTTP status codes; the store never knows about HTTP.
var (
	// ErrNotFound indicates the requested row does not exist, or lives in a
	// disabled layer (indistinguishable from nonexistent by design).
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation (duplicate point id or
	// already-registered email).
	ErrConflict = errors.New("conflict")
)

// isConstraintViolation reports whether err is a DuckDB uniqueness or
// constraint failure. The driver does not expose a typed error for these,
// so the message is matched.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Constraint Error") ||
		strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "violates unique constraint") ||
		strings.Contains(msg, "violates primary key constraint")
}
