// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package models

import "time"

// AnonymousCreatorName is the placeholder display name stored when a point's
// submitter supplied none. Kept from the original Czech deployment.
const AnonymousCreatorName = "Neznamy"

// Field truncation limits. Oversized input is truncated, never rejected.
const (
	MaxTitleLen       = 120
	MaxDescriptionLen = 500
	MaxTypeLen        = 40
	MaxCommentLen     = 300
	MaxCreatorNameLen = 80
	MaxSourceIPLen    = 64
)

// Point is one georeferenced annotation within a layer. A "pin" is the
// feelings-layer view of a point: Type and Comment carry its category label
// and free-text note.
type Point struct {
	ID       string
	LayerKey string
	Lat      float64
	Lng      float64

	Title       string
	Description string

	// Data is the open-ended structured payload, serialized JSON or empty.
	// Only flat objects are stored; anything else is silently discarded.
	Data string

	Type    string
	Comment string

	// CreatedByUserID is empty for anonymous/legacy rows.
	CreatedByUserID string
	// CreatedByName is never empty; AnonymousCreatorName stands in.
	CreatedByName string

	// CreatedFromIP is the originating network address, admin-only visible.
	CreatedFromIP string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFeelings reports whether the point lives in the built-in feelings layer.
func (p *Point) IsFeelings() bool {
	return p.LayerKey == FeelingsLayerKey
}

// Truncate caps s at max runes. Oversized input is trimmed, never
// rejected.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
