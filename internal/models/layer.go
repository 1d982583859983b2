// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package models

import "time"

// FeelingsLayerKey is the built-in layer that holds what earlier
// generations of the service called "pins".
const FeelingsLayerKey = "feelings"

// Layer is a named collection of points.
type Layer struct {
	Key  string
	Name string

	// Kind is a free-form classification, e.g. "interactive" or "static".
	Kind string

	// AllowUserPoints gates whether ordinary users may create points here.
	AllowUserPoints bool

	// IsEnabled hides the layer from every read and write when false.
	IsEnabled bool

	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LayerPayload is the wire projection of a Layer.
type LayerPayload struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	AllowUserPoints bool   `json:"allow_user_points"`
	IsEnabled       bool   `json:"is_enabled"`
	SortOrder       int    `json:"sort_order"`
}

// Payload returns the wire projection of the layer.
func (l *Layer) Payload() LayerPayload {
	return LayerPayload{
		Key:             l.Key,
		Name:            l.Name,
		Kind:            l.Kind,
		AllowUserPoints: l.AllowUserPoints,
		IsEnabled:       l.IsEnabled,
		SortOrder:       l.SortOrder,
	}
}

// DefaultLayers are the built-in layer rows, upserted at every startup.
var DefaultLayers = []Layer{
	{
		Key:             FeelingsLayerKey,
		Name:            "Pocitova mapa",
		Kind:            "interactive",
		AllowUserPoints: true,
		IsEnabled:       true,
		SortOrder:       10,
	},
	{
		Key:             "city_buildings",
		Name:            "Mestske budovy",
		Kind:            "static",
		AllowUserPoints: false,
		IsEnabled:       true,
		SortOrder:       20,
	},
}
