// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package api

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/pinmap/internal/authz"
	"github.com/tomtom215/pinmap/internal/models"
)

// PointPayload is the wire projection of a point, evaluated against the
// requesting identity. Type and Comment appear only for the feelings
// layer (their historical home); CreatedFromIP only for admins.
type PointPayload struct {
	ID          string         `json:"id"`
	LayerKey    string         `json:"layer_key"`
	Lat         float64        `json:"lat"`
	Lng         float64        `json:"lng"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`

	Type    *string `json:"type,omitempty"`
	Comment *string `json:"comment,omitempty"`

	CreatedByName string    `json:"created_by_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	CreatedFromIP *string `json:"created_from_ip,omitempty"`

	IsOwner   bool `json:"is_owner"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// pointPayload projects a stored point for one requester.
func pointPayload(p *models.Point, requester *models.User) PointPayload {
	perms := authz.Decide(requester, p.CreatedByUserID)

	payload := PointPayload{
		ID:            p.ID,
		LayerKey:      p.LayerKey,
		Lat:           p.Lat,
		Lng:           p.Lng,
		Title:         p.Title,
		Description:   p.Description,
		CreatedByName: p.CreatedByName,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
		IsOwner: requester != nil && p.CreatedByUserID != "" &&
			p.CreatedByUserID == requester.ID,
		CanEdit:   perms.CanEdit,
		CanDelete: perms.CanDelete,
	}

	if p.Data != "" {
		var data map[string]any
		// Stored payloads were validated on the way in; a decode failure
		// here means hand-edited rows, which are served without data.
		if err := json.Unmarshal([]byte(p.Data), &data); err == nil {
			payload.Data = data
		}
	}

	if p.IsFeelings() {
		t, c := p.Type, p.Comment
		payload.Type = &t
		payload.Comment = &c
	}

	if requester.IsAdmin() && p.CreatedFromIP != "" {
		ip := p.CreatedFromIP
		payload.CreatedFromIP = &ip
	}

	return payload
}

// pointPayloads projects a slice of points for one requester.
func pointPayloads(points []*models.Point, requester *models.User) []PointPayload {
	payloads := make([]PointPayload, len(points))
	for i, p := range points {
		payloads[i] = pointPayload(p, requester)
	}
	return payloads
}
