// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/pinmap/internal/authz"
	"github.com/tomtom215/pinmap/internal/database"
	"github.com/tomtom215/pinmap/internal/metrics"
	"github.com/tomtom215/pinmap/internal/models"
)

// The /api/pins endpoints are the historical view of the feelings layer.
// They exist for clients that predate layers; the /api/layers endpoints
// are the general surface.

// ListPins serves the feelings layer under its historical shape.
func (h *Handler) ListPins(w http.ResponseWriter, r *http.Request) {
	if _, err := h.visibleLayer(r, models.FeelingsLayerKey); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "layer not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	points, err := h.db.ListPointsByLayer(r.Context(), models.FeelingsLayerKey)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pins": pointPayloads(points, requestUser(r)),
	})
}

// CreatePin creates a point in the feelings layer.
func (h *Handler) CreatePin(w http.ResponseWriter, r *http.Request) {
	h.createPoint(w, r, models.FeelingsLayerKey)
}

// feelingsPoint loads a pin for mutation: 401 for anonymous callers,
// 404 for unknown ids and for points outside the feelings layer.
func (h *Handler) feelingsPoint(w http.ResponseWriter, r *http.Request) (*models.Point, *models.User, bool) {
	user := requestUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, nil, false
	}

	point, err := h.db.GetPoint(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "pin not found")
		return nil, nil, false
	}
	if err != nil {
		writeInternalError(w, err)
		return nil, nil, false
	}
	if !point.IsFeelings() {
		writeError(w, http.StatusNotFound, "pin not found")
		return nil, nil, false
	}
	return point, user, true
}

type updatePinRequest struct {
	Comment *string `json:"comment"`
}

// UpdatePin replaces a pin's comment. Only the comment is mutable.
func (h *Handler) UpdatePin(w http.ResponseWriter, r *http.Request) {
	point, user, ok := h.feelingsPoint(w, r)
	if !ok {
		return
	}

	perms := authz.Decide(user, point.CreatedByUserID)
	if !perms.CanEdit {
		writeError(w, http.StatusForbidden, "not allowed to edit this pin")
		return
	}

	var req updatePinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Comment == nil {
		writeError(w, http.StatusBadRequest, "comment is required")
		return
	}

	comment := models.Truncate(*req.Comment, models.MaxCommentLen)
	if err := h.db.UpdatePointComment(r.Context(), point.ID, comment); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pin not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	point.Comment = comment
	writeJSON(w, http.StatusOK, pointPayload(point, user))
}

// DeletePin removes a single pin.
func (h *Handler) DeletePin(w http.ResponseWriter, r *http.Request) {
	point, user, ok := h.feelingsPoint(w, r)
	if !ok {
		return
	}

	perms := authz.Decide(user, point.CreatedByUserID)
	if !perms.CanDelete {
		writeError(w, http.StatusForbidden, "not allowed to delete this pin")
		return
	}

	if err := h.db.DeletePoint(r.Context(), point.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pin not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	metrics.PointsDeleted.WithLabelValues(models.FeelingsLayerKey).Inc()
	writeJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}

// BulkDeletePins wipes the feelings layer. Admin only.
func (h *Handler) BulkDeletePins(w http.ResponseWriter, r *http.Request) {
	h.bulkDeletePoints(w, r, models.FeelingsLayerKey)
}
