// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pinmap/internal/authz"
	"github.com/tomtom215/pinmap/internal/database"
	"github.com/tomtom215/pinmap/internal/metrics"
	"github.com/tomtom215/pinmap/internal/models"
	"github.com/tomtom215/pinmap/internal/validation"
)

// ListLayers serves the enabled layer catalog in display order.
func (h *Handler) ListLayers(w http.ResponseWriter, r *http.Request) {
	layers, err := h.db.ListEnabledLayers(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	payloads := make([]models.LayerPayload, len(layers))
	for i, l := range layers {
		payloads[i] = l.Payload()
	}
	writeJSON(w, http.StatusOK, map[string]any{"layers": payloads})
}

// visibleLayer fetches a layer, treating disabled ones as missing so
// their existence is not leaked.
func (h *Handler) visibleLayer(r *http.Request, key string) (*models.Layer, error) {
	layer, err := h.db.GetLayer(r.Context(), key)
	if err != nil {
		return nil, err
	}
	if !layer.IsEnabled {
		return nil, database.ErrNotFound
	}
	return layer, nil
}

// ListLayerPoints serves every point of an enabled layer.
func (h *Handler) ListLayerPoints(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, err := h.visibleLayer(r, key); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "layer not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	points, err := h.db.ListPointsByLayer(r.Context(), key)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"points": pointPayloads(points, requestUser(r)),
	})
}

type createPointRequest struct {
	ID          string          `json:"id"`
	Lat         *float64        `json:"lat" validate:"required"`
	Lng         *float64        `json:"lng" validate:"required"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	Type        string          `json:"type"`
	Comment     string          `json:"comment"`
}

// CreateLayerPoint creates a point in the layer from the URL.
func (h *Handler) CreateLayerPoint(w http.ResponseWriter, r *http.Request) {
	h.createPoint(w, r, chi.URLParam(r, "key"))
}

// createPoint is the shared creation path for the layer and pin
// endpoints. Checks run in a fixed order: unknown/disabled layer, layer
// policy, identity, payload shape, id conflict.
func (h *Handler) createPoint(w http.ResponseWriter, r *http.Request, layerKey string) {
	layer, err := h.visibleLayer(r, layerKey)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "layer not found")
			return
		}
		writeInternalError(w, err)
		return
	}

	user := requestUser(r)
	if !layer.AllowUserPoints {
		// Static layers take content through seeding only; not even admins
		// may post into them.
		writeError(w, http.StatusForbidden, "layer does not accept user points")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createPointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	if layer.Key == models.FeelingsLayerKey && strings.TrimSpace(req.Type) == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}

	point := &models.Point{
		ID:              strings.TrimSpace(req.ID),
		LayerKey:        layer.Key,
		Lat:             *req.Lat,
		Lng:             *req.Lng,
		Title:           models.Truncate(req.Title, models.MaxTitleLen),
		Description:     models.Truncate(req.Description, models.MaxDescriptionLen),
		Data:            encodeData(req.Data),
		Type:            models.Truncate(req.Type, models.MaxTypeLen),
		Comment:         models.Truncate(req.Comment, models.MaxCommentLen),
		CreatedByUserID: user.ID,
		CreatedByName:   user.Name,
		CreatedFromIP:   models.Truncate(clientIP(r), models.MaxSourceIPLen),
	}
	if point.ID == "" {
		point.ID = "pt_" + uuid.NewString()
	}
	if point.CreatedByName == "" {
		point.CreatedByName = models.AnonymousCreatorName
	}

	if err := h.db.InsertPoint(r.Context(), point); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			// The layer vanished or was disabled between check and insert.
			writeError(w, http.StatusNotFound, "layer not found")
		case errors.Is(err, database.ErrConflict):
			writeError(w, http.StatusConflict, "point id already exists")
		default:
			writeInternalError(w, err)
		}
		return
	}

	metrics.PointsCreated.WithLabelValues(layer.Key).Inc()
	writeJSON(w, http.StatusCreated, pointPayload(point, user))
}

// encodeData re-serializes a structured payload. Anything that is not a
// JSON object is treated as absent.
func encodeData(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return ""
	}
	encoded, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// DeleteLayerPoints wipes every point of a layer. Admin only.
func (h *Handler) DeleteLayerPoints(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, err := h.visibleLayer(r, key); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "layer not found")
			return
		}
		writeInternalError(w, err)
		return
	}
	h.bulkDeletePoints(w, r, key)
}

func (h *Handler) bulkDeletePoints(w http.ResponseWriter, r *http.Request, layerKey string) {
	user := requestUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !authz.CanBulkDelete(user) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}

	deleted, err := h.db.DeleteLayerPoints(r.Context(), layerKey)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	metrics.PointsDeleted.WithLabelValues(layerKey).Add(float64(deleted))
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
