// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package api

import (
	"net/http"

	"github.com/tomtom215/pinmap/internal/auth"
	"github.com/tomtom215/pinmap/internal/config"
	"github.com/tomtom215/pinmap/internal/database"
)

// Handler carries the dependencies every endpoint needs.
type Handler struct {
	cfg  *config.Config
	db   *database.DB
	auth *auth.Service
}

// NewHandler creates the endpoint handler.
func NewHandler(cfg *config.Config, db *database.DB, authSvc *auth.Service) *Handler {
	return &Handler{cfg: cfg, db: db, auth: authSvc}
}

// Health serves the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
