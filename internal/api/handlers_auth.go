// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/pinmap/internal/auth"
	"github.com/tomtom215/pinmap/internal/database"
	"github.com/tomtom215/pinmap/internal/metrics"
	"github.com/tomtom215/pinmap/internal/models"
)

type credentialsRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	Token string             `json:"token"`
	User  models.UserPayload `json:"user"`
}

// Register creates an account and returns its first session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Name)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	case errors.Is(err, auth.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "name is required")
		return
	case errors.Is(err, database.ErrConflict):
		writeError(w, http.StatusConflict, "email already registered")
		return
	case err != nil:
		writeInternalError(w, err)
		return
	}

	metrics.AuthEvents.WithLabelValues("register").Inc()
	writeJSON(w, http.StatusCreated, sessionResponse{
		Token: user.AuthToken,
		User:  user.Payload(),
	})
}

// Login rotates the account's token. A non-blank name also updates the
// stored display name.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Name)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "unknown email")
		return
	case err != nil:
		writeInternalError(w, err)
		return
	}

	metrics.AuthEvents.WithLabelValues("login").Inc()
	writeJSON(w, http.StatusOK, sessionResponse{
		Token: user.AuthToken,
		User:  user.Payload(),
	})
}

// Logout discards the caller's token. Always answers ok, even for
// anonymous callers; logout is idempotent.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := requestUser(r); user != nil {
		if err := h.auth.Logout(r.Context(), user); err != nil {
			writeInternalError(w, err)
			return
		}
		metrics.AuthEvents.WithLabelValues("logout").Inc()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me reports the caller's identity, or null for anonymous.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user.Payload()})
}
