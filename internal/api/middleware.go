// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/tomtom215/pinmap/internal/logging"
	"github.com/tomtom215/pinmap/internal/models"
)

type contextKey string

const userContextKey contextKey = "pinmap.user"

// Authenticate resolves the request's bearer token to a user and stores
// it in the context. An absent or unknown token leaves the request
// anonymous; this middleware never rejects.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.auth.Resolve(r.Context(), token)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		if user == nil {
			logging.Debug().Msg("Unknown bearer token, treating as anonymous")
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from Authorization: Bearer or the
// legacy X-Auth-Token header.
func bearerToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		const prefix = "Bearer "
		if len(authz) > len(prefix) && strings.EqualFold(authz[:len(prefix)], prefix) {
			return strings.TrimSpace(authz[len(prefix):])
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

// requestUser returns the authenticated user, or nil for anonymous.
func requestUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// clientIP returns the best guess at the originating address, checking
// proxy headers before falling back to the socket peer. Trustworthy only
// behind a proxy that strips client-supplied values.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
