// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

// Package auth implements registration, login, logout, and bearer-token
// resolution.
//
// Login is trust-on-assertion: knowing an email logs you in as that
// account. The deployment this grew out of ran for a closed community
// behind an access-controlled frontend; do not expose this surface to the
// open internet without putting real authentication in front of it.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/pinmap/internal/database"
	"github.com/tomtom215/pinmap/internal/logging"
	"github.com/tomtom215/pinmap/internal/models"
)

// Validation errors surfaced as 400s by the HTTP layer.
var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")
)

// Service owns account lifecycle and token resolution.
type Service struct {
	db *database.DB
}

// NewService returns an auth service backed by db.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Register creates an account and logs it in. The first account ever
// registered becomes admin. Returns database.ErrConflict when the email
// is taken.
func (s *Service) Register(ctx context.Context, email, name string) (*models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = NormalizeName(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        "usr_" + uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      models.RoleUser,
		AuthToken: token,
	}
	if err := s.db.RegisterUser(ctx, user); err != nil {
		return nil, err
	}

	logging.Info().Str("user_id", user.ID).Str("role", string(user.Role)).
		Msg("User registered")
	return user, nil
}

// Login issues a fresh token for an existing account, invalidating the
// previous one. A non-blank name updates the stored display name. Returns
// database.ErrNotFound for unknown emails.
func (s *Service) Login(ctx context.Context, email, name string) (*models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if newName := NormalizeName(name); newName != "" {
		user.Name = newName
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	if err := s.db.UpdateUserLogin(ctx, user.ID, user.Name, token); err != nil {
		return nil, err
	}
	user.AuthToken = token

	logging.Info().Str("user_id", user.ID).Msg("User logged in")
	return user, nil
}

// Logout discards the account's live token. Idempotent.
func (s *Service) Logout(ctx context.Context, user *models.User) error {
	if user == nil {
		return nil
	}
	if err := s.db.ClearUserToken(ctx, user.ID); err != nil {
		return err
	}
	logging.Info().Str("user_id", user.ID).Msg("User logged out")
	return nil
}

// Resolve maps a bearer token to its account. Returns nil (not an error)
// for an empty or unknown token, so callers treat bad tokens as anonymous.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := s.db.GetUserByToken(ctx, token)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizeEmail lowercases and trims an email. The only structural demand
// is an "@"; anything stricter rejects real addresses.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NormalizeName trims a display name and collapses internal whitespace
// runs to single spaces, then caps the length.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	runes := []rune(name)
	if len(runes) > models.MaxCreatorNameLen {
		name = string(runes[:models.MaxCreatorNameLen])
	}
	return name
}

// newToken returns 256 bits of randomness, URL-safe encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
