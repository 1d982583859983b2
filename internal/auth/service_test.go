// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/pinmap/internal/config"
	"github.com/tomtom215/pinmap/internal/database"
	"github.com/tomtom215/pinmap/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db)
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Jana@Example.COM", "jana@example.com", false},
		{"  jana@example.com  ", "jana@example.com", false},
		{"no-at-sign", "", true},
		{"", "", true},
		{"a@b", "a@b", false},
		// Only the presence of "@" is demanded; odd shapes pass through.
		{"@leading", "@leading", false},
		{"trailing@", "trailing@", false},
	}
	for _, tt := range tests {
		got, err := NormalizeEmail(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("NormalizeEmail(%q) err = %v, want ErrInvalidEmail", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeEmail(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Jana   Nova ", "Jana Nova"},
		{"Jana\t\nNova", "Jana Nova"},
		{"   ", ""},
		{strings.Repeat("x", 100), strings.Repeat("x", models.MaxCreatorNameLen)},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "First@Example.com", "  First  User ")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if first.Role != models.RoleAdmin {
		t.Errorf("first user role = %s, want admin", first.Role)
	}
	if first.Email != "first@example.com" {
		t.Errorf("email not normalized: %q", first.Email)
	}
	if first.Name != "First User" {
		t.Errorf("name not normalized: %q", first.Name)
	}
	if first.AuthToken == "" {
		t.Fatal("no token issued on register")
	}

	second, err := svc.Register(ctx, "second@example.com", "Second")
	if err != nil {
		t.Fatalf("second Register() failed: %v", err)
	}
	if second.Role != models.RoleUser {
		t.Errorf("second user role = %s, want user", second.Role)
	}

	if _, err := svc.Register(ctx, "FIRST@example.com", "Again"); !errors.Is(err, database.ErrConflict) {
		t.Errorf("re-register: got %v, want ErrConflict", err)
	}

	// Login rotates the token and may rename.
	loggedIn, err := svc.Login(ctx, "first@example.com", "Renamed")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if loggedIn.AuthToken == first.AuthToken {
		t.Error("login did not rotate the token")
	}
	if loggedIn.Name != "Renamed" {
		t.Errorf("login name = %q, want Renamed", loggedIn.Name)
	}

	stale, err := svc.Resolve(ctx, first.AuthToken)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if stale != nil {
		t.Error("stale token still resolves after login")
	}
	fresh, err := svc.Resolve(ctx, loggedIn.AuthToken)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if fresh == nil || fresh.ID != first.ID {
		t.Errorf("fresh token resolved to %+v", fresh)
	}
}

func TestLoginKeepsNameWhenBlank(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "Original"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	user, err := svc.Login(ctx, "a@example.com", "   ")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if user.Name != "Original" {
		t.Errorf("blank login name overwrote stored name: %q", user.Name)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Login(context.Background(), "ghost@example.com", ""); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestLogoutAndResolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@example.com", "A")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := svc.Logout(ctx, user); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	resolved, err := svc.Resolve(ctx, user.AuthToken)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if resolved != nil {
		t.Error("token still resolves after logout")
	}

	// Logout of a nil user is fine.
	if err := svc.Logout(ctx, nil); err != nil {
		t.Errorf("Logout(nil) failed: %v", err)
	}

	// Blank token is anonymous, not an error.
	anon, err := svc.Resolve(ctx, "")
	if err != nil || anon != nil {
		t.Errorf("Resolve(\"\") = %v, %v; want nil, nil", anon, err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		token, err := newToken()
		if err != nil {
			t.Fatalf("newToken() failed: %v", err)
		}
		if len(token) < 40 {
			t.Fatalf("token too short: %d chars", len(token))
		}
		if seen[token] {
			t.Fatal("duplicate token generated")
		}
		seen[token] = true
	}
}
