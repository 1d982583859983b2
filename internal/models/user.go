// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

// Package models defines the typed records for Pinmap's entities.
//
// Every stored column maps to an explicit struct field with a defined
// default; nothing is accessed through untyped row lookups.
package models

import "time"

// Role is a user's permission level.
type Role string

// User roles, from most to least privileged.
const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// User is a registered account. AuthToken holds the single live bearer
// token, or empty when logged out.
type User struct {
	ID          string
	Email       string
	Name        string
	Role        Role
	AuthToken   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserPayload is the public projection of a User (no token, no timestamps).
type UserPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Payload returns the public projection of the user.
func (u *User) Payload() UserPayload {
	return UserPayload{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
