// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

// Package authz decides what a caller may do to a point. The policy is a
// pure function of role and ownership; it touches no storage and no HTTP.
package authz

import "github.com/tomtom215/pinmap/internal/models"

// Permissions describes what one caller may do with one point.
type Permissions struct {
	CanRead   bool
	CanEdit   bool
	CanDelete bool
}

// Decide computes permissions for a caller over a point. user is nil for
// anonymous callers. Admins may edit and delete anything; moderators and
// plain users only their own points; anonymous callers only read.
//
// Moderators currently hold no extra power over users. The role exists so
// granting it later is a policy change, not a schema change.
func Decide(user *models.User, ownerID string) Permissions {
	p := Permissions{CanRead: true}
	if user == nil {
		return p
	}
	if user.Role == models.RoleAdmin {
		p.CanEdit = true
		p.CanDelete = true
		return p
	}
	if ownerID != "" && ownerID == user.ID {
		p.CanEdit = true
		p.CanDelete = true
	}
	return p
}

// CanBulkDelete reports whether the caller may wipe an entire layer.
// Admin only.
func CanBulkDelete(user *models.User) bool {
	return user.IsAdmin()
}
