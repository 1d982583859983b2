// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/pinmap/internal/models"
)

const userColumns = `id, email, name, role, auth_token,
	created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var token sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &token,
		&u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	u.AuthToken = token.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

// RegisterUser inserts a new account. The very first account becomes admin;
// everyone after that starts as a plain user. Returns ErrConflict when the
// email is already registered.
func (db *DB) RegisterUser(ctx context.Context, user *models.User) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE email = ?`, user.Email).Scan(&existing); err != nil {
			return fmt.Errorf("failed to check existing email: %w", err)
		}
		if existing > 0 {
			return ErrConflict
		}

		var total int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if total == 0 {
			user.Role = models.RoleAdmin
		}

		// Registering logs the user in, so the login timestamp starts now.
		now := time.Now().UTC()
		user.CreatedAt = now
		user.UpdatedAt = now
		user.LastLoginAt = &now

		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, name, role, auth_token, created_at, updated_at, last_login_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.Name, string(user.Role),
			nullIfEmpty(user.AuthToken), user.CreatedAt, user.UpdatedAt, now)
		if err != nil {
			if isConstraintViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
}

// GetUserByEmail returns the account for an email, or ErrNotFound.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return user, nil
}

// GetUserByToken resolves a bearer token to its account, or ErrNotFound.
func (db *DB) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth_token = ?`, token)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by token: %w", err)
	}
	return user, nil
}

// UpdateUserLogin records a login: new bearer token, refreshed display name,
// and the login timestamp. Issuing a token invalidates any previous one.
func (db *DB) UpdateUserLogin(ctx context.Context, userID, name, token string) error {
	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx, `
		UPDATE users SET name = ?, auth_token = ?, last_login_at = ?, updated_at = ?
		WHERE id = ?`,
		name, token, now, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update user login: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearUserToken logs the user out by discarding the live token.
func (db *DB) ClearUserToken(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE users SET auth_token = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to clear user token: %w", err)
	}
	return nil
}

// CountUsers returns the number of registered accounts.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
