// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

/*
schema.go - Table definitions and live-schema introspection

Tables:
  - users: accounts with role and the single live bearer token
  - layers: the layer catalog (built-in "feelings" plus operator layers)
  - layer_points: generalized points, one row per annotation
  - pins: the legacy generation-a/b table, kept only as a migration source

FOREIGN KEY clauses are deliberately absent: DuckDB restricts ALTER TABLE on
tables participating in FK constraints, which would break column-addition
migrations. Referential checks run in the store layer inside the mutation
transaction instead.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const createUsersTableSQL = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	auth_token TEXT UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at TIMESTAMP
)`

const createPinsTableSQL = `
CREATE TABLE IF NOT EXISTS pins (
	id TEXT PRIMARY KEY,
	lat DOUBLE NOT NULL,
	lng DOUBLE NOT NULL,
	type TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	created_by_user_id TEXT,
	created_by_name TEXT NOT NULL DEFAULT 'Neznamy',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const createLayersTableSQL = `
CREATE TABLE IF NOT EXISTS layers (
	key TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT 'static',
	allow_user_points BOOLEAN NOT NULL DEFAULT false,
	is_enabled BOOLEAN NOT NULL DEFAULT true,
	sort_order INTEGER NOT NULL DEFAULT 100,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const createLayerPointsTableSQL = `
CREATE TABLE IF NOT EXISTS layer_points (
	id TEXT PRIMARY KEY,
	layer_key TEXT NOT NULL,
	lat DOUBLE NOT NULL,
	lng DOUBLE NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	data_json TEXT,
	type TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	created_by_user_id TEXT,
	created_by_name TEXT NOT NULL DEFAULT 'Neznamy',
	created_from_ip TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// tableExists reports whether a table with the given name exists.
func tableExists(ctx context.Context, q queryer, table string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`,
		table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return count > 0, nil
}

// tableColumns returns the set of live column names for a table.
// Inspecting the live column set (rather than assuming a fixed prior
// version) lets upgrades from any historical generation converge.
func tableColumns(ctx context.Context, q queryer, table string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = ?`,
		table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		if name != "" {
			columns[name] = true
		}
	}
	return columns, rows.Err()
}

// addColumnIfMissing adds a column to a table unless the live column set
// already contains it. definition is the full column clause, e.g.
// "created_by_name TEXT NOT NULL DEFAULT 'Neznamy'".
func addColumnIfMissing(ctx context.Context, q queryer, table, column, definition string) error {
	columns, err := tableColumns(ctx, q, table)
	if err != nil {
		return err
	}
	if columns[column] {
		return nil
	}
	if _, err := q.ExecContext(ctx,
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, definition)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

// hasLegacyPinTypeCheck detects the generation-a CHECK constraint that
// restricted pins.type to the closed ('good', 'bad') enumeration.
func hasLegacyPinTypeCheck(ctx context.Context, q queryer) (bool, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT constraint_text FROM duckdb_constraints()
		 WHERE table_name = 'pins' AND constraint_type = 'CHECK'`)
	if err != nil {
		return false, fmt.Errorf("failed to inspect pins constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return false, fmt.Errorf("failed to scan constraint text: %w", err)
		}
		if strings.Contains(text, "'good'") && strings.Contains(text, "'bad'") {
			return true, nil
		}
	}
	return false, rows.Err()
}
