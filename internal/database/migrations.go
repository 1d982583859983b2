// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tomtom215/pinmap/internal/logging"
	"github.com/tomtom215/pinmap/internal/models"
)

// migration is a single forward-only schema step. Steps are additive and
// idempotent: each one also inspects the live schema before acting, so a
// database from any historical generation converges to the current shape
// even when its schema_migrations table is missing or incomplete.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, q queryer) error
}

var migrations = []migration{
	{1, "create_base_tables", migrateCreateBaseTables},
	{2, "rebuild_legacy_pin_enum", migrateRebuildLegacyPinEnum},
	{3, "add_pin_ownership_columns", migrateAddPinOwnershipColumns},
	{4, "add_layer_columns", migrateAddLayerColumns},
	{5, "add_point_columns", migrateAddPointColumns},
	{6, "backfill_pins_to_points", migrateBackfillPinsToPoints},
}

// Migrate brings the schema to the current version. Already-applied steps
// (per the schema_migrations marker table) are skipped.
func (db *DB) Migrate() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		logging.Info().Int("version", m.version).Str("name", m.name).
			Msg("Applying migration")
		// Step and marker commit together. DuckDB DDL is transactional, so
		// a crash mid-step (say during the pins rebuild) leaves the prior
		// schema intact instead of a half-renamed table.
		if err := db.inTx(ctx, func(tx *sql.Tx) error {
			if err := m.apply(ctx, tx); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
				m.version, m.name); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func migrateCreateBaseTables(ctx context.Context, q queryer) error {
	for _, stmt := range []string{
		createUsersTableSQL,
		createPinsTableSQL,
		createLayersTableSQL,
		createLayerPointsTableSQL,
	} {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// migrateRebuildLegacyPinEnum removes the generation-a CHECK constraint
// that limited pins.type to 'good'/'bad'. DuckDB cannot drop a CHECK in
// place, so the table is rebuilt and rows copied over.
func migrateRebuildLegacyPinEnum(ctx context.Context, q queryer) error {
	legacy, err := hasLegacyPinTypeCheck(ctx, q)
	if err != nil {
		return err
	}
	if !legacy {
		return nil
	}

	logging.Info().Msg("Rebuilding pins table to drop legacy type constraint")

	if _, err := q.ExecContext(ctx, `ALTER TABLE pins RENAME TO pins_legacy`); err != nil {
		return fmt.Errorf("failed to rename legacy pins table: %w", err)
	}
	if _, err := q.ExecContext(ctx, createPinsTableSQL); err != nil {
		return fmt.Errorf("failed to create replacement pins table: %w", err)
	}

	// Copy the intersection of the legacy and current column sets so every
	// surviving column keeps its value; the rest take defaults.
	legacyColumns, err := tableColumns(ctx, q, "pins_legacy")
	if err != nil {
		return err
	}
	var columns []string
	for _, c := range []string{
		"id", "lat", "lng", "type", "comment",
		"created_by_user_id", "created_by_name", "created_at", "updated_at",
	} {
		if legacyColumns[c] {
			columns = append(columns, c)
		}
	}
	copyColumns := strings.Join(columns, ", ")
	if _, err := q.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO pins (%s) SELECT %s FROM pins_legacy`,
		copyColumns, copyColumns)); err != nil {
		return fmt.Errorf("failed to copy legacy pin rows: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DROP TABLE pins_legacy`); err != nil {
		return fmt.Errorf("failed to drop legacy pins table: %w", err)
	}
	return nil
}

func migrateAddPinOwnershipColumns(ctx context.Context, q queryer) error {
	additions := []struct{ column, definition string }{
		{"comment", `comment TEXT NOT NULL DEFAULT ''`},
		{"created_by_user_id", `created_by_user_id TEXT`},
		{"created_by_name", `created_by_name TEXT NOT NULL DEFAULT 'Neznamy'`},
		{"updated_at", `updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`},
	}
	for _, a := range additions {
		if err := addColumnIfMissing(ctx, q, "pins", a.column, a.definition); err != nil {
			return err
		}
	}

	// Blank creator names from before the column existed get the placeholder.
	if _, err := q.ExecContext(ctx, `
		UPDATE pins SET created_by_name = ?
		WHERE created_by_name IS NULL OR TRIM(created_by_name) = ''`,
		models.AnonymousCreatorName); err != nil {
		return fmt.Errorf("failed to normalize pin creator names: %w", err)
	}
	return nil
}

func migrateAddLayerColumns(ctx context.Context, q queryer) error {
	additions := []struct{ column, definition string }{
		{"kind", `kind TEXT NOT NULL DEFAULT 'static'`},
		{"allow_user_points", `allow_user_points BOOLEAN NOT NULL DEFAULT false`},
		{"is_enabled", `is_enabled BOOLEAN NOT NULL DEFAULT true`},
		{"sort_order", `sort_order INTEGER NOT NULL DEFAULT 100`},
		{"updated_at", `updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`},
	}
	for _, a := range additions {
		if err := addColumnIfMissing(ctx, q, "layers", a.column, a.definition); err != nil {
			return err
		}
	}
	return nil
}

func migrateAddPointColumns(ctx context.Context, q queryer) error {
	additions := []struct{ column, definition string }{
		{"title", `title TEXT NOT NULL DEFAULT ''`},
		{"description", `description TEXT NOT NULL DEFAULT ''`},
		{"data_json", `data_json TEXT`},
		{"type", `type TEXT NOT NULL DEFAULT ''`},
		{"comment", `comment TEXT NOT NULL DEFAULT ''`},
		{"created_by_user_id", `created_by_user_id TEXT`},
		{"created_by_name", `created_by_name TEXT NOT NULL DEFAULT 'Neznamy'`},
		{"created_from_ip", `created_from_ip TEXT`},
		{"updated_at", `updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`},
	}
	for _, a := range additions {
		if err := addColumnIfMissing(ctx, q, "layer_points", a.column, a.definition); err != nil {
			return err
		}
	}
	return nil
}

// migrateBackfillPinsToPoints copies legacy pins rows into the feelings
// layer. It runs only when the feelings layer holds no points yet, so a
// database that already went through the backfill is never touched again
// even if the marker row is missing.
func migrateBackfillPinsToPoints(ctx context.Context, q queryer) error {
	// A database whose legacy table was already dropped has nothing to
	// backfill from.
	ok, err := tableExists(ctx, q, "pins")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var existing int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM layer_points WHERE layer_key = ?`,
		models.FeelingsLayerKey).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count feelings points: %w", err)
	}
	if existing > 0 {
		return nil
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO layer_points
			(id, layer_key, lat, lng, type, comment,
			 created_by_user_id, created_by_name, created_at, updated_at)
		SELECT id, ?, lat, lng, type, comment,
			created_by_user_id, created_by_name, created_at, updated_at
		FROM pins
		ON CONFLICT DO NOTHING`,
		models.FeelingsLayerKey)
	if err != nil {
		return fmt.Errorf("failed to backfill pins into layer_points: %w", err)
	}
	if copied, err := result.RowsAffected(); err == nil && copied > 0 {
		logging.Info().Int64("points", copied).Msg("Backfilled legacy pins into feelings layer")
	}
	return nil
}
