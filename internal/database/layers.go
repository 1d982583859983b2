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

const layerColumns = `key, name, kind, allow_user_points, is_enabled,
	sort_order, created_at, updated_at`

func scanLayer(row interface{ Scan(...any) error }) (*models.Layer, error) {
	var l models.Layer
	err := row.Scan(&l.Key, &l.Name, &l.Kind, &l.AllowUserPoints,
		&l.IsEnabled, &l.SortOrder, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLayer returns a layer by key regardless of its enabled state, or
// ErrNotFound. Callers decide how a disabled layer is presented.
func (db *DB) GetLayer(ctx context.Context, key string) (*models.Layer, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+layerColumns+` FROM layers WHERE key = ?`, key)
	layer, err := scanLayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query layer %s: %w", key, err)
	}
	return layer, nil
}

// ListEnabledLayers returns every enabled layer in catalog order.
func (db *DB) ListEnabledLayers(ctx context.Context) ([]*models.Layer, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+layerColumns+` FROM layers WHERE is_enabled ORDER BY sort_order, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list layers: %w", err)
	}
	defer rows.Close()

	layers := make([]*models.Layer, 0, 4)
	for rows.Next() {
		layer, err := scanLayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}
		layers = append(layers, layer)
	}
	return layers, rows.Err()
}

// InsertLayerIfAbsent creates the layer only when no row with its key
// exists. Existing rows keep whatever an operator configured.
func (db *DB) InsertLayerIfAbsent(ctx context.Context, layer *models.Layer) error {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO layers (key, name, kind, allow_user_points, is_enabled,
			sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		layer.Key, layer.Name, layer.Kind, layer.AllowUserPoints,
		layer.IsEnabled, layer.SortOrder, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert layer %s: %w", layer.Key, err)
	}
	return nil
}

// UpsertLayer creates or replaces a layer row by key. On conflict the
// name, kind, and flags take the new values and updated_at is bumped;
// created_at stays.
func (db *DB) UpsertLayer(ctx context.Context, layer *models.Layer) error {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO layers (key, name, kind, allow_user_points, is_enabled,
			sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			allow_user_points = excluded.allow_user_points,
			is_enabled = excluded.is_enabled,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at`,
		layer.Key, layer.Name, layer.Kind, layer.AllowUserPoints,
		layer.IsEnabled, layer.SortOrder, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert layer %s: %w", layer.Key, err)
	}
	return nil
}

// EnsureDefaultLayers upserts the built-in layer rows at startup. Unlike
// the seed loader this does overwrite: the built-ins are owned by the
// binary, not by operators.
func (db *DB) EnsureDefaultLayers(ctx context.Context) error {
	for i := range models.DefaultLayers {
		if err := db.UpsertLayer(ctx, &models.DefaultLayers[i]); err != nil {
			return err
		}
	}
	return nil
}
