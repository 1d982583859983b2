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

const pointColumns = `p.id, p.layer_key, p.lat, p.lng, p.title, p.description,
	p.data_json, p.type, p.comment, p.created_by_user_id, p.created_by_name,
	p.created_from_ip, p.created_at, p.updated_at`

func scanPoint(row interface{ Scan(...any) error }) (*models.Point, error) {
	var p models.Point
	var data, userID, sourceIP sql.NullString
	err := row.Scan(&p.ID, &p.LayerKey, &p.Lat, &p.Lng, &p.Title, &p.Description,
		&data, &p.Type, &p.Comment, &userID, &p.CreatedByName,
		&sourceIP, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Data = data.String
	p.CreatedByUserID = userID.String
	p.CreatedFromIP = sourceIP.String
	return &p, nil
}

// InsertPoint creates a point. The target layer's existence and enabled
// state are re-verified inside the same transaction as the insert, so a
// concurrent layer disable cannot let a write slip through. Returns
// ErrNotFound when the layer is missing or disabled and ErrConflict on a
// duplicate id.
func (db *DB) InsertPoint(ctx context.Context, point *models.Point) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		var enabled bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_enabled FROM layers WHERE key = ?`, point.LayerKey).Scan(&enabled)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to verify layer %s: %w", point.LayerKey, err)
		}
		if !enabled {
			return ErrNotFound
		}

		now := time.Now().UTC()
		point.CreatedAt = now
		point.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO layer_points
				(id, layer_key, lat, lng, title, description, data_json,
				 type, comment, created_by_user_id, created_by_name,
				 created_from_ip, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			point.ID, point.LayerKey, point.Lat, point.Lng,
			point.Title, point.Description, nullIfEmpty(point.Data),
			point.Type, point.Comment, nullIfEmpty(point.CreatedByUserID),
			point.CreatedByName, nullIfEmpty(point.CreatedFromIP),
			point.CreatedAt, point.UpdatedAt)
		if err != nil {
			if isConstraintViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("failed to insert point: %w", err)
		}
		return nil
	})
}

// ListPointsByLayer returns every point of a layer, oldest first. Ties on
// the creation timestamp break on id so the order is stable.
func (db *DB) ListPointsByLayer(ctx context.Context, layerKey string) ([]*models.Point, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+pointColumns+` FROM layer_points p
		 WHERE p.layer_key = ? ORDER BY p.created_at, p.id`, layerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list points of %s: %w", layerKey, err)
	}
	defer rows.Close()

	points := make([]*models.Point, 0, 16)
	for rows.Next() {
		point, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

// GetPoint returns a point by id. Points in disabled layers are reported
// as ErrNotFound, indistinguishable from nonexistent ones.
func (db *DB) GetPoint(ctx context.Context, id string) (*models.Point, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+pointColumns+` FROM layer_points p
		 JOIN layers l ON l.key = p.layer_key
		 WHERE p.id = ? AND l.is_enabled`, id)
	point, err := scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query point %s: %w", id, err)
	}
	return point, nil
}

// UpdatePointComment replaces a point's comment.
func (db *DB) UpdatePointComment(ctx context.Context, id, comment string) error {
	result, err := db.conn.ExecContext(ctx, `
		UPDATE layer_points SET comment = ?, updated_at = ? WHERE id = ?`,
		comment, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update point %s: %w", id, err)
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

// DeletePoint removes a single point.
func (db *DB) DeletePoint(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM layer_points WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete point %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLayerPoints removes every point of a layer and returns how many
// rows went away.
func (db *DB) DeleteLayerPoints(ctx context.Context, layerKey string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM layer_points WHERE layer_key = ?`, layerKey)
	if err != nil {
		return 0, fmt.Errorf("failed to delete points of %s: %w", layerKey, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}
	return deleted, nil
}

// CountPointsInLayer returns the number of points stored in a layer.
func (db *DB) CountPointsInLayer(ctx context.Context, layerKey string) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM layer_points WHERE layer_key = ?`,
		layerKey).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count points of %s: %w", layerKey, err)
	}
	return count, nil
}
