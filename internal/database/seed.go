// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pinmap/internal/logging"
	"github.com/tomtom215/pinmap/internal/models"
	"github.com/tomtom215/pinmap/internal/validation"
)

// seedCreatorName marks rows that arrived through a seed document rather
// than a user submission.
const seedCreatorName = "Seed data"

// seedFile is the on-disk seed document shape. "pins" is the historical
// section and feeds the feelings layer; "points" name their layer.
type seedFile struct {
	Layers []seedLayer `json:"layers"`
	Pins   []seedPoint `json:"pins"`
	Points []seedPoint `json:"points"`
}

type seedLayer struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	AllowUserPoints bool   `json:"allow_user_points"`
	IsEnabled       *bool  `json:"is_enabled"`
	SortOrder       int    `json:"sort_order"`
}

type seedPoint struct {
	ID            string         `json:"id"`
	Layer         string         `json:"layer"`
	Lat           *float64       `json:"lat"`
	Lng           *float64       `json:"lng"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Data          map[string]any `json:"data"`
	Type          string         `json:"type"`
	Comment       string         `json:"comment"`
	CreatedByName string         `json:"created_by_name"`
}

// Seed loads the seed document at path and applies it. Layers are created
// only when absent; points go only into layers that hold no points yet.
// Seeding is best-effort: a missing, unreadable, or malformed file is
// logged and skipped, never fatal. The returned error covers only storage
// failures.
func (db *DB) Seed(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug().Str("path", path).Msg("No seed file, skipping")
		return nil
	}
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Cannot read seed file, skipping")
		return nil
	}

	var doc seedFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Cannot parse seed file, skipping")
		return nil
	}

	for i := range doc.Layers {
		sl := &doc.Layers[i]
		if err := validation.GetValidator().Var(sl.Key, "layerkey"); err != nil {
			logging.Warn().Str("key", sl.Key).Msg("Skipping seed layer with an unusable key")
			continue
		}
		enabled := true
		if sl.IsEnabled != nil {
			enabled = *sl.IsEnabled
		}
		kind := sl.Kind
		if kind == "" {
			kind = "static"
		}
		layer := models.Layer{
			Key:             sl.Key,
			Name:            sl.Name,
			Kind:            kind,
			AllowUserPoints: sl.AllowUserPoints,
			IsEnabled:       enabled,
			SortOrder:       sl.SortOrder,
		}
		if err := db.InsertLayerIfAbsent(ctx, &layer); err != nil {
			return err
		}
	}

	// Route the historical pins section to the feelings layer, then group
	// everything so the emptiness check runs once per layer.
	byLayer := make(map[string][]*seedPoint)
	for i := range doc.Pins {
		sp := &doc.Pins[i]
		if strings.TrimSpace(sp.Type) == "" {
			logging.Warn().Str("id", sp.ID).Msg("Skipping seed pin without a type")
			continue
		}
		byLayer[models.FeelingsLayerKey] = append(byLayer[models.FeelingsLayerKey], sp)
	}
	for i := range doc.Points {
		sp := &doc.Points[i]
		if sp.Layer == "" {
			logging.Warn().Str("id", sp.ID).Msg("Skipping seed point without a layer")
			continue
		}
		byLayer[sp.Layer] = append(byLayer[sp.Layer], sp)
	}

	seeded := 0
	for layerKey, pts := range byLayer {
		count, err := db.CountPointsInLayer(ctx, layerKey)
		if err != nil {
			return err
		}
		if count > 0 {
			logging.Debug().Str("layer", layerKey).
				Msg("Layer already has points, skipping seed")
			continue
		}
		for _, sp := range pts {
			if sp.Lat == nil || sp.Lng == nil {
				logging.Warn().Str("layer", layerKey).Str("id", sp.ID).
					Msg("Skipping seed point without coordinates")
				continue
			}
			point, err := sp.toPoint(layerKey)
			if err != nil {
				logging.Warn().Str("layer", layerKey).Str("id", sp.ID).
					Err(err).Msg("Skipping unusable seed point")
				continue
			}
			if err := db.InsertPoint(ctx, point); err != nil {
				// A row aimed at an unknown or disabled layer, or reusing
				// an id, is a document problem, not a startup blocker.
				if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
					logging.Warn().Str("layer", layerKey).Str("id", point.ID).
						Err(err).Msg("Skipping unusable seed point")
					continue
				}
				return err
			}
			seeded++
		}
	}

	if seeded > 0 {
		logging.Info().Int("points", seeded).Str("path", path).Msg("Seeded points")
	}
	return nil
}

func (sp *seedPoint) toPoint(layerKey string) (*models.Point, error) {
	id := strings.TrimSpace(sp.ID)
	if id == "" {
		id = "pt_" + uuid.NewString()
	}
	var data string
	if len(sp.Data) > 0 {
		encoded, err := json.Marshal(sp.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode seed point data: %w", err)
		}
		data = string(encoded)
	}
	creator := strings.TrimSpace(sp.CreatedByName)
	if creator == "" {
		creator = seedCreatorName
	}
	return &models.Point{
		ID:            id,
		LayerKey:      layerKey,
		Lat:           *sp.Lat,
		Lng:           *sp.Lng,
		Title:         models.Truncate(sp.Title, models.MaxTitleLen),
		Description:   models.Truncate(sp.Description, models.MaxDescriptionLen),
		Data:          data,
		Type:          models.Truncate(sp.Type, models.MaxTypeLen),
		Comment:       models.Truncate(sp.Comment, models.MaxCommentLen),
		CreatedByName: models.Truncate(creator, models.MaxCreatorNameLen),
	}, nil
}
