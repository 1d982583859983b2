// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/pinmap/internal/models"
)

func TestGetLayerUnknown(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetLayer(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListEnabledLayersOrderAndFiltering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	extra := []models.Layer{
		{Key: "zebra", Name: "Z", Kind: "static", IsEnabled: true, SortOrder: 5},
		{Key: "alpha", Name: "A", Kind: "static", IsEnabled: true, SortOrder: 5},
		{Key: "off", Name: "Off", Kind: "static", IsEnabled: false, SortOrder: 1},
	}
	for i := range extra {
		if err := db.UpsertLayer(ctx, &extra[i]); err != nil {
			t.Fatalf("UpsertLayer(%s) failed: %v", extra[i].Key, err)
		}
	}

	layers, err := db.ListEnabledLayers(ctx)
	if err != nil {
		t.Fatalf("ListEnabledLayers() failed: %v", err)
	}

	var keys []string
	for _, l := range layers {
		keys = append(keys, l.Key)
	}
	// sort_order ascending, key ascending on ties; disabled rows absent.
	want := []string{"alpha", "zebra", models.FeelingsLayerKey, "city_buildings"}
	if len(keys) != len(want) {
		t.Fatalf("got layers %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("layers[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestInsertLayerIfAbsentDoesNotOverwrite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tweaked := models.Layer{Key: models.FeelingsLayerKey, Name: "Other", Kind: "static"}
	if err := db.InsertLayerIfAbsent(ctx, &tweaked); err != nil {
		t.Fatalf("InsertLayerIfAbsent() failed: %v", err)
	}

	layer, err := db.GetLayer(ctx, models.FeelingsLayerKey)
	if err != nil {
		t.Fatalf("GetLayer() failed: %v", err)
	}
	if layer.Name != models.DefaultLayers[0].Name {
		t.Errorf("existing layer overwritten: name = %q", layer.Name)
	}
}
