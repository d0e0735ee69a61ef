package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsnap/nutrition-engine/internal/config"
	"github.com/foodsnap/nutrition-engine/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, config.NewTestLogger(io.Discard, "ERROR"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(id, name string, scannedAt time.Time) types.HistoryEntry {
	return types.HistoryEntry{
		ID: id,
		AnalysisRecord: types.AnalysisRecord{
			ProductName: name,
			Brand:       "Hearth & Oat",
			Category:    types.CategoryGrains,
			HealthScore: 90,
			Grade:       "A",
			Warnings:    []string{"High in calories"},
			Benefits:    []string{"High in fiber"},
			IngredientFindings: []types.IngredientFinding{
				{Ingredient: "organic oats", Status: types.StatusGood, Reason: "Whole grain"},
			},
			DietFindings: []types.DietFinding{
				{Diet: types.DietVegan, Compatible: true, Reason: "No animal-derived ingredients detected"},
			},
			NutrientSnapshot: map[types.NutrientKey]float64{
				types.NutrientEnergyKcal: 380,
				types.NutrientFiber:      6,
			},
			ScannedAt:  scannedAt,
			ScanMethod: types.ScanMethodBarcode,
		},
	}
}

func TestStore_LoadEmptyDatabase(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	scannedAt := time.Date(2026, 5, 2, 12, 0, 0, 123456789, time.UTC)

	in := []types.HistoryEntry{
		sampleEntry("id-1", "Granola Bar", scannedAt),
		sampleEntry("id-2", "Soda", scannedAt.Add(-time.Hour)),
	}
	in[0].IsFavorite = true

	require.NoError(t, store.Save(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "id-1", out[0].ID, "stored order is slice order")
	assert.Equal(t, "id-2", out[1].ID)
	assert.True(t, out[0].IsFavorite)
	assert.False(t, out[1].IsFavorite)

	got := out[0]
	assert.Equal(t, "Granola Bar", got.ProductName)
	assert.Equal(t, types.CategoryGrains, got.Category)
	assert.Equal(t, 90, got.HealthScore)
	assert.Equal(t, types.Grade("A"), got.Grade)
	assert.Equal(t, []string{"High in calories"}, got.Warnings)
	assert.Equal(t, []string{"High in fiber"}, got.Benefits)
	assert.Len(t, got.IngredientFindings, 1)
	assert.Len(t, got.DietFindings, 1)
	assert.Equal(t, 380.0, got.NutrientSnapshot[types.NutrientEnergyKcal])
	assert.True(t, got.ScannedAt.Equal(scannedAt), "sub-second precision survives the round trip")
	assert.Equal(t, types.ScanMethodBarcode, got.ScanMethod)
}

func TestStore_SaveReplacesPreviousLog(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.Save(context.Background(), []types.HistoryEntry{
		sampleEntry("id-1", "Granola Bar", now),
		sampleEntry("id-2", "Soda", now),
	}))
	require.NoError(t, store.Save(context.Background(), []types.HistoryEntry{
		sampleEntry("id-3", "Juice", now),
	}))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "id-3", out[0].ID)
}

func TestStore_SaveEmptyLogClears(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.Save(context.Background(), []types.HistoryEntry{
		sampleEntry("id-1", "Granola Bar", now),
	}))
	require.NoError(t, store.Save(context.Background(), nil))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStore_Ping(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	logger := config.NewTestLogger(io.Discard, "ERROR")
	now := time.Now().UTC()

	store, err := Open(path, logger)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), []types.HistoryEntry{
		sampleEntry("id-1", "Granola Bar", now),
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	out, err := reopened.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Granola Bar", out[0].ProductName)
}
