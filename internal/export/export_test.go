package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

func TestHistory_EnvelopeShape(t *testing.T) {
	entries := []types.HistoryEntry{
		{
			ID: "id-1",
			AnalysisRecord: types.AnalysisRecord{
				ProductName: "Granola Bar",
				Category:    types.CategoryGrains,
				HealthScore: 90,
				Grade:       "A",
				ScannedAt:   time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC),
				ScanMethod:  types.ScanMethodBarcode,
			},
		},
		{
			ID: "id-2",
			AnalysisRecord: types.AnalysisRecord{
				ProductName: "Soda",
				Category:    types.CategoryBeverages,
				HealthScore: 30,
				Grade:       "E",
			},
		},
	}

	data, err := History(entries)
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(data, &envelope))

	assert.Equal(t, FormatVersion, envelope.FormatVersion)
	assert.Equal(t, 2, envelope.Count)
	assert.WithinDuration(t, time.Now().UTC(), envelope.ExportedAt, time.Minute)
	require.Len(t, envelope.Entries, 2)
	assert.Equal(t, "id-1", envelope.Entries[0].ID, "export preserves log order")
	assert.Equal(t, "Soda", envelope.Entries[1].ProductName)
}

func TestHistory_NilEntries(t *testing.T) {
	data, err := History(nil)
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, 0, envelope.Count)
	assert.NotNil(t, envelope.Entries)
	assert.Empty(t, envelope.Entries)
}

func TestRecord_RoundTrip(t *testing.T) {
	record := types.AnalysisRecord{
		ProductName: "Granola Bar",
		HealthScore: 90,
		Grade:       "A",
		Warnings:    []string{"High in calories"},
	}

	data, err := Record(record)
	require.NoError(t, err)

	var decoded types.AnalysisRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record.ProductName, decoded.ProductName)
	assert.Equal(t, record.HealthScore, decoded.HealthScore)
	assert.Equal(t, record.Warnings, decoded.Warnings)
}
