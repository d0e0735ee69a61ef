// Package export serializes history logs to a stable JSON interchange
// format for user-requested data downloads.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// FormatVersion identifies the export envelope layout. Bump on breaking
// changes so importers can dispatch.
const FormatVersion = 1

// Envelope wraps an exported history log with provenance metadata.
type Envelope struct {
	FormatVersion int                  `json:"format_version"`
	ExportedAt    time.Time            `json:"exported_at"`
	Count         int                  `json:"count"`
	Entries       []types.HistoryEntry `json:"entries"`
}

// History serializes the given log as indented JSON. The entry order is
// preserved as-is (newest first, as the reconciler maintains it).
func History(entries []types.HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	envelope := Envelope{
		FormatVersion: FormatVersion,
		ExportedAt:    time.Now().UTC(),
		Count:         len(entries),
		Entries:       entries,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history export: %w", err)
	}
	return data, nil
}

// Record serializes a single analysis record as indented JSON.
func Record(record types.AnalysisRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis record: %w", err)
	}
	return data, nil
}
