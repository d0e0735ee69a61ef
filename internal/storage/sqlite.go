// Package storage provides the durable store for the history log. The
// reconciler is pure and returns a whole new log, so the store exposes
// load/save over the full entry list rather than per-row mutation.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// Store persists history entries in a local SQLite database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// analysisPayload carries the list-valued analysis fields as one JSON
// column; scalar fields get their own columns for querying.
type analysisPayload struct {
	Warnings           []string                      `json:"warnings"`
	Benefits           []string                      `json:"benefits"`
	IngredientFindings []types.IngredientFinding     `json:"ingredient_findings"`
	DietFindings       []types.DietFinding           `json:"diet_findings"`
	NutrientSnapshot   map[types.NutrientKey]float64 `json:"nutrient_snapshot"`
	Notes              string                        `json:"notes,omitempty"`
}

// Open opens (and if needed creates) the history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db, log: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable. Used by health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		position     INTEGER NOT NULL,
		id           TEXT PRIMARY KEY,
		product_name TEXT NOT NULL,
		brand        TEXT NOT NULL,
		category     TEXT NOT NULL,
		health_score INTEGER NOT NULL,
		grade        TEXT NOT NULL,
		scanned_at   TEXT NOT NULL,
		scan_method  TEXT NOT NULL,
		is_favorite  INTEGER NOT NULL DEFAULT 0,
		payload      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_position ON history(position);
	CREATE INDEX IF NOT EXISTS idx_history_product_name ON history(product_name);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Load returns the full history log in stored order (newest first).
// An empty database yields an empty, non-nil slice.
func (s *Store) Load(ctx context.Context) ([]types.HistoryEntry, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_name, brand, category, health_score, grade,
		       scanned_at, scan_method, is_favorite, payload
		FROM history
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		var entry types.HistoryEntry
		var scannedAtStr, payloadStr string
		var favorite int

		if err := rows.Scan(&entry.ID, &entry.ProductName, &entry.Brand,
			&entry.Category, &entry.HealthScore, &entry.Grade,
			&scannedAtStr, &entry.ScanMethod, &favorite, &payloadStr); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		entry.ScannedAt, err = time.Parse(time.RFC3339Nano, scannedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse scanned_at for %s: %w", entry.ID, err)
		}
		entry.IsFavorite = favorite != 0

		var payload analysisPayload
		if err := json.Unmarshal([]byte(payloadStr), &payload); err != nil {
			// A corrupt payload should not take the whole log down.
			s.log.Error("skipping corrupt history payload", "id", entry.ID, "error", err)
			continue
		}
		entry.Warnings = payload.Warnings
		entry.Benefits = payload.Benefits
		entry.IngredientFindings = payload.IngredientFindings
		entry.DietFindings = payload.DietFindings
		entry.NutrientSnapshot = payload.NutrientSnapshot
		entry.Notes = payload.Notes

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows error: %w", err)
	}

	s.log.Debug("history loaded", "entries", len(entries), "duration", time.Since(start))
	return entries, nil
}

// Save replaces the stored log with the given entries in one
// transaction, keeping slice order as the stored order.
func (s *Store) Save(ctx context.Context, entries []types.HistoryEntry) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (position, id, product_name, brand, category,
		                     health_score, grade, scanned_at, scan_method,
		                     is_favorite, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, entry := range entries {
		payload, err := json.Marshal(analysisPayload{
			Warnings:           entry.Warnings,
			Benefits:           entry.Benefits,
			IngredientFindings: entry.IngredientFindings,
			DietFindings:       entry.DietFindings,
			NutrientSnapshot:   entry.NutrientSnapshot,
			Notes:              entry.Notes,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal payload for %s: %w", entry.ID, err)
		}

		favorite := 0
		if entry.IsFavorite {
			favorite = 1
		}

		if _, err := stmt.ExecContext(ctx, i, entry.ID, entry.ProductName,
			entry.Brand, string(entry.Category), entry.HealthScore,
			string(entry.Grade), entry.ScannedAt.Format(time.RFC3339Nano),
			string(entry.ScanMethod), favorite, string(payload)); err != nil {
			return fmt.Errorf("failed to insert history entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}

	s.log.Debug("history saved", "entries", len(entries), "duration", time.Since(start))
	return nil
}
