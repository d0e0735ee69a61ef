// Package service hosts the analysis core behind a single-writer
// discipline: the reconciler and the SQLite store assume exclusive
// access to the history log during one read-modify-write cycle, so every
// mutation of the log goes through the mutex held here. Analysis itself
// is stateless and runs outside the lock.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foodsnap/nutrition-engine/internal/analysis"
	"github.com/foodsnap/nutrition-engine/internal/export"
	"github.com/foodsnap/nutrition-engine/internal/history"
	"github.com/foodsnap/nutrition-engine/internal/retrieval"
	"github.com/foodsnap/nutrition-engine/internal/types"
)

// HistoryStore is the persistence collaborator surface the service needs.
type HistoryStore interface {
	Load(ctx context.Context) ([]types.HistoryEntry, error)
	Save(ctx context.Context, entries []types.HistoryEntry) error
	Ping(ctx context.Context) error
}

// Service wires analyzer, reconciler, store and product source together.
type Service struct {
	analyzer   *analysis.Analyzer
	reconciler *history.Reconciler
	store      HistoryStore
	source     retrieval.Source
	log        *slog.Logger

	mu sync.Mutex // serializes history read-modify-write cycles
}

// New creates a service. source may be nil when the host runs without a
// product dataset (manual analysis only).
func New(analyzer *analysis.Analyzer, reconciler *history.Reconciler, store HistoryStore, source retrieval.Source, logger *slog.Logger) *Service {
	return &Service{
		analyzer:   analyzer,
		reconciler: reconciler,
		store:      store,
		source:     source,
		log:        logger,
	}
}

// AnalyzeAndRecord analyzes a product record and folds the result into
// the persisted history log under the duplicate-suppression window.
func (s *Service) AnalyzeAndRecord(ctx context.Context, record types.ProductRecord) (types.AnalysisRecord, error) {
	result := s.analyzer.Analyze(record)

	if err := s.record(ctx, result, false); err != nil {
		return types.AnalysisRecord{}, err
	}
	return result, nil
}

// MergeDetailedAnalysis analyzes a product record and folds the result
// into the log under the short merge window, the path used when a
// detailed analysis completes right after a lightweight scan entry was
// created.
func (s *Service) MergeDetailedAnalysis(ctx context.Context, record types.ProductRecord) (types.AnalysisRecord, error) {
	result := s.analyzer.Analyze(record)

	if err := s.record(ctx, result, true); err != nil {
		return types.AnalysisRecord{}, err
	}
	return result, nil
}

func (s *Service) record(ctx context.Context, result types.AnalysisRecord, shortWindow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if shortWindow {
		log = s.reconciler.MergeAnalysis(log, result)
	} else {
		log = s.reconciler.Reconcile(log, result)
	}

	if err := s.store.Save(ctx, log); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	s.log.Debug("history reconciled",
		"product", result.ProductName,
		"entries", len(log),
		"short_window", shortWindow)
	return nil
}

// LookupAndAnalyze retrieves a product by barcode and runs the full
// analyze-and-record path. Returns (nil, nil) when the barcode is
// unknown.
func (s *Service) LookupAndAnalyze(ctx context.Context, barcode string) (*types.AnalysisRecord, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no product source configured")
	}

	record, err := s.source.LookupBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("barcode lookup failed: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	result, err := s.AnalyzeAndRecord(ctx, *record)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchProducts finds products by name and brand in the product
// source without analyzing or recording them.
func (s *Service) SearchProducts(ctx context.Context, name, brand string, limit int) ([]types.ProductRecord, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no product source configured")
	}
	if limit <= 0 {
		limit = 10
	}

	results, err := s.source.SearchProducts(ctx, name, brand, limit)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	return results, nil
}

// History returns up to limit entries from the log, newest first.
// limit <= 0 means all entries.
func (s *Service) History(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// SetFavorite flips the favorite flag on one entry. Returns false when
// no entry has the given id.
func (s *Service) SetFavorite(ctx context.Context, id string, favorite bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load history: %w", err)
	}

	found := false
	for i := range entries {
		if entries[i].ID == id {
			entries[i].IsFavorite = favorite
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	if err := s.store.Save(ctx, entries); err != nil {
		return false, fmt.Errorf("failed to save history: %w", err)
	}
	return true, nil
}

// ExportHistory serializes the full log to the JSON interchange format.
func (s *Service) ExportHistory(ctx context.Context) ([]byte, error) {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return export.History(entries)
}

// HealthCheck verifies the persistence collaborator is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.store.Ping(ctx)
}
