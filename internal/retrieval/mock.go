package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// MockSource is an in-memory product source for tests and local
// development.
type MockSource struct {
	records []types.ProductRecord
	err     error
	log     *slog.Logger
}

var _ Source = (*MockSource)(nil)

func f(v float64) *float64 { return &v }

// NewMockSource creates a mock source seeded with a couple of fixtures.
func NewMockSource(logger *slog.Logger) *MockSource {
	return &MockSource{
		log: logger,
		records: []types.ProductRecord{
			{
				Name:            "Nutella",
				Brand:           "Ferrero",
				Barcode:         "3017620422003",
				IngredientsText: "sugar, palm oil, hazelnuts, cocoa, milk powder, soy lecithin, vanillin",
				Nutrients: map[types.NutrientKey]*float64{
					types.NutrientEnergyKcal:   f(539),
					types.NutrientFat:          f(30.9),
					types.NutrientSaturatedFat: f(10.6),
					types.NutrientSugars:       f(56.3),
					types.NutrientProtein:      f(6.3),
					types.NutrientSodium:       f(0.043),
				},
				SuppliedGradeTag: "e",
			},
			{
				Name:            "Organic Rolled Oats",
				Brand:           "Nature Path",
				Barcode:         "0058449771012",
				IngredientsText: "organic whole grain oats",
				Nutrients: map[types.NutrientKey]*float64{
					types.NutrientEnergyKcal: f(375),
					types.NutrientFat:        f(6.3),
					types.NutrientFiber:      f(10),
					types.NutrientProtein:    f(12.5),
					types.NutrientSodium:     f(0),
				},
			},
		},
	}
}

// LookupBarcode returns the fixture with the matching barcode, or nil.
func (m *MockSource) LookupBarcode(ctx context.Context, barcode string) (*types.ProductRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, record := range m.records {
		if record.Barcode == barcode {
			found := record
			found.ScanMethod = types.ScanMethodBarcode
			found.ScannedAt = time.Now().UTC()
			return &found, nil
		}
	}
	return nil, nil
}

// SearchProducts filters the fixtures by case-insensitive substring.
func (m *MockSource) SearchProducts(ctx context.Context, name, brand string, limit int) ([]types.ProductRecord, error) {
	if m.err != nil {
		return nil, m.err
	}

	var results []types.ProductRecord
	for _, record := range m.records {
		if name != "" && !containsFold(record.Name, name) {
			continue
		}
		if brand != "" && !containsFold(record.Brand, brand) {
			continue
		}
		found := record
		found.ScanMethod = types.ScanMethodSearch
		found.ScannedAt = time.Now().UTC()
		results = append(results, found)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// TestConnection always succeeds unless an error was injected.
func (m *MockSource) TestConnection(ctx context.Context) error {
	return m.err
}

// Close is a no-op.
func (m *MockSource) Close() error {
	return nil
}

// SetError injects an error for all subsequent calls.
func (m *MockSource) SetError(err error) {
	m.err = err
}

// SetRecords replaces the fixture set.
func (m *MockSource) SetRecords(records []types.ProductRecord) {
	m.records = records
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
