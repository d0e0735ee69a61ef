package types

import "time"

// ScanMethod records how a product record reached the engine.
type ScanMethod string

const (
	ScanMethodBarcode ScanMethod = "barcode"
	ScanMethodSearch  ScanMethod = "search"
	ScanMethodVoice   ScanMethod = "voice"
	ScanMethodManual  ScanMethod = "manual"
)

// ProductRecord is the raw input supplied by a capture/retrieval
// collaborator: a product name and brand, a free-text ingredient list and
// per-100g nutrient values. Nil nutrient pointers mean "not reported".
// A record is produced once and never mutated by the engine.
type ProductRecord struct {
	Name             string                   `json:"name"`
	Brand            string                   `json:"brand"`
	IngredientsText  string                   `json:"ingredients_text"`
	Nutrients        map[NutrientKey]*float64 `json:"nutrients"`
	SuppliedGradeTag string                   `json:"supplied_grade_tag,omitempty"`
	Barcode          string                   `json:"barcode,omitempty"`
	ScanMethod       ScanMethod               `json:"scan_method"`
	ScannedAt        time.Time                `json:"scanned_at"`
}

// Nutrient returns the reported value for key, or 0 when the value is
// absent. Missing values never fail a rule, they evaluate as zero.
func (p *ProductRecord) Nutrient(key NutrientKey) float64 {
	if p.Nutrients == nil {
		return 0
	}
	if v := p.Nutrients[key]; v != nil {
		return *v
	}
	return 0
}

// NutrientSnapshot freezes the reported nutrient values into a plain
// map over the full schema, with absent values as 0.
func (p *ProductRecord) NutrientSnapshot() map[NutrientKey]float64 {
	snapshot := make(map[NutrientKey]float64, len(NutrientKeys))
	for _, key := range NutrientKeys {
		snapshot[key] = p.Nutrient(key)
	}
	return snapshot
}
