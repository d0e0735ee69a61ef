// Package analysis implements the nutrition analysis engine: ingredient
// classification, dietary compatibility, health scoring and category
// derivation. All functions are pure, deterministic and safe to run in
// parallel over independent product records.
package analysis

import (
	"log/slog"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// Analyzer assembles the independent analysis passes into one immutable
// AnalysisRecord.
type Analyzer struct {
	log *slog.Logger
}

// NewAnalyzer creates an analyzer that logs pass summaries at debug level.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{log: logger}
}

// Analyze runs category derivation, scoring, ingredient classification
// and diet checks over a product record and assembles the result. The
// passes share no mutable state. Empty or malformed input degrades to
// empty findings and zero-valued nutrients, never an error.
func (a *Analyzer) Analyze(record types.ProductRecord) types.AnalysisRecord {
	snapshot := record.NutrientSnapshot()

	category := DeriveCategory(record.Name, record.Brand)
	score := HealthScore(snapshot)
	grade := ResolveGrade(score, record.SuppliedGradeTag)
	warnings, benefits := DeriveSignals(snapshot)
	ingredientFindings := ClassifyIngredients(record.IngredientsText)
	dietFindings := CheckDiets(record.IngredientsText, record.Name, record.Brand)

	a.log.Debug("analysis completed",
		"product", record.Name,
		"category", category,
		"score", score,
		"grade", grade,
		"ingredients", len(ingredientFindings),
		"warnings", len(warnings))

	return types.AnalysisRecord{
		ProductName:        record.Name,
		Brand:              record.Brand,
		Category:           category,
		HealthScore:        score,
		Grade:              grade,
		Warnings:           warnings,
		Benefits:           benefits,
		IngredientFindings: ingredientFindings,
		DietFindings:       dietFindings,
		NutrientSnapshot:   snapshot,
		ScannedAt:          record.ScannedAt,
		ScanMethod:         record.ScanMethod,
	}
}
