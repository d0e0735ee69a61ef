package types

import "time"

// IngredientStatus is the safety band assigned to a single ingredient.
type IngredientStatus string

const (
	StatusGood     IngredientStatus = "good"
	StatusModerate IngredientStatus = "moderate"
	StatusBad      IngredientStatus = "bad"
)

// Rank orders statuses for report sorting: good first, bad last.
func (s IngredientStatus) Rank() int {
	switch s {
	case StatusGood:
		return 0
	case StatusModerate:
		return 1
	default:
		return 2
	}
}

// IngredientFinding is one classified ingredient token with the reason
// the classifier assigned its status.
type IngredientFinding struct {
	Ingredient string           `json:"ingredient"`
	Status     IngredientStatus `json:"status"`
	Reason     string           `json:"reason"`
}

// Diet is one of the fixed dietary categories the engine evaluates.
type Diet string

const (
	DietVegetarian Diet = "Vegetarian"
	DietVegan      Diet = "Vegan"
	DietGlutenFree Diet = "Gluten-Free"
	DietDairyFree  Diet = "Dairy-Free"
	DietNutFree    Diet = "Nut-Free"
	DietOrganic    Diet = "Organic"
)

// Diets lists the evaluated categories in fixed report order. Every
// analysis carries exactly one finding per entry.
var Diets = []Diet{
	DietVegetarian,
	DietVegan,
	DietGlutenFree,
	DietDairyFree,
	DietNutFree,
	DietOrganic,
}

// DietFinding is the compatibility verdict for one diet category.
type DietFinding struct {
	Diet       Diet   `json:"diet"`
	Compatible bool   `json:"compatible"`
	Reason     string `json:"reason"`
}

// Category is the coarse product category derived from name and brand.
type Category string

const (
	CategoryDairy         Category = "Dairy"
	CategoryBeverages     Category = "Beverages"
	CategoryGrains        Category = "Grains"
	CategoryFreshFoods    Category = "Fresh Foods"
	CategorySnacks        Category = "Snacks"
	CategoryPackagedFoods Category = "Packaged Foods"
)

// Grade is the letter grade A (best) to E (worst).
type Grade string

// AnalysisRecord is the immutable output of one classification and
// scoring pass over a ProductRecord.
type AnalysisRecord struct {
	ProductName        string                  `json:"product_name"`
	Brand              string                  `json:"brand"`
	Category           Category                `json:"category"`
	HealthScore        int                     `json:"health_score"`
	Grade              Grade                   `json:"grade"`
	Warnings           []string                `json:"warnings"`
	Benefits           []string                `json:"benefits"`
	IngredientFindings []IngredientFinding     `json:"ingredient_findings"`
	DietFindings       []DietFinding           `json:"diet_findings"`
	NutrientSnapshot   map[NutrientKey]float64 `json:"nutrient_snapshot"`
	Notes              string                  `json:"notes,omitempty"`
	ScannedAt          time.Time               `json:"scanned_at"`
	ScanMethod         ScanMethod              `json:"scan_method"`
}

// HistoryEntry wraps one AnalysisRecord in the history log with a stable
// id and a user-toggled favorite flag.
type HistoryEntry struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
	AnalysisRecord
}
