package analysis

import (
	"regexp"
	"strings"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// Scoring thresholds, shared by the score path and the warning/benefit
// path so the two can never drift apart.
const (
	energyHighKcal = 400
	energyMidKcal  = 250
	energyLowKcal  = 100

	sugarsHighG = 15
	sugarsMidG  = 10
	sugarsLowG  = 5

	sodiumHighMg = 600
	sodiumMidMg  = 400
	sodiumLowMg  = 120

	satFatHighG = 5
	satFatMidG  = 3

	fiberHighG = 5
	fiberMidG  = 3

	proteinHighG = 10
	proteinMidG  = 5
)

var gradeTagPattern = regexp.MustCompile(`^[a-eA-E]$`)

// HealthScore computes the 0-100 score from per-100g nutrient values.
// Missing values evaluate as 0; no rule is ever skipped. Within each
// nutrient only the highest applicable tier deducts or adds.
func HealthScore(nutrients map[types.NutrientKey]float64) int {
	score := 100

	energy := nutrients[types.NutrientEnergyKcal]
	switch {
	case energy > energyHighKcal:
		score -= 20
	case energy >= energyMidKcal:
		score -= 10
	}

	sugars := nutrients[types.NutrientSugars]
	switch {
	case sugars > sugarsHighG:
		score -= 25
	case sugars >= sugarsMidG:
		score -= 15
	case sugars >= sugarsLowG:
		score -= 5
	}

	sodiumMg := nutrients[types.NutrientSodium] * 1000
	switch {
	case sodiumMg > sodiumHighMg:
		score -= 20
	case sodiumMg >= sodiumMidMg:
		score -= 10
	}

	satFat := nutrients[types.NutrientSaturatedFat]
	switch {
	case satFat > satFatHighG:
		score -= 15
	case satFat >= satFatMidG:
		score -= 8
	}

	fiber := nutrients[types.NutrientFiber]
	switch {
	case fiber > fiberHighG:
		score += 10
	case fiber >= fiberMidG:
		score += 5
	}

	protein := nutrients[types.NutrientProtein]
	switch {
	case protein > proteinHighG:
		score += 10
	case protein >= proteinMidG:
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// DeriveGrade maps a score to the letter grade A-E. Monotonic: a higher
// score never yields a worse grade.
func DeriveGrade(score int) types.Grade {
	switch {
	case score >= 80:
		return "A"
	case score >= 65:
		return "B"
	case score >= 50:
		return "C"
	case score >= 35:
		return "D"
	default:
		return "E"
	}
}

// ResolveGrade applies the supplied-grade precedence rule: a valid
// externally supplied single-letter tag (a-e, any case) overrides the
// derived grade; anything else is ignored.
func ResolveGrade(score int, suppliedTag string) types.Grade {
	tag := strings.TrimSpace(suppliedTag)
	if gradeTagPattern.MatchString(tag) {
		return types.Grade(strings.ToUpper(tag))
	}
	return DeriveGrade(score)
}

// DeriveSignals produces the warning and benefit phrase lists from the
// same numeric cutoffs the scorer uses, plus the fixed danger limits
// from the nutrient table (flagging only). Never returns nil slices.
func DeriveSignals(nutrients map[types.NutrientKey]float64) (warnings, benefits []string) {
	warnings = []string{}
	benefits = []string{}

	energy := nutrients[types.NutrientEnergyKcal]
	sugars := nutrients[types.NutrientSugars]
	sodiumMg := nutrients[types.NutrientSodium] * 1000
	satFat := nutrients[types.NutrientSaturatedFat]
	fiber := nutrients[types.NutrientFiber]
	protein := nutrients[types.NutrientProtein]

	if energy > energyHighKcal {
		warnings = append(warnings, "Very high in calories")
	} else if energy >= energyMidKcal {
		warnings = append(warnings, "High in calories")
	}
	if sugars > sugarsHighG {
		warnings = append(warnings, "Very high sugar content")
	} else if sugars >= sugarsMidG {
		warnings = append(warnings, "High sugar content")
	}
	if sodiumMg > sodiumHighMg {
		warnings = append(warnings, "Very high sodium content")
	} else if sodiumMg >= sodiumMidMg {
		warnings = append(warnings, "High sodium content")
	}
	if satFat > satFatHighG {
		warnings = append(warnings, "High in saturated fat")
	}

	for _, key := range types.NutrientKeys {
		info := types.NutrientTable[key]
		if info.DangerLimit != nil && nutrients[key] > *info.DangerLimit {
			warnings = append(warnings, info.Label+" exceeds the recommended per-100g limit")
		}
	}

	if fiber > fiberHighG {
		benefits = append(benefits, "High in fiber")
	} else if fiber >= fiberMidG {
		benefits = append(benefits, "Good source of fiber")
	}
	if protein > proteinHighG {
		benefits = append(benefits, "High in protein")
	} else if protein >= proteinMidG {
		benefits = append(benefits, "Good source of protein")
	}
	if energy > 0 && energy < energyLowKcal {
		benefits = append(benefits, "Low calorie")
	}
	if sugars < sugarsLowG {
		benefits = append(benefits, "Low sugar")
	}
	if sodiumMg < sodiumLowMg {
		benefits = append(benefits, "Low sodium")
	}

	return warnings, benefits
}
