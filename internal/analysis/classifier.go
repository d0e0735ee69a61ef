package analysis

import (
	"sort"
	"strings"
	"unicode"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// ClassifyIngredients splits a free-text ingredient list on commas and
// semicolons and classifies every non-empty token into good, moderate or
// bad with a human-readable reason. No token is skipped and the input
// size is unbounded; an empty or absent list yields an empty slice.
//
// The returned findings are ordered good, moderate, bad; ties keep the
// original label order.
func ClassifyIngredients(ingredientsText string) []types.IngredientFinding {
	tokens := splitIngredients(ingredientsText)
	findings := make([]types.IngredientFinding, 0, len(tokens))
	for _, token := range tokens {
		status, reason := classifyToken(token)
		findings = append(findings, types.IngredientFinding{
			Ingredient: token,
			Status:     status,
			Reason:     reason,
		})
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Status.Rank() < findings[j].Status.Rank()
	})
	return findings
}

// splitIngredients tokenizes on ',' and ';', trims whitespace and drops
// empty tokens.
func splitIngredients(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// classifyToken resolves one ingredient token. Lexicon tiers are
// consulted in precedence order, then pattern heuristics, then a
// catch-all default. Matching is case-insensitive substring search.
func classifyToken(token string) (types.IngredientStatus, string) {
	lower := strings.ToLower(token)

	for _, t := range tiers {
		for _, entry := range t.entries {
			if strings.Contains(lower, entry.pattern) {
				return t.status, entry.reason
			}
		}
	}

	return classifyByPattern(lower)
}

// classifyByPattern applies the fallback heuristics for tokens no
// lexicon knows about.
func classifyByPattern(lower string) (types.IngredientStatus, string) {
	switch {
	case strings.Contains(lower, "artificial") || strings.Contains(lower, "synthetic"):
		return types.StatusBad, "Artificial or synthetic additive of unspecified composition"
	case strings.Contains(lower, "extract"):
		return types.StatusGood, "Plant or food extract, typically retains beneficial compounds"
	case strings.Contains(lower, "vitamin") || strings.Contains(lower, "mineral"):
		return types.StatusGood, "Added vitamin or mineral fortification"
	case strings.Contains(lower, "acid") &&
		!strings.Contains(lower, "ascorbic") && !strings.Contains(lower, "citric"):
		return types.StatusModerate, "Acidity regulator or processing acid"
	case strings.Contains(lower, "sodium") && len(lower) > 12:
		return types.StatusModerate, "Sodium-based additive, contributes to sodium load"
	case len(lower) > 20 || containsDigit(lower):
		return types.StatusModerate, "Complex chemical name, likely a processing additive"
	default:
		return types.StatusModerate, "Common food ingredient, likely processed"
	}
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
