package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

func TestClassifyIngredients_EmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"separators only", ",;,, ;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := ClassifyIngredients(tt.input)
			assert.Empty(t, findings)
		})
	}
}

func TestClassifyIngredients_NoTokenDropped(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tokens int
	}{
		{"commas", "sugar, salt, water", 3},
		{"semicolons", "sugar; salt; water", 3},
		{"mixed separators", "sugar, salt; water, oil", 4},
		{"trailing separator", "sugar, salt,", 2},
		{"unknown tokens", "frobnicate, zanzibar dust, qux", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := ClassifyIngredients(tt.input)
			assert.Len(t, findings, tt.tokens)
		})
	}
}

func TestClassifyIngredients_LongList(t *testing.T) {
	var parts []string
	for i := 0; i < 500; i++ {
		parts = append(parts, fmt.Sprintf("ingredient %d", i))
	}
	findings := ClassifyIngredients(strings.Join(parts, ", "))
	assert.Len(t, findings, 500)
}

func TestClassifyIngredients_TierPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected types.IngredientStatus
	}{
		{"dangerous lexicon", "potassium bromate", types.StatusBad},
		{"common bad lexicon", "high fructose corn syrup", types.StatusBad},
		{"moderate lexicon", "natural flavors", types.StatusModerate},
		{"good lexicon", "coconut oil", types.StatusGood},
		{"good lexicon organic", "organic quinoa", types.StatusGood},
		// A token matching both a dangerous and a good pattern must
		// resolve through the earlier tier.
		{"dangerous beats good", "organic sodium nitrite", types.StatusBad},
		{"dangerous beats moderate", "natural flavor with aspartame", types.StatusBad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := ClassifyIngredients(tt.token)
			require.Len(t, findings, 1)
			assert.Equal(t, tt.expected, findings[0].Status)
			assert.NotEmpty(t, findings[0].Reason)
		})
	}
}

func TestClassifyIngredients_PotassiumBromateAlwaysBad(t *testing.T) {
	findings := ClassifyIngredients("water, sugar, potassium bromate, salt")

	var found *types.IngredientFinding
	for i := range findings {
		if strings.Contains(findings[i].Ingredient, "potassium bromate") {
			found = &findings[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, types.StatusBad, found.Status)
	assert.Contains(t, strings.ToLower(found.Reason), "carcinogen")
}

func TestClassifyIngredients_PatternFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected types.IngredientStatus
	}{
		{"artificial is bad", "artificial coloring", types.StatusBad},
		{"synthetic is bad", "synthetic wax", types.StatusBad},
		{"extract is good", "rosemary extract", types.StatusGood},
		{"vitamin is good", "vitamin b12", types.StatusGood},
		{"mineral is good", "mineral blend", types.StatusGood},
		{"acid is moderate", "phosphoric acid", types.StatusModerate},
		{"ascorbic acid not flagged by acid rule", "ascorbic acid", types.StatusModerate},
		{"long sodium compound", "sodium stearoyl lactylate", types.StatusModerate},
		{"digit means complex chemical", "e471", types.StatusModerate},
		{"unknown short token", "frobwort", types.StatusModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := ClassifyIngredients(tt.token)
			require.Len(t, findings, 1)
			assert.Equal(t, tt.expected, findings[0].Status)
		})
	}
}

func TestClassifyIngredients_ArtificialExtractResolvesBad(t *testing.T) {
	// "extract" alone is good, but "artificial" wins inside one token.
	findings := ClassifyIngredients("artificial vanilla extract flavoring")
	require.Len(t, findings, 1)
	assert.Equal(t, types.StatusBad, findings[0].Status)
}

func TestClassifyIngredients_DefaultReasons(t *testing.T) {
	findings := ClassifyIngredients("frobwort, extraordinarily long mystery compound")
	require.Len(t, findings, 2)

	byToken := map[string]types.IngredientFinding{}
	for _, f := range findings {
		byToken[f.Ingredient] = f
	}
	assert.Equal(t, "Common food ingredient, likely processed", byToken["frobwort"].Reason)
	assert.Equal(t, "Complex chemical name, likely a processing additive",
		byToken["extraordinarily long mystery compound"].Reason)
}

func TestClassifyIngredients_Ordering(t *testing.T) {
	// bad, good, moderate, good in label order; report order must be
	// good, good, moderate, bad with first-seen order inside each band.
	findings := ClassifyIngredients("aspartame, coconut oil, natural flavors, sea salt")
	require.Len(t, findings, 4)

	assert.Equal(t, "coconut oil", findings[0].Ingredient)
	assert.Equal(t, types.StatusGood, findings[0].Status)
	assert.Equal(t, "sea salt", findings[1].Ingredient)
	assert.Equal(t, types.StatusGood, findings[1].Status)
	assert.Equal(t, "natural flavors", findings[2].Ingredient)
	assert.Equal(t, types.StatusModerate, findings[2].Status)
	assert.Equal(t, "aspartame", findings[3].Ingredient)
	assert.Equal(t, types.StatusBad, findings[3].Status)
}

func TestClassifyIngredients_CaseInsensitive(t *testing.T) {
	findings := ClassifyIngredients("POTASSIUM BROMATE, Coconut OIL")
	require.Len(t, findings, 2)
	assert.Equal(t, types.StatusGood, findings[0].Status)
	assert.Equal(t, types.StatusBad, findings[1].Status)
}

func TestClassifyIngredients_TypicalSnackLabel(t *testing.T) {
	findings := ClassifyIngredients("organic coconut oil, sea salt, natural flavors")
	require.Len(t, findings, 3)

	byToken := map[string]types.IngredientStatus{}
	for _, f := range findings {
		byToken[f.Ingredient] = f.Status
	}
	assert.Equal(t, types.StatusGood, byToken["organic coconut oil"])
	assert.Equal(t, types.StatusGood, byToken["sea salt"])
	assert.Equal(t, types.StatusModerate, byToken["natural flavors"])
}
