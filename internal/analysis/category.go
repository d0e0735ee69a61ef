package analysis

import (
	"strings"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// categoryRule is one keyword test in the fixed category order.
type categoryRule struct {
	category types.Category
	keywords []string
}

// categoryRules are checked in order; first match wins. The order is
// behaviorally significant: "chocolate milk" resolves to Dairy because
// Dairy is tested before Snacks.
var categoryRules = []categoryRule{
	{types.CategoryDairy, []string{
		"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "curd",
		"paneer", "ghee", "dairy", "lassi",
	}},
	{types.CategoryBeverages, []string{
		"juice", "drink", "cola", "soda", "water", "tea", "coffee",
		"beverage", "squash", "smoothie", "shake",
	}},
	{types.CategoryGrains, []string{
		"bread", "rice", "wheat", "oat", "cereal", "pasta", "noodle",
		"flour", "atta", "grain",
	}},
	{types.CategoryFreshFoods, []string{
		"fruit", "vegetable", "salad", "fresh", "apple", "banana",
		"tomato", "spinach", "carrot", "egg",
	}},
	{types.CategorySnacks, []string{
		"chips", "chocolate", "biscuit", "cookie", "candy", "snack",
		"wafer", "namkeen", "popcorn", "pretzel", "bar",
	}},
}

// DeriveCategory classifies a product into one coarse category from its
// name and brand, defaulting to Packaged Foods when nothing matches.
func DeriveCategory(name, brand string) types.Category {
	text := strings.ToLower(name + " " + brand)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return types.CategoryPackagedFoods
}
