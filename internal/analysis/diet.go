package analysis

import (
	"fmt"
	"strings"

	"github.com/foodsnap/nutrition-engine/internal/types"
)

// Disqualifying keyword sets per diet. Every diet except Organic is
// compatible by default and loses compatibility on the first keyword hit.

var meatKeywords = []string{
	"chicken", "beef", "pork", "mutton", "lamb", "fish", "anchovy",
	"tuna", "salmon", "shrimp", "prawn", "crab", "oyster", "bacon",
	"ham", "gelatin", "gelatine", "lard", "tallow", "rennet", "meat",
	"poultry", "turkey", "duck", "venison",
}

var animalProductKeywords = []string{
	"milk", "butter", "ghee", "cream", "cheese", "yogurt", "yoghurt",
	"whey", "casein", "lactose", "egg", "albumin", "honey", "beeswax",
	"shellac", "dairy",
}

var glutenKeywords = []string{
	"wheat", "barley", "rye", "gluten", "malt", "semolina", "spelt",
	"triticale", "farina", "maida", "couscous", "seitan",
}

var dairyKeywords = []string{
	"milk", "butter", "ghee", "cream", "cheese", "yogurt", "yoghurt",
	"whey", "casein", "caseinate", "lactose", "curd", "paneer",
	"buttermilk", "dairy",
}

var nutKeywords = []string{
	"almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut",
	"macadamia", "brazil nut", "pine nut", "peanut", "groundnut",
	"nut butter", "praline",
}

// CheckDiets evaluates the fixed set of diet categories against the
// ingredient text. It always returns exactly one finding per diet, in
// the order of types.Diets, no matter the input. Organic is the one
// positive-evidence check: it also consults the product name and brand.
func CheckDiets(ingredientsText, productName, brand string) []types.DietFinding {
	text := strings.ToLower(ingredientsText)
	findings := make([]types.DietFinding, 0, len(types.Diets))

	findings = append(findings, checkExclusion(types.DietVegetarian, text,
		[][]string{meatKeywords}, "meat, fish or animal-derived gelatin"))

	findings = append(findings, checkExclusion(types.DietVegan, text,
		[][]string{meatKeywords, animalProductKeywords}, "animal-derived ingredients"))

	findings = append(findings, checkExclusion(types.DietGlutenFree, text,
		[][]string{glutenKeywords}, "gluten-containing grains"))

	findings = append(findings, checkExclusion(types.DietDairyFree, text,
		[][]string{dairyKeywords}, "milk or dairy derivatives"))

	findings = append(findings, checkExclusion(types.DietNutFree, text,
		[][]string{nutKeywords}, "tree nuts or peanuts"))

	organicText := text + " " + strings.ToLower(productName) + " " + strings.ToLower(brand)
	if strings.Contains(organicText, "organic") {
		findings = append(findings, types.DietFinding{
			Diet:       types.DietOrganic,
			Compatible: true,
			Reason:     "Labeled organic on ingredients, name or brand",
		})
	} else {
		findings = append(findings, types.DietFinding{
			Diet:       types.DietOrganic,
			Compatible: false,
			Reason:     "No organic labeling found",
		})
	}

	return findings
}

// checkExclusion scans the keyword groups and disqualifies the diet on
// the first match, naming the matched keyword in the reason.
func checkExclusion(diet types.Diet, text string, groups [][]string, class string) types.DietFinding {
	for _, group := range groups {
		for _, kw := range group {
			if strings.Contains(text, kw) {
				return types.DietFinding{
					Diet:       diet,
					Compatible: false,
					Reason:     fmt.Sprintf("Contains %s (%s)", kw, class),
				}
			}
		}
	}
	return types.DietFinding{
		Diet:       diet,
		Compatible: true,
		Reason:     fmt.Sprintf("No %s detected", class),
	}
}
