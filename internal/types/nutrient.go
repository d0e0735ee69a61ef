package types

// NutrientKey identifies one field of the fixed per-100g nutrient schema.
type NutrientKey string

const (
	NutrientEnergyKcal    NutrientKey = "energyKcal"
	NutrientFat           NutrientKey = "fat"
	NutrientSaturatedFat  NutrientKey = "saturatedFat"
	NutrientCarbohydrates NutrientKey = "carbohydrates"
	NutrientSugars        NutrientKey = "sugars"
	NutrientFiber         NutrientKey = "fiber"
	NutrientProtein       NutrientKey = "protein"
	NutrientSodium        NutrientKey = "sodium"
	NutrientSalt          NutrientKey = "salt"
)

// NutrientInfo describes one nutrient field: display label, unit and an
// optional danger limit. Danger limits are used only for flagging, never
// for scoring.
type NutrientInfo struct {
	Label       string   `json:"label"`
	Unit        string   `json:"unit"`
	DangerLimit *float64 `json:"danger_limit,omitempty"`
}

func limit(v float64) *float64 { return &v }

// NutrientTable is the closed per-100g nutrient schema. Keys not present
// here are not part of the engine's data model.
var NutrientTable = map[NutrientKey]NutrientInfo{
	NutrientEnergyKcal:    {Label: "Energy", Unit: "kcal"},
	NutrientFat:           {Label: "Fat", Unit: "g", DangerLimit: limit(17.5)},
	NutrientSaturatedFat:  {Label: "Saturated Fat", Unit: "g"},
	NutrientCarbohydrates: {Label: "Carbohydrates", Unit: "g"},
	NutrientSugars:        {Label: "Sugars", Unit: "g", DangerLimit: limit(22.5)},
	NutrientFiber:         {Label: "Fiber", Unit: "g"},
	NutrientProtein:       {Label: "Protein", Unit: "g"},
	NutrientSodium:        {Label: "Sodium", Unit: "g", DangerLimit: limit(0.6)},
	NutrientSalt:          {Label: "Salt", Unit: "g"},
}

// NutrientKeys lists the schema keys in stable display order.
var NutrientKeys = []NutrientKey{
	NutrientEnergyKcal,
	NutrientFat,
	NutrientSaturatedFat,
	NutrientCarbohydrates,
	NutrientSugars,
	NutrientFiber,
	NutrientProtein,
	NutrientSodium,
	NutrientSalt,
}

// IsNutrientKey reports whether k belongs to the closed schema.
func IsNutrientKey(k NutrientKey) bool {
	_, ok := NutrientTable[k]
	return ok
}
