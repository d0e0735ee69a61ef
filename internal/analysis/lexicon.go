package analysis

import "github.com/foodsnap/nutrition-engine/internal/types"

// lexiconEntry is one (pattern, reason) pair inside a lexicon tier.
// Patterns are lowercase and matched as case-insensitive substrings of
// the ingredient token.
type lexiconEntry struct {
	pattern string
	reason  string
}

// The classifier consults the tiers below in fixed precedence:
// dangerous-hidden, then common known-bad, then moderate/processed, then
// natural/beneficial. A token matching an earlier tier never falls
// through to a later one, so a token that is both "dangerous" and
// "moderate" resolves to bad.

// dangerousLexicon covers additives with documented or suspected serious
// harm: carcinogens, endocrine disruptors, neurotoxins and banned
// substances that still appear on imported labels.
var dangerousLexicon = []lexiconEntry{
	{"potassium bromate", "Banned carcinogen, still found in some flours and baked goods"},
	{"azodicarbonamide", "Dough conditioner linked to respiratory issues, banned in the EU"},
	{"brominated vegetable oil", "Emulsifier linked to organ damage, banned in many countries"},
	{"olestra", "Fat substitute that blocks nutrient absorption"},
	{"butylated hydroxyanisole", "Preservative (BHA) classified as a possible carcinogen"},
	{"butylated hydroxytoluene", "Preservative (BHT) with suspected carcinogenic effects"},
	{"bha", "Preservative classified as a possible carcinogen"},
	{"bht", "Preservative with suspected carcinogenic effects"},
	{"tert-butylhydroquinone", "Preservative (TBHQ) linked to tumors in animal studies"},
	{"tbhq", "Preservative linked to tumors in animal studies"},
	{"propyl gallate", "Preservative with suspected endocrine-disrupting effects"},
	{"propylparaben", "Paraben preservative and suspected endocrine disruptor"},
	{"sodium nitrite", "Curing agent that can form carcinogenic nitrosamines"},
	{"sodium nitrate", "Curing agent linked to increased cancer risk in processed meat"},
	{"potassium nitrite", "Curing agent that can form carcinogenic nitrosamines"},
	{"nitrosamine", "Carcinogenic compound formed from nitrites"},
	{"titanium dioxide", "Whitening agent no longer considered safe as a food additive in the EU"},
	{"red 3", "Synthetic dye linked to thyroid tumors in animal studies"},
	{"erythrosine", "Synthetic dye (Red 3) linked to thyroid tumors"},
	{"red 40", "Synthetic dye associated with hyperactivity in children"},
	{"allura red", "Synthetic dye associated with hyperactivity in children"},
	{"yellow 5", "Synthetic dye (tartrazine) linked to hyperactivity and allergic reactions"},
	{"tartrazine", "Synthetic dye linked to hyperactivity and allergic reactions"},
	{"yellow 6", "Synthetic dye with contamination concerns (benzidine)"},
	{"sunset yellow", "Synthetic dye with hyperactivity and allergy concerns"},
	{"blue 1", "Synthetic dye with unresolved neurotoxicity questions"},
	{"blue 2", "Synthetic dye linked to tumors in animal studies"},
	{"green 3", "Synthetic dye linked to bladder tumors in animal studies"},
	{"caramel color iv", "Contains 4-MEI, a possible carcinogen"},
	{"4-methylimidazole", "Possible carcinogen formed in some caramel colors"},
	{"acesulfame", "Artificial sweetener with unresolved long-term safety questions"},
	{"aspartame", "Artificial sweetener classified as possibly carcinogenic by IARC"},
	{"saccharin", "Artificial sweetener historically linked to bladder tumors"},
	{"cyclamate", "Artificial sweetener banned in the United States"},
	{"partially hydrogenated", "Source of artificial trans fat, linked to heart disease"},
	{"hydrogenated oil", "May contain trans fat, linked to heart disease"},
	{"hydrogenated vegetable", "May contain trans fat, linked to heart disease"},
	{"trans fat", "Strongly linked to cardiovascular disease"},
	{"propylene glycol", "Solvent with toxicity concerns at high intake"},
	{"sodium benzoate", "Can form carcinogenic benzene in combination with vitamin C"},
	{"potassium benzoate", "Can form carcinogenic benzene in combination with vitamin C"},
	{"benzene", "Known human carcinogen"},
	{"bisphenol", "Endocrine disruptor (BPA family)"},
	{"monosodium glutamate", "Flavor enhancer that can trigger headaches and reactions in sensitive people"},
	{"disodium inosinate", "Flavor enhancer usually paired with MSG"},
	{"disodium guanylate", "Flavor enhancer usually paired with MSG"},
	{"sodium aluminum", "Aluminum compound with neurotoxicity concerns"},
	{"aluminum phosphate", "Aluminum compound with neurotoxicity concerns"},
	{"potassium sorbate", "Preservative that can damage DNA at high concentrations"},
	{"calcium propionate", "Preservative linked to behavioral effects in children"},
	{"sodium metabisulfite", "Sulfite preservative that can trigger asthma attacks"},
	{"sulfur dioxide", "Sulfite preservative that can trigger asthma attacks"},
	{"sulfite", "Preservative that can trigger asthma and allergic reactions"},
	{"carrageenan", "Thickener linked to intestinal inflammation"},
	{"polysorbate", "Emulsifier linked to gut microbiome disruption"},
	{"carboxymethylcellulose", "Emulsifier linked to gut inflammation in studies"},
	{"dimethylpolysiloxane", "Anti-foaming silicone agent used in frying oils"},
	{"diacetyl", "Butter flavoring linked to lung disease in workers"},
	{"bromate", "Banned carcinogen used as a flour improver"},
	{"ethoxyquin", "Preservative restricted over toxicity concerns"},
}

// commonBadLexicon covers widely recognized bad-for-you ingredients that
// are legal and common but nutritionally harmful.
var commonBadLexicon = []lexiconEntry{
	{"high fructose corn syrup", "Cheap sweetener strongly linked to obesity and fatty liver"},
	{"high-fructose corn syrup", "Cheap sweetener strongly linked to obesity and fatty liver"},
	{"hfcs", "Cheap sweetener strongly linked to obesity and fatty liver"},
	{"corn syrup", "Refined sweetener with a high glycemic load"},
	{"glucose-fructose syrup", "Refined sweetener equivalent to high fructose corn syrup"},
	{"invert sugar", "Refined sugar with a high glycemic load"},
	{"msg", "Flavor enhancer that can trigger reactions in sensitive people"},
	{"palm kernel oil", "Highly saturated fat with environmental concerns"},
	{"palm oil", "High in saturated fat, production drives deforestation"},
	{"shortening", "Typically high in saturated or trans fats"},
	{"margarine", "Processed fat spread, may contain trans fats"},
	{"refined flour", "Stripped of fiber and micronutrients"},
	{"maida", "Refined flour stripped of fiber and micronutrients"},
	{"white sugar", "Refined sugar with no nutritional value"},
	{"cane sugar", "Added sugar, contributes to the total sugar load"},
	{"brown sugar", "Refined sugar with trace molasses, still an added sugar"},
	{"dextrose", "Refined sugar with a very high glycemic index"},
	{"maltodextrin", "Highly processed starch with a glycemic index above table sugar"},
	{"sucralose", "Artificial sweetener that may affect gut bacteria"},
	{"vanillin", "Synthetic vanilla substitute"},
	{"caffeine", "Stimulant, problematic in high doses especially for children"},
	{"processed cheese", "Heavily processed dairy with emulsifying salts"},
	{"mechanically separated", "Heavily processed meat slurry"},
	{"bacon", "Processed meat classified as a group 1 carcinogen"},
	{"deep fried", "Frying produces oxidized fats and acrylamide"},
}

// moderateLexicon covers processed but broadly tolerated ingredients.
var moderateLexicon = []lexiconEntry{
	{"natural flavor", "Umbrella term for processed flavoring mixtures of undisclosed composition"},
	{"natural flavour", "Umbrella term for processed flavoring mixtures of undisclosed composition"},
	{"yeast extract", "Processed flavor enhancer containing free glutamates"},
	{"modified starch", "Chemically altered starch used as a thickener"},
	{"modified corn starch", "Chemically altered starch used as a thickener"},
	{"corn starch", "Refined starch, mostly empty calories"},
	{"tapioca starch", "Refined starch, mostly empty calories"},
	{"rice flour", "Refined grain flour with little fiber"},
	{"wheat flour", "Refined grain flour unless labeled whole"},
	{"enriched flour", "Refined flour with synthetic vitamins added back"},
	{"soy lecithin", "Common emulsifier, generally tolerated"},
	{"lecithin", "Common emulsifier, generally tolerated"},
	{"xanthan gum", "Fermentation-derived thickener, fine in small amounts"},
	{"guar gum", "Plant-derived thickener, can cause digestive upset in quantity"},
	{"cellulose gum", "Processed plant-fiber thickener"},
	{"gum arabic", "Tree-derived emulsifier, generally tolerated"},
	{"pectin", "Fruit-derived gelling agent"},
	{"glycerin", "Processed humectant and sweetener"},
	{"glycerol", "Processed humectant and sweetener"},
	{"mono and diglycerides", "Processed emulsifier, may contain trace trans fats"},
	{"monoglyceride", "Processed emulsifier, may contain trace trans fats"},
	{"diglyceride", "Processed emulsifier, may contain trace trans fats"},
	{"whey powder", "Processed dairy derivative"},
	{"milk solids", "Processed dairy derivative"},
	{"milk powder", "Processed dairy derivative"},
	{"baking soda", "Leavening agent, high in sodium"},
	{"baking powder", "Leavening agent, may contain aluminum compounds"},
	{"emulsifier", "Processed additive used to bind fats and water"},
	{"stabilizer", "Processed additive used to maintain texture"},
	{"stabiliser", "Processed additive used to maintain texture"},
	{"thickener", "Processed additive used to adjust texture"},
	{"anti-caking agent", "Processed additive that keeps powders free-flowing"},
	{"preservative", "Generic preservative, extends shelf life"},
	{"flavour enhancer", "Processed additive that intensifies taste"},
	{"flavor enhancer", "Processed additive that intensifies taste"},
	{"iodized salt", "Fine in moderation, contributes to sodium load"},
	{"edible vegetable oil", "Refined oil blend of unspecified origin"},
	{"sunflower oil", "Refined oil high in omega-6 fats"},
	{"canola oil", "Refined oil, heavily processed"},
	{"soybean oil", "Refined oil high in omega-6 fats"},
	{"fructose", "Refined sugar, taxing on the liver in quantity"},
	{"molasses", "Less refined sugar, still an added sugar"},
	{"honey powder", "Processed sweetener derived from honey"},
	{"malt extract", "Sweetener derived from barley, contains gluten"},
	{"annatto", "Natural colorant, rare sensitivity reports"},
	{"caramel color", "Colorant, quality varies by manufacturing class"},
	{"citric acid", "Common acidity regulator, generally safe"},
	{"ascorbyl palmitate", "Fat-soluble vitamin C ester used as a preservative"},
}

// goodLexicon covers whole foods and recognized beneficial ingredients.
var goodLexicon = []lexiconEntry{
	{"organic", "Certified organic ingredient, grown without synthetic pesticides"},
	{"whole wheat", "Whole grain with fiber and micronutrients intact"},
	{"whole grain", "Whole grain with fiber and micronutrients intact"},
	{"oats", "Whole grain rich in soluble fiber"},
	{"oat flour", "Whole grain flour rich in soluble fiber"},
	{"quinoa", "Whole grain with complete protein"},
	{"brown rice", "Whole grain with fiber intact"},
	{"millet", "Whole grain rich in minerals"},
	{"chia", "Seed rich in omega-3 fats and fiber"},
	{"flaxseed", "Seed rich in omega-3 fats and lignans"},
	{"flax seed", "Seed rich in omega-3 fats and lignans"},
	{"almond", "Nut rich in healthy fats and vitamin E"},
	{"walnut", "Nut rich in omega-3 fats"},
	{"cashew", "Nut with healthy fats and minerals"},
	{"peanut", "Legume with protein and healthy fats"},
	{"hazelnut", "Nut rich in healthy fats and vitamin E"},
	{"pistachio", "Nut with protein and antioxidants"},
	{"coconut oil", "Natural oil, stable for cooking"},
	{"olive oil", "Rich in heart-healthy monounsaturated fats"},
	{"avocado", "Rich in monounsaturated fats and potassium"},
	{"sea salt", "Minimally processed salt with trace minerals"},
	{"himalayan salt", "Minimally processed salt with trace minerals"},
	{"rock salt", "Minimally processed salt"},
	{"honey", "Natural sweetener with trace antioxidants"},
	{"maple syrup", "Natural sweetener with trace minerals"},
	{"jaggery", "Unrefined sugar retaining minerals"},
	{"stevia", "Plant-derived zero-calorie sweetener"},
	{"monk fruit", "Plant-derived zero-calorie sweetener"},
	{"turmeric", "Spice with anti-inflammatory curcumin"},
	{"ginger", "Root with digestive and anti-inflammatory benefits"},
	{"garlic", "Bulb with cardiovascular benefits"},
	{"cinnamon", "Spice that may help regulate blood sugar"},
	{"black pepper", "Spice that aids nutrient absorption"},
	{"cardamom", "Spice with antioxidant compounds"},
	{"cumin", "Spice that supports digestion"},
	{"spinach", "Leafy green rich in iron and folate"},
	{"kale", "Leafy green dense in vitamins"},
	{"broccoli", "Cruciferous vegetable rich in micronutrients"},
	{"carrot", "Vegetable rich in beta-carotene"},
	{"tomato", "Vegetable rich in lycopene"},
	{"beetroot", "Vegetable rich in nitrates and folate"},
	{"sweet potato", "Complex carbohydrate rich in beta-carotene"},
	{"lentil", "Legume rich in protein and fiber"},
	{"chickpea", "Legume rich in protein and fiber"},
	{"black bean", "Legume rich in protein and fiber"},
	{"kidney bean", "Legume rich in protein and fiber"},
	{"greek yogurt", "Dairy rich in protein and probiotics"},
	{"yogurt culture", "Live cultures that support gut health"},
	{"probiotic", "Live cultures that support gut health"},
	{"green tea", "Rich in catechin antioxidants"},
	{"cocoa", "Rich in flavanol antioxidants when minimally processed"},
	{"dark chocolate", "Contains flavanol antioxidants"},
	{"blueberr", "Berry rich in anthocyanin antioxidants"},
	{"cranberr", "Berry with antioxidant compounds"},
	{"pomegranate", "Fruit rich in polyphenols"},
	{"apple", "Fruit with fiber and polyphenols"},
	{"banana", "Fruit rich in potassium"},
	{"dates", "Fruit-based sweetener with fiber and minerals"},
	{"raisin", "Dried fruit with fiber and minerals"},
	{"sesame", "Seed rich in healthy fats and calcium"},
	{"sunflower seed", "Seed rich in vitamin E"},
	{"pumpkin seed", "Seed rich in zinc and magnesium"},
	{"brown rice syrup", "Less refined sweetener"},
	{"whey protein", "High-quality complete protein"},
	{"pea protein", "Plant-based complete protein"},
	{"spirulina", "Algae dense in protein and micronutrients"},
	{"wheatgrass", "Grass concentrate rich in chlorophyll"},
	{"apple cider vinegar", "Fermented vinegar with digestive benefits"},
}

// tier pairs a lexicon with the status its matches receive.
type tier struct {
	entries []lexiconEntry
	status  types.IngredientStatus
}

// tiers in precedence order. First match wins across tiers.
var tiers = []tier{
	{dangerousLexicon, types.StatusBad},
	{commonBadLexicon, types.StatusBad},
	{moderateLexicon, types.StatusModerate},
	{goodLexicon, types.StatusGood},
}
