package item

import "strings"

// Subtype lists per category, tested in declaration order. The order matters: "Ruby Ring"
// contains the jewel name "Ruby", so Ring must be tested before Jewel.
var subtypeCategories = []struct {
	category Category
	subtypes []string
}{
	{CategoryRing, []string{
		"Iron Ring", "Lazuli Ring", "Ruby Ring", "Sapphire Ring", "Topaz Ring",
		"Amethyst Ring", "Emerald Ring", "Pearl Ring", "Prismatic Ring",
		"Gold Ring", "Unset Ring", "Breach Ring",
	}},
	{CategoryAmulet, []string{
		"Crimson Amulet", "Azure Amulet", "Amber Amulet", "Jade Amulet",
		"Lapis Amulet", "Lunar Amulet", "Stellar Amulet", "Bloodstone Amulet",
		"Solar Amulet", "Gold Amulet",
	}},
	{CategoryJewel, []string{
		"Ruby", "Emerald", "Sapphire", "Diamond",
		"Time-Lost Ruby", "Time-Lost Emerald", "Time-Lost Sapphire", "Time-Lost Diamond",
		"Timeless Jewel",
	}},
	{CategorySoulCore, []string{
		"Soul Core of Tacati", "Soul Core of Opiloti", "Soul Core of Jiquani",
		"Soul Core of Zalatl", "Soul Core of Citaqualotl", "Soul Core of Puhuarte",
		"Soul Core of Tzamoto", "Soul Core of Xopec", "Soul Core of Azcapa",
		"Soul Core of Topotante", "Soul Core of Quipolatl", "Soul Core of Ticaba",
		"Soul Core of Atmohua", "Soul Core of Cholotl", "Soul Core of Zantipi",
	}},
	{CategoryWaystone, []string{
		"Waystone (Tier 1)", "Waystone (Tier 2)", "Waystone (Tier 3)", "Waystone (Tier 4)",
		"Waystone (Tier 5)", "Waystone (Tier 6)", "Waystone (Tier 7)", "Waystone (Tier 8)",
		"Waystone (Tier 9)", "Waystone (Tier 10)", "Waystone (Tier 11)", "Waystone (Tier 12)",
		"Waystone (Tier 13)", "Waystone (Tier 14)", "Waystone (Tier 15)", "Waystone (Tier 16)",
	}},
	{CategoryRelic, []string{
		"Urn Relic", "Amphora Relic", "Vase Relic", "Seal Relic",
		"Coffer Relic", "Tapestry Relic", "Incense Relic",
	}},
	{CategoryTablet, []string{
		"Precursor Tablet", "Breach Precursor Tablet", "Delirium Precursor Tablet",
		"Expedition Precursor Tablet", "Ritual Precursor Tablet", "Overseer Precursor Tablet",
	}},
	{CategoryLiquidEmotion, []string{
		"Diluted Liquid Ire", "Diluted Liquid Guilt", "Diluted Liquid Greed",
		"Liquid Paranoia", "Liquid Envy", "Liquid Disgust", "Liquid Despair",
		"Concentrated Liquid Fear", "Concentrated Liquid Suffering", "Concentrated Liquid Isolation",
	}},
}

// Classification is the result of classifying an item name.
type Classification struct {
	Category Category
	// Subtype is the canonical list entry for an exact match, or the category name when only a
	// substring matched.
	Subtype string
}

// Classify maps a display name to its category: an exact case-insensitive match first, then a
// case-insensitive substring match, first category in declaration order wins.
func Classify(name string) Classification {
	if sub, cat, ok := exactSubtype(name); ok {
		return Classification{Category: cat, Subtype: sub}
	}
	if cat, ok := baseCategory(name); ok {
		return Classification{Category: cat, Subtype: cat.String()}
	}
	return Classification{Category: CategoryUnknown}
}

func exactSubtype(name string) (string, Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range subtypeCategories {
		for _, sub := range c.subtypes {
			if strings.EqualFold(name, sub) {
				return sub, c.category, true
			}
		}
	}
	return "", CategoryUnknown, false
}

func baseCategory(name string) (Category, bool) {
	lower := strings.ToLower(name)
	if strings.TrimSpace(lower) == "" {
		return CategoryUnknown, false
	}
	for _, c := range subtypeCategories {
		for _, sub := range c.subtypes {
			if strings.Contains(lower, strings.ToLower(sub)) {
				return c.category, true
			}
		}
	}
	return CategoryUnknown, false
}

// Subtypes returns the curated names of a category.
func Subtypes(c Category) []string {
	for _, sc := range subtypeCategories {
		if sc.category == c {
			return append([]string(nil), sc.subtypes...)
		}
	}
	return nil
}
