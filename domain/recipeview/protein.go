package recipeview

import "recipebook/domain/core/valueobjects"

// TotalProtein sums the protein of core lines measured in grams, scaled by
// factor. It returns nil when the recipe has no core lines, and 0 when
// core lines exist but none carry usable data.
func TotalProtein(lines []Line, factor float64) *float64 {
	total := 0.0
	hasCore := false

	for _, line := range lines {
		if !line.Core {
			continue
		}
		hasCore = true

		amount := line.Amount()
		if amount == nil || line.ProteinPer100g == nil {
			continue
		}
		if !isFinite(*amount) || !isFinite(*line.ProteinPer100g) {
			continue
		}
		if !valueobjects.IsGramUnit(line.UnitName()) {
			continue
		}
		total += (*amount * factor / 100) * *line.ProteinPer100g
	}

	if !hasCore {
		return nil
	}
	return &total
}
