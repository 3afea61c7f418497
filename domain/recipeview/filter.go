package recipeview

// FilterRecipes keeps the recipes that contain every selected ingredient.
// When forms are selected for an ingredient name, the matching line must
// carry all of them. No selection returns the input unchanged.
func FilterRecipes(recipes []Recipe, selectedNames []string, selectedFormsByName map[string][]string) []Recipe {
	if len(selectedNames) == 0 {
		return recipes
	}

	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if matchesAll(r, selectedNames, selectedFormsByName) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r Recipe, names []string, formsByName map[string][]string) bool {
	for _, name := range names {
		if !hasLine(r, name, formsByName[name]) {
			return false
		}
	}
	return true
}

func hasLine(r Recipe, name string, forms []string) bool {
	for _, line := range r.Ingredients {
		if line.Item == name && containsAll(line.Forms, forms) {
			return true
		}
	}
	return false
}

func containsAll(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, f := range have {
		set[f] = struct{}{}
	}
	for _, f := range want {
		if _, ok := set[f]; !ok {
			return false
		}
	}
	return true
}
