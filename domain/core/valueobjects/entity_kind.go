package valueobjects

import "fmt"

// EntityKind names one of the three reference entity collections.
type EntityKind string

const (
	KindIngredient EntityKind = "ingredient"
	KindUnit       EntityKind = "unit"
	KindForm       EntityKind = "form"
)

// Collection names used for cache tags and change events.
const (
	CollectionRecipes     = "recipes"
	CollectionIngredients = "ingredients"
	CollectionUnits       = "units"
	CollectionForms       = "ingredientForms"
	CollectionPairings    = "pairings"
)

// AllKinds lists the reference entity kinds in deletion order.
var AllKinds = []EntityKind{KindIngredient, KindForm, KindUnit}

// ParseEntityKind accepts either the singular kind or its plural route
// segment ("ingredients", "units", "forms").
func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "ingredient", "ingredients":
		return KindIngredient, nil
	case "unit", "units":
		return KindUnit, nil
	case "form", "forms", "ingredientForms":
		return KindForm, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}

// IsValid reports whether k is one of the known kinds.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindIngredient, KindUnit, KindForm:
		return true
	}
	return false
}

// Collection returns the collection name holding entities of this kind.
func (k EntityKind) Collection() string {
	switch k {
	case KindIngredient:
		return CollectionIngredients
	case KindUnit:
		return CollectionUnits
	case KindForm:
		return CollectionForms
	}
	return string(k)
}

// Plural returns the route segment for the kind.
func (k EntityKind) Plural() string {
	switch k {
	case KindForm:
		return "forms"
	default:
		return string(k) + "s"
	}
}

// Label is the human readable name used in error messages.
func (k EntityKind) Label() string {
	if k == KindForm {
		return "ingredient form"
	}
	return string(k)
}
