// Package queries holds every catalog read. Queries that implement
// bus.ReadScoped name the collections they read, which lets the query bus
// cache them until one of those collections is written.
package queries

import (
	"fmt"
	"strings"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

var recipeReads = []string{
	valueobjects.CollectionRecipes,
	valueobjects.CollectionIngredients,
	valueobjects.CollectionUnits,
	valueobjects.CollectionForms,
}

// ListRecipesQuery lists joined recipes. When Ingredients is set only
// recipes having a line for every named ingredient are returned; Forms
// further requires those lines to carry the listed forms.
type ListRecipesQuery struct {
	Ingredients []string
	Forms       map[string][]string
}

// Validate validates the query
func (q ListRecipesQuery) Validate() error {
	for name := range q.Forms {
		if !containsName(q.Ingredients, name) {
			return pkgerrors.NewValidationError("form filter for unselected ingredient " + name).
				WithCode(pkgerrors.CodeInvalidRequest)
		}
	}
	return nil
}

// Collections implements bus.ReadScoped
func (q ListRecipesQuery) Collections() []string { return recipeReads }

// GetRecipeQuery loads one joined recipe
type GetRecipeQuery struct {
	RecipeID string
}

// Validate validates the query
func (q GetRecipeQuery) Validate() error {
	_, err := parseID(q.RecipeID, "recipe")
	return err
}

// Collections implements bus.ReadScoped
func (q GetRecipeQuery) Collections() []string { return recipeReads }

// ID returns the parsed recipe id
func (q GetRecipeQuery) ID() valueobjects.ID {
	id, _ := valueobjects.ParseID(q.RecipeID)
	return id
}

// RecipeViewQuery renders a recipe for a serving count or for a custom
// amount typed against one core line.
type RecipeViewQuery struct {
	RecipeID     string
	Servings     int
	HasCustom    bool
	CustomLine   int
	CustomAmount float64
}

// Validate validates the query
func (q RecipeViewQuery) Validate() error {
	_, err := parseID(q.RecipeID, "recipe")
	return err
}

// Collections implements bus.ReadScoped
func (q RecipeViewQuery) Collections() []string { return recipeReads }

// ID returns the parsed recipe id
func (q RecipeViewQuery) ID() valueobjects.ID {
	id, _ := valueobjects.ParseID(q.RecipeID)
	return id
}

// ListNamesQuery lists the sorted names of one entity kind
type ListNamesQuery struct {
	Kind string
}

// Validate validates the query
func (q ListNamesQuery) Validate() error {
	_, err := parseKind(q.Kind)
	return err
}

// EntityKind returns the parsed kind
func (q ListNamesQuery) EntityKind() valueobjects.EntityKind { return mustKind(q.Kind) }

// Collections implements bus.ReadScoped
func (q ListNamesQuery) Collections() []string {
	return []string{q.EntityKind().Collection()}
}

// MaxSuggestionLimit is the largest limit a suggestion query accepts.
const MaxSuggestionLimit = 50

// SuggestNamesQuery matches names of one kind against typed text
type SuggestNamesQuery struct {
	Kind  string
	Text  string
	Limit int
}

// Validate validates the query
func (q SuggestNamesQuery) Validate() error {
	if q.Limit < 0 || q.Limit > MaxSuggestionLimit {
		return pkgerrors.NewValidationError(fmt.Sprintf("limit must be between 0 and %d", MaxSuggestionLimit)).
			WithCode(pkgerrors.CodeInvalidRequest)
	}
	_, err := parseKind(q.Kind)
	return err
}

// EntityKind returns the parsed kind
func (q SuggestNamesQuery) EntityKind() valueobjects.EntityKind { return mustKind(q.Kind) }

// Collections implements bus.ReadScoped
func (q SuggestNamesQuery) Collections() []string {
	return []string{q.EntityKind().Collection()}
}

// ListUnusedQuery lists entities of one kind no recipe references
type ListUnusedQuery struct {
	Kind string
}

// Validate validates the query
func (q ListUnusedQuery) Validate() error {
	_, err := parseKind(q.Kind)
	return err
}

// EntityKind returns the parsed kind
func (q ListUnusedQuery) EntityKind() valueobjects.EntityKind { return mustKind(q.Kind) }

// Collections implements bus.ReadScoped
func (q ListUnusedQuery) Collections() []string {
	return []string{q.EntityKind().Collection(), valueobjects.CollectionRecipes}
}

// ListIngredientsQuery lists ingredients with their protein content
type ListIngredientsQuery struct{}

// Validate validates the query
func (q ListIngredientsQuery) Validate() error { return nil }

// Collections implements bus.ReadScoped
func (q ListIngredientsQuery) Collections() []string {
	return []string{valueobjects.CollectionIngredients}
}

// ListPairingsQuery lists pairings with their recipe titles
type ListPairingsQuery struct{}

// Validate validates the query
func (q ListPairingsQuery) Validate() error { return nil }

// Collections implements bus.ReadScoped
func (q ListPairingsQuery) Collections() []string {
	return []string{valueobjects.CollectionPairings, valueobjects.CollectionRecipes}
}

func parseID(raw, resource string) (valueobjects.ID, error) {
	id, ok := valueobjects.ParseID(raw)
	if !ok {
		return "", pkgerrors.NewValidationError("invalid " + resource + " id").WithCode(pkgerrors.CodeInvalidRequest)
	}
	return id, nil
}

func parseKind(raw string) (valueobjects.EntityKind, error) {
	kind, err := valueobjects.ParseEntityKind(raw)
	if err != nil {
		return "", pkgerrors.NewValidationError(err.Error()).WithCode(pkgerrors.CodeInvalidRequest)
	}
	return kind, nil
}

func mustKind(raw string) valueobjects.EntityKind {
	kind, _ := valueobjects.ParseEntityKind(raw)
	return kind
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if strings.TrimSpace(n) == strings.TrimSpace(name) {
			return true
		}
	}
	return false
}
