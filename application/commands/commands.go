// Package commands holds every catalog mutation. Commands are plain values
// dispatched on the command bus; their handlers live in commands/handlers.
package commands

import (
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// AdminAuth carries the admin secret of a gated command.
type AdminAuth struct {
	Secret string `json:"-"`
}

// AdminSecret implements bus.AdminCommand
func (a AdminAuth) AdminSecret() string {
	return a.Secret
}

// recipeWrites are the collections touched by a recipe write. Resolving
// names can create ingredients, units and forms.
var recipeWrites = []string{
	valueobjects.CollectionRecipes,
	valueobjects.CollectionIngredients,
	valueobjects.CollectionUnits,
	valueobjects.CollectionForms,
}

// AllCollections lists every collection in the catalog.
var AllCollections = []string{
	valueobjects.CollectionRecipes,
	valueobjects.CollectionIngredients,
	valueobjects.CollectionUnits,
	valueobjects.CollectionForms,
	valueobjects.CollectionPairings,
}

func parseID(raw, resource string) (valueobjects.ID, error) {
	id, ok := valueobjects.ParseID(raw)
	if !ok {
		return "", pkgerrors.NewValidationError("invalid " + resource + " id").
			WithCode(pkgerrors.CodeInvalidRequest)
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

// IDResult is returned by commands that create or address one document.
type IDResult struct {
	ID string `json:"id"`
}
