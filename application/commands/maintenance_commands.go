package commands

import (
	"recipebook/application/services"
	pkgerrors "recipebook/pkg/errors"
)

// ClearAllDataCommand empties every collection.
type ClearAllDataCommand struct {
	AdminAuth
}

// ClearAllDataResult counts the deleted documents per collection
type ClearAllDataResult struct {
	Pairings    int `json:"pairings"`
	Recipes     int `json:"recipes"`
	Ingredients int `json:"ingredients"`
	Forms       int `json:"forms"`
	Units       int `json:"units"`
}

// Validate validates the command
func (c ClearAllDataCommand) Validate() error { return nil }

// Collections implements bus.WriteScoped
func (c ClearAllDataCommand) Collections() []string { return AllCollections }

// ImportSeedCommand bulk loads seed data.
type ImportSeedCommand struct {
	AdminAuth
	Seed services.Seed
}

// Validate validates the command
func (c ImportSeedCommand) Validate() error {
	if len(c.Seed.Ingredients) == 0 && len(c.Seed.Recipes) == 0 && len(c.Seed.Pairings) == 0 {
		return pkgerrors.NewValidationError("seed is empty").WithCode(pkgerrors.CodeInvalidRequest)
	}
	return nil
}

// Collections implements bus.WriteScoped
func (c ImportSeedCommand) Collections() []string { return AllCollections }
