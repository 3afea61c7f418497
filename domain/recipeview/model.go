// Package recipeview holds the read side of the catalog: recipes joined to
// entity names, and the pure computations the public pages run on them
// (filtering, serving scaling and protein totals).
package recipeview

import (
	"time"

	"recipebook/domain/core/valueobjects"
)

// Recipe is a recipe with every entity reference resolved to its name.
type Recipe struct {
	ID           valueobjects.ID `json:"id"`
	Title        string          `json:"title"`
	Instructions string          `json:"instructions"`
	Ingredients  []Line          `json:"ingredients"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Line is a joined ingredient line.
type Line struct {
	IngredientID   valueobjects.ID `json:"ingredientId"`
	Item           string          `json:"item"`
	Core           bool            `json:"core"`
	Forms          []string        `json:"forms,omitempty"`
	Quantity       *Quantity       `json:"quantity,omitempty"`
	ProteinPer100g *float64        `json:"proteinPer100g,omitempty"`
}

// Quantity is a joined quantity; Unit is the unit name.
type Quantity struct {
	Amount *float64 `json:"amount,omitempty"`
	Unit   string   `json:"unit,omitempty"`
}

// Amount returns the line amount, or nil when there is none.
func (l Line) Amount() *float64 {
	if l.Quantity == nil {
		return nil
	}
	return l.Quantity.Amount
}

// UnitName returns the line unit name, or "".
func (l Line) UnitName() string {
	if l.Quantity == nil {
		return ""
	}
	return l.Quantity.Unit
}

// PairingView is a pairing with the recipes that still exist.
type PairingView struct {
	ID        valueobjects.ID   `json:"id"`
	Name      string            `json:"name,omitempty"`
	RecipeIDs []valueobjects.ID `json:"recipeIds"`
	Recipes   []RecipeRef       `json:"recipes"`
	CreatedAt time.Time         `json:"createdAt"`
}

// RecipeRef is the minimal recipe data rendered inside a pairing.
type RecipeRef struct {
	ID    valueobjects.ID `json:"id"`
	Title string          `json:"title"`
}

// NamedEntity is the list representation of a reference entity.
type NamedEntity struct {
	ID             valueobjects.ID `json:"id"`
	Name           string          `json:"name"`
	ProteinPer100g *float64        `json:"proteinPer100g,omitempty"`
}
