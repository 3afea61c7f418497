package commands

import (
	"math"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// RemoveReferenceCommand deletes one ingredient, unit or form. It fails
// with a conflict while any recipe still references the entity.
type RemoveReferenceCommand struct {
	AdminAuth
	Kind     string `json:"kind"`
	EntityID string `json:"entityId"`
}

// Validate validates the command
func (c RemoveReferenceCommand) Validate() error {
	kind, err := parseKind(c.Kind)
	if err != nil {
		return err
	}
	_, err = parseID(c.EntityID, kind.Label())
	return err
}

// EntityKind returns the parsed kind
func (c RemoveReferenceCommand) EntityKind() valueobjects.EntityKind {
	kind, _ := valueobjects.ParseEntityKind(c.Kind)
	return kind
}

// ID returns the parsed entity id
func (c RemoveReferenceCommand) ID() valueobjects.ID {
	id, _ := valueobjects.ParseID(c.EntityID)
	return id
}

// Collections implements bus.WriteScoped
func (c RemoveReferenceCommand) Collections() []string {
	return []string{c.EntityKind().Collection()}
}

// RemoveUnusedCommand deletes every entity of a kind no recipe references.
type RemoveUnusedCommand struct {
	AdminAuth
	Kind string `json:"kind"`
}

// RemoveUnusedResult reports how many entities were deleted
type RemoveUnusedResult struct {
	DeletedCount int `json:"deletedCount"`
}

// Validate validates the command
func (c RemoveUnusedCommand) Validate() error {
	_, err := parseKind(c.Kind)
	return err
}

// EntityKind returns the parsed kind
func (c RemoveUnusedCommand) EntityKind() valueobjects.EntityKind {
	kind, _ := valueobjects.ParseEntityKind(c.Kind)
	return kind
}

// Collections implements bus.WriteScoped
func (c RemoveUnusedCommand) Collections() []string {
	return []string{c.EntityKind().Collection()}
}

// SaveIngredientCommand renames or creates an ingredient and sets its
// protein content. A nil ProteinPer100g clears the value.
type SaveIngredientCommand struct {
	AdminAuth
	IngredientID   string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	ProteinPer100g *float64 `json:"proteinPer100g,omitempty"`
}

// Validate validates the command
func (c SaveIngredientCommand) Validate() error {
	if c.IngredientID != "" {
		if _, err := parseID(c.IngredientID, "ingredient"); err != nil {
			return err
		}
	}
	if p := c.ProteinPer100g; p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0) {
		return pkgerrors.NewValidationError("protein per 100g must be a non-negative number")
	}
	return nil
}

// ID returns the parsed ingredient id, or the zero id when creating
func (c SaveIngredientCommand) ID() valueobjects.ID {
	id, _ := valueobjects.ParseID(c.IngredientID)
	return id
}

// Collections implements bus.WriteScoped
func (c SaveIngredientCommand) Collections() []string {
	return []string{valueobjects.CollectionIngredients}
}
