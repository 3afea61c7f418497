package entities

import (
	"math"
	"strings"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// ReferenceEntity is a normalized, named record (ingredient, unit or form)
// shared by every recipe that mentions its name.
type ReferenceEntity struct {
	id             valueobjects.ID
	kind           valueobjects.EntityKind
	name           string
	proteinPer100g *float64
}

// NewReferenceEntity creates an entity with a fresh id. The name is trimmed
// and must not be empty.
func NewReferenceEntity(kind valueobjects.EntityKind, name string) (*ReferenceEntity, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown entity kind")
	}
	trimmed, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return &ReferenceEntity{
		id:   valueobjects.NewID(),
		kind: kind,
		name: trimmed,
	}, nil
}

// ReconstructReferenceEntity rebuilds an entity from storage.
func ReconstructReferenceEntity(kind valueobjects.EntityKind, id valueobjects.ID, name string, proteinPer100g *float64) *ReferenceEntity {
	return &ReferenceEntity{
		id:             id,
		kind:           kind,
		name:           name,
		proteinPer100g: copyFloat(proteinPer100g),
	}
}

// NormalizeName trims a submitted name and rejects blank input.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.NewValidationError("name is required")
	}
	return trimmed, nil
}

func (e *ReferenceEntity) ID() valueobjects.ID           { return e.id }
func (e *ReferenceEntity) Kind() valueobjects.EntityKind { return e.kind }
func (e *ReferenceEntity) Name() string                  { return e.name }

// ProteinPer100g is only ever set on ingredients.
func (e *ReferenceEntity) ProteinPer100g() *float64 {
	return copyFloat(e.proteinPer100g)
}

// Rename replaces the entity name.
func (e *ReferenceEntity) Rename(name string) error {
	trimmed, err := NormalizeName(name)
	if err != nil {
		return err
	}
	e.name = trimmed
	return nil
}

// SetProteinPer100g sets or clears the protein content. Only ingredients
// carry protein data.
func (e *ReferenceEntity) SetProteinPer100g(value *float64) error {
	if value == nil {
		e.proteinPer100g = nil
		return nil
	}
	if e.kind != valueobjects.KindIngredient {
		return pkgerrors.NewValidationError("only ingredients carry protein data")
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) || *value < 0 {
		return pkgerrors.NewValidationError("protein per 100g must be a non-negative number")
	}
	e.proteinPer100g = copyFloat(value)
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
