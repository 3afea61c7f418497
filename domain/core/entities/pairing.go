package entities

import (
	"strings"
	"time"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// Pairing is a named, user-curated group of recipes. Recipe ids are not
// kept in sync with recipe deletion; unknown ids are skipped when read.
type Pairing struct {
	id        valueobjects.ID
	name      string
	recipeIDs []valueobjects.ID
	createdAt time.Time
}

// NewPairing creates a pairing over at least one recipe. Duplicate ids are
// collapsed, keeping first occurrence order.
func NewPairing(name string, recipeIDs []valueobjects.ID) (*Pairing, error) {
	seen := make(valueobjects.IDSet, len(recipeIDs))
	ids := make([]valueobjects.ID, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		if id.IsZero() || seen.Has(id) {
			continue
		}
		seen.Add(id)
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, pkgerrors.NewValidationError("at least one recipe required")
	}
	return &Pairing{
		id:        valueobjects.NewID(),
		name:      strings.TrimSpace(name),
		recipeIDs: ids,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructPairing rebuilds a pairing from storage.
func ReconstructPairing(id valueobjects.ID, name string, recipeIDs []valueobjects.ID, createdAt time.Time) *Pairing {
	return &Pairing{
		id:        id,
		name:      name,
		recipeIDs: append([]valueobjects.ID(nil), recipeIDs...),
		createdAt: createdAt,
	}
}

func (p *Pairing) ID() valueobjects.ID  { return p.id }
func (p *Pairing) Name() string         { return p.name }
func (p *Pairing) CreatedAt() time.Time { return p.createdAt }

func (p *Pairing) RecipeIDs() []valueobjects.ID {
	return append([]valueobjects.ID(nil), p.recipeIDs...)
}
