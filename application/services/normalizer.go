package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/validators"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// Normalizer maps free-text ingredient, unit and form names onto shared
// reference entities, creating them on first use.
type Normalizer struct {
	refs      ports.ReferenceRepositories
	validator *validators.IngredientLineValidator
	logger    *zap.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(refs ports.ReferenceRepositories, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		refs:      refs,
		validator: validators.NewIngredientLineValidator(),
		logger:    logger,
	}
}

// Resolve returns the id of the entity of kind named name, creating the
// entity when no exact match exists. The name is trimmed first.
func (n *Normalizer) Resolve(ctx context.Context, kind valueobjects.EntityKind, name string) (valueobjects.ID, error) {
	trimmed, err := entities.NormalizeName(name)
	if err != nil {
		return "", err
	}

	repo, err := n.refs.For(kind)
	if err != nil {
		return "", err
	}

	existing, err := repo.FindByName(ctx, trimmed)
	if err != nil {
		return "", fmt.Errorf("failed to look up %s %q: %w", kind, trimmed, err)
	}
	if existing != nil {
		return existing.ID(), nil
	}

	entity, err := entities.NewReferenceEntity(kind, trimmed)
	if err != nil {
		return "", err
	}

	if err := repo.Create(ctx, entity); err != nil {
		if !pkgerrors.IsConflict(err) {
			return "", fmt.Errorf("failed to create %s %q: %w", kind, trimmed, err)
		}
		// Another writer created the same name between lookup and insert.
		winner, findErr := repo.FindByName(ctx, trimmed)
		if findErr != nil || winner == nil {
			return "", err
		}
		return winner.ID(), nil
	}

	n.logger.Info("Reference entity created",
		zap.String("kind", string(kind)),
		zap.String("id", entity.ID().String()),
		zap.String("name", trimmed),
	)
	return entity.ID(), nil
}

// ResolveIngredientName resolves an ingredient name to its id.
func (n *Normalizer) ResolveIngredientName(ctx context.Context, name string) (valueobjects.ID, error) {
	return n.Resolve(ctx, valueobjects.KindIngredient, name)
}

// ResolveUnitName resolves a unit name to its id.
func (n *Normalizer) ResolveUnitName(ctx context.Context, name string) (valueobjects.ID, error) {
	return n.Resolve(ctx, valueobjects.KindUnit, name)
}

// ResolveFormName resolves an ingredient form name to its id.
func (n *Normalizer) ResolveFormName(ctx context.Context, name string) (valueobjects.ID, error) {
	return n.Resolve(ctx, valueobjects.KindForm, name)
}

// BuildIngredientLines validates and resolves submitted lines in order.
// Blank lines are dropped. Lines are resolved one at a time, so entities
// created for earlier lines remain when a later line fails.
func (n *Normalizer) BuildIngredientLines(ctx context.Context, raw []valueobjects.RawIngredientLine) ([]valueobjects.IngredientLine, error) {
	lines := make([]valueobjects.IngredientLine, 0, len(raw))

	for i, r := range raw {
		if r.IsEmpty() {
			continue
		}

		checked, err := n.validator.Check(i, r)
		if err != nil {
			return nil, err
		}

		line, err := n.resolveLine(ctx, checked)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func (n *Normalizer) resolveLine(ctx context.Context, checked validators.CheckedLine) (valueobjects.IngredientLine, error) {
	line := valueobjects.IngredientLine{Core: checked.Core}

	ingredientID, err := n.ResolveIngredientName(ctx, checked.Item)
	if err != nil {
		return line, err
	}
	line.IngredientID = ingredientID

	if checked.HasQuantity() {
		q := &valueobjects.Quantity{Amount: checked.Amount}
		if checked.Unit != "" {
			unitID, err := n.ResolveUnitName(ctx, checked.Unit)
			if err != nil {
				return line, err
			}
			q.UnitID = unitID
		}
		line.Quantity = q
	}

	for _, form := range checked.Forms {
		formID, err := n.ResolveFormName(ctx, form)
		if err != nil {
			return line, err
		}
		line.FormIDs = append(line.FormIDs, formID)
	}

	return line, nil
}
