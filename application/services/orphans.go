package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// OrphanDetector finds reference entities no recipe refers to. Every call
// scans the full recipe collection. The scan and the delete that follows
// are not atomic: a recipe saved in between can be left with a dangling
// reference.
type OrphanDetector struct {
	refs    ports.ReferenceRepositories
	recipes ports.RecipeRepository
	logger  *zap.Logger
}

// NewOrphanDetector creates a new orphan detector
func NewOrphanDetector(refs ports.ReferenceRepositories, recipes ports.RecipeRepository, logger *zap.Logger) *OrphanDetector {
	return &OrphanDetector{refs: refs, recipes: recipes, logger: logger}
}

// UsedIDs returns the ids of kind referenced by at least one recipe.
func (d *OrphanDetector) UsedIDs(ctx context.Context, kind valueobjects.EntityKind) (valueobjects.IDSet, error) {
	recipes, err := d.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	used := make(valueobjects.IDSet)
	for _, r := range recipes {
		r.References(kind, used)
	}
	return used, nil
}

// ListUnused returns the entities of kind referenced by no recipe, in
// name order.
func (d *OrphanDetector) ListUnused(ctx context.Context, kind valueobjects.EntityKind) ([]*entities.ReferenceEntity, error) {
	repo, err := d.refs.For(kind)
	if err != nil {
		return nil, err
	}

	all, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entities: %w", kind, err)
	}

	used, err := d.UsedIDs(ctx, kind)
	if err != nil {
		return nil, err
	}

	unused := make([]*entities.ReferenceEntity, 0)
	for _, e := range all {
		if !used.Has(e.ID()) {
			unused = append(unused, e)
		}
	}
	return unused, nil
}

// RemoveEntity deletes one entity, refusing when a recipe still uses it.
func (d *OrphanDetector) RemoveEntity(ctx context.Context, kind valueobjects.EntityKind, id valueobjects.ID) error {
	repo, err := d.refs.For(kind)
	if err != nil {
		return err
	}

	if _, err := repo.GetByID(ctx, id); err != nil {
		return err
	}

	used, err := d.UsedIDs(ctx, kind)
	if err != nil {
		return err
	}
	if used.Has(id) {
		return pkgerrors.NewConflictError("entity is in use").
			WithCode(pkgerrors.CodeEntityInUse).
			WithDetail("kind", string(kind))
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	d.logger.Info("Reference entity removed",
		zap.String("kind", string(kind)),
		zap.String("id", id.String()),
	)
	return nil
}

// RemoveAllUnused deletes every unused entity of kind and reports how many
// were removed.
func (d *OrphanDetector) RemoveAllUnused(ctx context.Context, kind valueobjects.EntityKind) (int, error) {
	unused, err := d.ListUnused(ctx, kind)
	if err != nil {
		return 0, err
	}

	repo, err := d.refs.For(kind)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, e := range unused {
		if err := repo.Delete(ctx, e.ID()); err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return deleted, fmt.Errorf("failed to delete %s %s: %w", kind, e.ID(), err)
		}
		deleted++
	}

	d.logger.Info("Unused reference entities removed",
		zap.String("kind", string(kind)),
		zap.Int("deleted", deleted),
	)
	return deleted, nil
}
