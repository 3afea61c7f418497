package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/application/services"
	"recipebook/domain/core/valueobjects"
)

// RemoveReferenceHandler deletes one unreferenced ingredient, unit or form
type RemoveReferenceHandler struct {
	orphans *services.OrphanDetector
}

// NewRemoveReferenceHandler creates a new remove reference handler
func NewRemoveReferenceHandler(orphans *services.OrphanDetector) *RemoveReferenceHandler {
	return &RemoveReferenceHandler{orphans: orphans}
}

// Handle executes the remove reference command
func (h *RemoveReferenceHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.RemoveReferenceCommand)
	if !ok {
		return nil, unexpected(c)
	}
	return nil, h.orphans.RemoveEntity(ctx, cmd.EntityKind(), cmd.ID())
}

// RemoveUnusedHandler deletes every unreferenced entity of a kind
type RemoveUnusedHandler struct {
	orphans *services.OrphanDetector
}

// NewRemoveUnusedHandler creates a new remove unused handler
func NewRemoveUnusedHandler(orphans *services.OrphanDetector) *RemoveUnusedHandler {
	return &RemoveUnusedHandler{orphans: orphans}
}

// Handle executes the remove unused command
func (h *RemoveUnusedHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.RemoveUnusedCommand)
	if !ok {
		return nil, unexpected(c)
	}
	deleted, err := h.orphans.RemoveAllUnused(ctx, cmd.EntityKind())
	if err != nil {
		return nil, err
	}
	return commands.RemoveUnusedResult{DeletedCount: deleted}, nil
}

// SaveIngredientHandler edits an ingredient's name and protein content
type SaveIngredientHandler struct {
	normalizer *services.Normalizer
	refs       ports.ReferenceRepositories
	logger     *zap.Logger
}

// NewSaveIngredientHandler creates a new save ingredient handler
func NewSaveIngredientHandler(normalizer *services.Normalizer, refs ports.ReferenceRepositories, logger *zap.Logger) *SaveIngredientHandler {
	return &SaveIngredientHandler{
		normalizer: normalizer,
		refs:       refs,
		logger:     logger,
	}
}

// Handle executes the save ingredient command. With an id the ingredient is
// renamed in place; without one it is looked up or created by name.
func (h *SaveIngredientHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.SaveIngredientCommand)
	if !ok {
		return nil, unexpected(c)
	}

	repo, err := h.refs.For(valueobjects.KindIngredient)
	if err != nil {
		return nil, err
	}

	id := cmd.ID()
	if id.IsZero() {
		id, err = h.normalizer.ResolveIngredientName(ctx, cmd.Name)
		if err != nil {
			return nil, err
		}
	}

	ingredient, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ingredient.Rename(cmd.Name); err != nil {
		return nil, err
	}
	if err := ingredient.SetProteinPer100g(cmd.ProteinPer100g); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}

	h.logger.Info("Ingredient saved",
		zap.String("ingredient_id", id.String()),
		zap.String("name", ingredient.Name()),
		zap.Bool("has_protein", cmd.ProteinPer100g != nil),
	)
	return commands.IDResult{ID: id.String()}, nil
}
