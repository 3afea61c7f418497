package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/application/services"
	"recipebook/domain/core/entities"
	pkgerrors "recipebook/pkg/errors"
)

// AddRecipeHandler handles recipe creation commands
type AddRecipeHandler struct {
	normalizer *services.Normalizer
	recipes    ports.RecipeRepository
	logger     *zap.Logger
}

// NewAddRecipeHandler creates a new add recipe handler
func NewAddRecipeHandler(normalizer *services.Normalizer, recipes ports.RecipeRepository, logger *zap.Logger) *AddRecipeHandler {
	return &AddRecipeHandler{
		normalizer: normalizer,
		recipes:    recipes,
		logger:     logger,
	}
}

// Handle executes the add recipe command
func (h *AddRecipeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.AddRecipeCommand)
	if !ok {
		return nil, unexpected(c)
	}

	lines, err := h.normalizer.BuildIngredientLines(ctx, cmd.Ingredients)
	if err != nil {
		return nil, err
	}

	recipe, err := entities.NewRecipe(cmd.Title, cmd.Instructions, lines)
	if err != nil {
		return nil, err
	}

	if err := h.recipes.Save(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	h.logger.Info("Recipe added",
		zap.String("recipe_id", recipe.ID().String()),
		zap.String("title", recipe.Title()),
		zap.Int("lines", len(lines)),
	)
	return commands.IDResult{ID: recipe.ID().String()}, nil
}

// UpdateRecipeHandler handles partial recipe updates
type UpdateRecipeHandler struct {
	normalizer *services.Normalizer
	recipes    ports.RecipeRepository
	logger     *zap.Logger
}

// NewUpdateRecipeHandler creates a new update recipe handler
func NewUpdateRecipeHandler(normalizer *services.Normalizer, recipes ports.RecipeRepository, logger *zap.Logger) *UpdateRecipeHandler {
	return &UpdateRecipeHandler{
		normalizer: normalizer,
		recipes:    recipes,
		logger:     logger,
	}
}

// Handle executes the update recipe command
func (h *UpdateRecipeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.UpdateRecipeCommand)
	if !ok {
		return nil, unexpected(c)
	}

	recipe, err := h.recipes.GetByID(ctx, cmd.ID())
	if err != nil {
		return nil, err
	}
	result := commands.IDResult{ID: recipe.ID().String()}

	if cmd.IsEmpty() {
		return result, nil
	}

	if cmd.Ingredients != nil {
		lines, err := h.normalizer.BuildIngredientLines(ctx, *cmd.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := recipe.ReplaceLines(lines); err != nil {
			return nil, err
		}
	}
	if cmd.Title != nil {
		if err := recipe.SetTitle(*cmd.Title); err != nil {
			return nil, err
		}
	}
	if cmd.Instructions != nil {
		recipe.SetInstructions(*cmd.Instructions)
	}

	if err := h.recipes.Save(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	h.logger.Info("Recipe updated", zap.String("recipe_id", recipe.ID().String()))
	return result, nil
}

// RemoveRecipeHandler handles recipe deletion
type RemoveRecipeHandler struct {
	recipes ports.RecipeRepository
	logger  *zap.Logger
}

// NewRemoveRecipeHandler creates a new remove recipe handler
func NewRemoveRecipeHandler(recipes ports.RecipeRepository, logger *zap.Logger) *RemoveRecipeHandler {
	return &RemoveRecipeHandler{recipes: recipes, logger: logger}
}

// Handle executes the remove recipe command
func (h *RemoveRecipeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.RemoveRecipeCommand)
	if !ok {
		return nil, unexpected(c)
	}

	if err := h.recipes.Delete(ctx, cmd.ID()); err != nil {
		return nil, err
	}

	h.logger.Info("Recipe removed", zap.String("recipe_id", cmd.RecipeID))
	return nil, nil
}

func unexpected(c bus.Command) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", c))
}
