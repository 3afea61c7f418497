package commands

import (
	"strings"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/utils"
)

// AddRecipeCommand creates a recipe from raw admin form lines.
type AddRecipeCommand struct {
	AdminAuth
	Title        string                           `json:"title" validate:"required,max=200"`
	Instructions string                           `json:"instructions" validate:"max=50000"`
	Ingredients  []valueobjects.RawIngredientLine `json:"ingredients"`
}

// Validate validates the command
func (c AddRecipeCommand) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return pkgerrors.NewValidationError("title is required")
	}
	return utils.ValidateStruct(c)
}

// Collections implements bus.WriteScoped
func (c AddRecipeCommand) Collections() []string { return recipeWrites }

// UpdateRecipeCommand changes the supplied fields of a recipe. Nil fields are
// left as they are.
type UpdateRecipeCommand struct {
	AdminAuth
	RecipeID     string                            `json:"recipeId"`
	Title        *string                           `json:"title,omitempty" validate:"omitempty,max=200"`
	Instructions *string                           `json:"instructions,omitempty" validate:"omitempty,max=50000"`
	Ingredients  *[]valueobjects.RawIngredientLine `json:"ingredients,omitempty"`
}

// Validate validates the command
func (c UpdateRecipeCommand) Validate() error {
	if _, err := parseID(c.RecipeID, "recipe"); err != nil {
		return err
	}
	if c.Title != nil && strings.TrimSpace(*c.Title) == "" {
		return pkgerrors.NewValidationError("title is required")
	}
	return utils.ValidateStruct(c)
}

// ID returns the parsed recipe id
func (c UpdateRecipeCommand) ID() valueobjects.ID {
	id, _ := valueobjects.ParseID(c.RecipeID)
	return id
}

// IsEmpty reports whether no field was supplied
func (c UpdateRecipeCommand) IsEmpty() bool {
	return c.Title == nil && c.Instructions == nil && c.Ingredients == nil
}

// Collections implements bus.WriteScoped
func (c UpdateRecipeCommand) Collections() []string { return recipeWrites }

// RemoveRecipeCommand deletes a recipe. Pairings that point at it keep the
// dangling id.
type RemoveRecipeCommand struct {
	AdminAuth
	RecipeID string `json:"recipeId"`
}

// Validate validates the command
func (c RemoveRecipeCommand) Validate() error {
	_, err := parseID(c.RecipeID, "recipe")
	return err
}

// ID returns the parsed recipe id
func (c RemoveRecipeCommand) ID() valueobjects.ID {
	id, _ := valueobjects.ParseID(c.RecipeID)
	return id
}

// Collections implements bus.WriteScoped
func (c RemoveRecipeCommand) Collections() []string {
	return []string{valueobjects.CollectionRecipes}
}
