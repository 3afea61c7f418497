package entities

import (
	"strings"
	"time"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// Recipe is a titled list of ingredient lines plus free-text instructions.
type Recipe struct {
	id           valueobjects.ID
	title        string
	instructions string
	lines        []valueobjects.IngredientLine
	createdAt    time.Time
	updatedAt    time.Time
}

// NewRecipe creates a recipe. A recipe always holds at least one
// ingredient line.
func NewRecipe(title, instructions string, lines []valueobjects.IngredientLine) (*Recipe, error) {
	r := &Recipe{id: valueobjects.NewID()}
	if err := r.SetTitle(title); err != nil {
		return nil, err
	}
	if err := r.ReplaceLines(lines); err != nil {
		return nil, err
	}
	r.instructions = instructions
	now := time.Now().UTC()
	r.createdAt = now
	r.updatedAt = now
	return r, nil
}

// ReconstructRecipe rebuilds a recipe from storage without validation.
func ReconstructRecipe(id valueobjects.ID, title, instructions string, lines []valueobjects.IngredientLine, createdAt, updatedAt time.Time) *Recipe {
	return &Recipe{
		id:           id,
		title:        title,
		instructions: instructions,
		lines:        cloneLines(lines),
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (r *Recipe) ID() valueobjects.ID  { return r.id }
func (r *Recipe) Title() string        { return r.title }
func (r *Recipe) Instructions() string { return r.instructions }
func (r *Recipe) CreatedAt() time.Time { return r.createdAt }
func (r *Recipe) UpdatedAt() time.Time { return r.updatedAt }

// Lines returns a copy of the ingredient lines in submission order.
func (r *Recipe) Lines() []valueobjects.IngredientLine {
	return cloneLines(r.lines)
}

// SetTitle trims and sets the title.
func (r *Recipe) SetTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return pkgerrors.NewValidationError("title is required")
	}
	r.title = trimmed
	r.touch()
	return nil
}

// SetInstructions stores the instructions verbatim.
func (r *Recipe) SetInstructions(instructions string) {
	r.instructions = instructions
	r.touch()
}

// ReplaceLines swaps the ingredient list.
func (r *Recipe) ReplaceLines(lines []valueobjects.IngredientLine) error {
	if len(lines) == 0 {
		return pkgerrors.NewValidationError("at least one ingredient required")
	}
	r.lines = cloneLines(lines)
	r.touch()
	return nil
}

// References collects the ids of every entity of kind used by the recipe.
func (r *Recipe) References(kind valueobjects.EntityKind, into valueobjects.IDSet) {
	for _, line := range r.lines {
		for _, id := range line.References(kind) {
			into.Add(id)
		}
	}
}

func (r *Recipe) touch() {
	if !r.createdAt.IsZero() {
		r.updatedAt = time.Now().UTC()
	}
}

func cloneLines(lines []valueobjects.IngredientLine) []valueobjects.IngredientLine {
	out := make([]valueobjects.IngredientLine, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}
