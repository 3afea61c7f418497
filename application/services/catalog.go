package services

import (
	"context"
	"fmt"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/recipeview"
)

// Catalog builds the joined read models served to the public pages.
type Catalog struct {
	refs     ports.ReferenceRepositories
	recipes  ports.RecipeRepository
	pairings ports.PairingRepository
}

// NewCatalog creates a new catalog
func NewCatalog(refs ports.ReferenceRepositories, recipes ports.RecipeRepository, pairings ports.PairingRepository) *Catalog {
	return &Catalog{refs: refs, recipes: recipes, pairings: pairings}
}

type nameIndex map[valueobjects.EntityKind]map[valueobjects.ID]*entities.ReferenceEntity

// ListRecipes returns every recipe with entity names resolved, in creation
// order.
func (c *Catalog) ListRecipes(ctx context.Context) ([]recipeview.Recipe, error) {
	recipes, err := c.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	index, err := c.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]recipeview.Recipe, len(recipes))
	for i, r := range recipes {
		out[i] = index.join(r)
	}
	return out, nil
}

// GetRecipe returns one joined recipe.
func (c *Catalog) GetRecipe(ctx context.Context, id valueobjects.ID) (recipeview.Recipe, error) {
	r, err := c.recipes.GetByID(ctx, id)
	if err != nil {
		return recipeview.Recipe{}, err
	}
	index, err := c.loadIndex(ctx)
	if err != nil {
		return recipeview.Recipe{}, err
	}
	return index.join(r), nil
}

// ListNames returns the names of every entity of kind, sorted.
func (c *Catalog) ListNames(ctx context.Context, kind valueobjects.EntityKind) ([]string, error) {
	list, err := c.ListEntities(ctx, kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list))
	for i, e := range list {
		names[i] = e.Name
	}
	return names, nil
}

// ListEntities returns every entity of kind in name order.
func (c *Catalog) ListEntities(ctx context.Context, kind valueobjects.EntityKind) ([]recipeview.NamedEntity, error) {
	repo, err := c.refs.For(kind)
	if err != nil {
		return nil, err
	}
	list, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entities: %w", kind, err)
	}
	return NamedEntities(list), nil
}

// ListPairings returns every pairing with the recipes that still exist.
// Ids of deleted recipes are kept in RecipeIDs but skipped in Recipes.
func (c *Catalog) ListPairings(ctx context.Context) ([]recipeview.PairingView, error) {
	pairings, err := c.pairings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairings: %w", err)
	}
	recipes, err := c.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	titles := make(map[valueobjects.ID]string, len(recipes))
	for _, r := range recipes {
		titles[r.ID()] = r.Title()
	}

	out := make([]recipeview.PairingView, len(pairings))
	for i, p := range pairings {
		view := recipeview.PairingView{
			ID:        p.ID(),
			Name:      p.Name(),
			RecipeIDs: p.RecipeIDs(),
			Recipes:   []recipeview.RecipeRef{},
			CreatedAt: p.CreatedAt(),
		}
		for _, id := range view.RecipeIDs {
			if title, ok := titles[id]; ok {
				view.Recipes = append(view.Recipes, recipeview.RecipeRef{ID: id, Title: title})
			}
		}
		out[i] = view
	}
	return out, nil
}

// NamedEntities converts entities to their list representation.
func NamedEntities(list []*entities.ReferenceEntity) []recipeview.NamedEntity {
	out := make([]recipeview.NamedEntity, len(list))
	for i, e := range list {
		out[i] = recipeview.NamedEntity{ID: e.ID(), Name: e.Name(), ProteinPer100g: e.ProteinPer100g()}
	}
	return out
}

func (c *Catalog) loadIndex(ctx context.Context) (nameIndex, error) {
	index := make(nameIndex, len(valueobjects.AllKinds))
	for _, kind := range valueobjects.AllKinds {
		repo, err := c.refs.For(kind)
		if err != nil {
			return nil, err
		}
		list, err := repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s entities: %w", kind, err)
		}
		byID := make(map[valueobjects.ID]*entities.ReferenceEntity, len(list))
		for _, e := range list {
			byID[e.ID()] = e
		}
		index[kind] = byID
	}
	return index, nil
}

// join resolves a recipe's ids to names. References to entities that no
// longer exist resolve to empty names or are skipped for forms.
func (idx nameIndex) join(r *entities.Recipe) recipeview.Recipe {
	lines := r.Lines()
	out := recipeview.Recipe{
		ID:           r.ID(),
		Title:        r.Title(),
		Instructions: r.Instructions(),
		Ingredients:  make([]recipeview.Line, len(lines)),
		CreatedAt:    r.CreatedAt(),
	}

	for i, l := range lines {
		line := recipeview.Line{IngredientID: l.IngredientID, Core: l.Core}
		if ing, ok := idx[valueobjects.KindIngredient][l.IngredientID]; ok {
			line.Item = ing.Name()
			line.ProteinPer100g = ing.ProteinPer100g()
		}
		for _, formID := range l.FormIDs {
			if form, ok := idx[valueobjects.KindForm][formID]; ok {
				line.Forms = append(line.Forms, form.Name())
			}
		}
		if l.Quantity != nil {
			q := &recipeview.Quantity{Amount: l.Quantity.Amount}
			if unit, ok := idx[valueobjects.KindUnit][l.Quantity.UnitID]; ok {
				q.Unit = unit.Name()
			}
			line.Quantity = q
		}
		out.Ingredients[i] = line
	}
	return out
}
