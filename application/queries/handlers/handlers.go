package handlers

import (
	"context"
	"fmt"

	"recipebook/application/queries"
	"recipebook/application/queries/bus"
	"recipebook/application/services"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/recipeview"
	pkgerrors "recipebook/pkg/errors"
)

// ListRecipesHandler serves ListRecipesQuery
type ListRecipesHandler struct {
	catalog *services.Catalog
}

// NewListRecipesHandler creates a new list recipes handler
func NewListRecipesHandler(catalog *services.Catalog) *ListRecipesHandler {
	return &ListRecipesHandler{catalog: catalog}
}

// Handle executes the query
func (h *ListRecipesHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ListRecipesQuery)
	if !ok {
		return nil, unexpected(q)
	}
	recipes, err := h.catalog.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return recipeview.FilterRecipes(recipes, query.Ingredients, query.Forms), nil
}

// GetRecipeHandler serves GetRecipeQuery
type GetRecipeHandler struct {
	catalog *services.Catalog
}

// NewGetRecipeHandler creates a new get recipe handler
func NewGetRecipeHandler(catalog *services.Catalog) *GetRecipeHandler {
	return &GetRecipeHandler{catalog: catalog}
}

// Handle executes the query
func (h *GetRecipeHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetRecipeQuery)
	if !ok {
		return nil, unexpected(q)
	}
	return h.catalog.GetRecipe(ctx, query.ID())
}

// RecipeViewHandler serves RecipeViewQuery
type RecipeViewHandler struct {
	catalog *services.Catalog
}

// NewRecipeViewHandler creates a new recipe view handler
func NewRecipeViewHandler(catalog *services.Catalog) *RecipeViewHandler {
	return &RecipeViewHandler{catalog: catalog}
}

// Handle executes the query. Servings default to one. A custom amount is
// only accepted for a core line that has an amount to scale from.
func (h *RecipeViewHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.RecipeViewQuery)
	if !ok {
		return nil, unexpected(q)
	}

	recipe, err := h.catalog.GetRecipe(ctx, query.ID())
	if err != nil {
		return nil, err
	}

	state := recipeview.NewScaleState()
	if query.Servings != 0 {
		if err := state.SelectServings(query.Servings); err != nil {
			return nil, err
		}
	}
	if query.HasCustom {
		if query.CustomLine < 0 || query.CustomLine >= len(recipe.Ingredients) {
			return nil, pkgerrors.NewValidationError("custom line out of range").
				WithCode(pkgerrors.CodeInvalidRequest)
		}
		line := recipe.Ingredients[query.CustomLine]
		if !line.Core || line.Amount() == nil {
			return nil, pkgerrors.NewValidationError("custom amounts apply to core lines only").
				WithCode(pkgerrors.CodeInvalidRequest)
		}
		if err := state.SetCustomAmount(query.CustomLine, query.CustomAmount); err != nil {
			return nil, err
		}
	}

	return recipeview.Render(recipe, state), nil
}

// ListNamesHandler serves ListNamesQuery
type ListNamesHandler struct {
	catalog *services.Catalog
}

// NewListNamesHandler creates a new list names handler
func NewListNamesHandler(catalog *services.Catalog) *ListNamesHandler {
	return &ListNamesHandler{catalog: catalog}
}

// Handle executes the query
func (h *ListNamesHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ListNamesQuery)
	if !ok {
		return nil, unexpected(q)
	}
	return h.catalog.ListNames(ctx, query.EntityKind())
}

// SuggestNamesHandler serves SuggestNamesQuery
type SuggestNamesHandler struct {
	suggester *services.Suggester
}

// NewSuggestNamesHandler creates a new suggest names handler
func NewSuggestNamesHandler(suggester *services.Suggester) *SuggestNamesHandler {
	return &SuggestNamesHandler{suggester: suggester}
}

// Handle executes the query
func (h *SuggestNamesHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.SuggestNamesQuery)
	if !ok {
		return nil, unexpected(q)
	}
	return h.suggester.Suggest(ctx, query.EntityKind(), query.Text, query.Limit)
}

// ListUnusedHandler serves ListUnusedQuery
type ListUnusedHandler struct {
	orphans *services.OrphanDetector
}

// NewListUnusedHandler creates a new list unused handler
func NewListUnusedHandler(orphans *services.OrphanDetector) *ListUnusedHandler {
	return &ListUnusedHandler{orphans: orphans}
}

// Handle executes the query
func (h *ListUnusedHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ListUnusedQuery)
	if !ok {
		return nil, unexpected(q)
	}
	unused, err := h.orphans.ListUnused(ctx, query.EntityKind())
	if err != nil {
		return nil, err
	}
	return services.NamedEntities(unused), nil
}

// ListIngredientsHandler serves ListIngredientsQuery
type ListIngredientsHandler struct {
	catalog *services.Catalog
}

// NewListIngredientsHandler creates a new list ingredients handler
func NewListIngredientsHandler(catalog *services.Catalog) *ListIngredientsHandler {
	return &ListIngredientsHandler{catalog: catalog}
}

// Handle executes the query
func (h *ListIngredientsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	if _, ok := q.(queries.ListIngredientsQuery); !ok {
		return nil, unexpected(q)
	}
	return h.catalog.ListEntities(ctx, valueobjects.KindIngredient)
}

// ListPairingsHandler serves ListPairingsQuery
type ListPairingsHandler struct {
	catalog *services.Catalog
}

// NewListPairingsHandler creates a new list pairings handler
func NewListPairingsHandler(catalog *services.Catalog) *ListPairingsHandler {
	return &ListPairingsHandler{catalog: catalog}
}

// Handle executes the query
func (h *ListPairingsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	if _, ok := q.(queries.ListPairingsQuery); !ok {
		return nil, unexpected(q)
	}
	return h.catalog.ListPairings(ctx)
}

// RegisterAll registers every query handler on the bus
func RegisterAll(b *bus.QueryBus, catalog *services.Catalog, suggester *services.Suggester, orphans *services.OrphanDetector) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.ListRecipesQuery{}, NewListRecipesHandler(catalog)},
		{queries.GetRecipeQuery{}, NewGetRecipeHandler(catalog)},
		{queries.RecipeViewQuery{}, NewRecipeViewHandler(catalog)},
		{queries.ListNamesQuery{}, NewListNamesHandler(catalog)},
		{queries.SuggestNamesQuery{}, NewSuggestNamesHandler(suggester)},
		{queries.ListUnusedQuery{}, NewListUnusedHandler(orphans)},
		{queries.ListIngredientsQuery{}, NewListIngredientsHandler(catalog)},
		{queries.ListPairingsQuery{}, NewListPairingsHandler(catalog)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func unexpected(q bus.Query) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", q))
}
