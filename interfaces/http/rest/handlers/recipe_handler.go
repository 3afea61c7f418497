package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/queries"
	querybus "recipebook/application/queries/bus"
	"recipebook/domain/core/valueobjects"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
)

// RecipeHandler handles recipe-related HTTP requests
type RecipeHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		responder:  responder{errors: errors, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// RecipeRequest is the admin form body for creating a recipe
type RecipeRequest struct {
	Title        string                           `json:"title"`
	Instructions string                           `json:"instructions"`
	Ingredients  []valueobjects.RawIngredientLine `json:"ingredients"`
}

// UpdateRecipeRequest changes the supplied fields of a recipe
type UpdateRecipeRequest struct {
	Title        *string                           `json:"title,omitempty"`
	Instructions *string                           `json:"instructions,omitempty"`
	Ingredients  *[]valueobjects.RawIngredientLine `json:"ingredients,omitempty"`
}

// ListRecipes handles GET /recipes. Repeated ingredient parameters select
// ingredients; form=<ingredient>:<form> also selects its ingredient.
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecipeFilter(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func parseRecipeFilter(r *http.Request) (queries.ListRecipesQuery, error) {
	params := r.URL.Query()
	query := queries.ListRecipesQuery{}

	selected := make(map[string]bool)
	add := func(name string) {
		if !selected[name] {
			selected[name] = true
			query.Ingredients = append(query.Ingredients, name)
		}
	}

	for _, name := range params["ingredient"] {
		if name = strings.TrimSpace(name); name != "" {
			add(name)
		}
	}
	for _, raw := range params["form"] {
		sep := strings.LastIndex(raw, ":")
		if sep < 0 {
			return query, pkgerrors.NewValidationError("form filter must be ingredient:form").
				WithCode(pkgerrors.CodeInvalidRequest).
				WithDetail("form", raw)
		}
		name := strings.TrimSpace(raw[:sep])
		form := strings.TrimSpace(raw[sep+1:])
		if name == "" || form == "" {
			return query, pkgerrors.NewValidationError("form filter must be ingredient:form").
				WithCode(pkgerrors.CodeInvalidRequest).
				WithDetail("form", raw)
		}
		add(name)
		if query.Forms == nil {
			query.Forms = make(map[string][]string)
		}
		query.Forms[name] = append(query.Forms[name], form)
	}
	return query, nil
}

// GetRecipe handles GET /recipes/{recipeID}
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	query := queries.GetRecipeQuery{RecipeID: chi.URLParam(r, "recipeID")}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// RecipeView handles GET /recipes/{recipeID}/view?servings=&customLine=&customAmount=
func (h *RecipeHandler) RecipeView(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := queries.RecipeViewQuery{RecipeID: chi.URLParam(r, "recipeID")}

	if raw := params.Get("servings"); raw != "" {
		servings, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, invalidParam("servings", raw))
			return
		}
		query.Servings = servings
	}

	rawLine, rawAmount := params.Get("customLine"), params.Get("customAmount")
	if rawLine != "" || rawAmount != "" {
		line, err := strconv.Atoi(rawLine)
		if err != nil {
			h.respondError(w, r, invalidParam("customLine", rawLine))
			return
		}
		amount, err := strconv.ParseFloat(rawAmount, 64)
		if err != nil {
			h.respondError(w, r, invalidParam("customAmount", rawAmount))
			return
		}
		query.HasCustom = true
		query.CustomLine = line
		query.CustomAmount = amount
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// AddRecipe handles POST /admin/recipes
func (h *RecipeHandler) AddRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	cmd := commands.AddRecipeCommand{
		AdminAuth:    adminAuth(r),
		Title:        req.Title,
		Instructions: req.Instructions,
		Ingredients:  req.Ingredients,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// UpdateRecipe handles PATCH /admin/recipes/{recipeID}
func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req UpdateRecipeRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	cmd := commands.UpdateRecipeCommand{
		AdminAuth:    adminAuth(r),
		RecipeID:     chi.URLParam(r, "recipeID"),
		Title:        req.Title,
		Instructions: req.Instructions,
		Ingredients:  req.Ingredients,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// RemoveRecipe handles DELETE /admin/recipes/{recipeID}
func (h *RecipeHandler) RemoveRecipe(w http.ResponseWriter, r *http.Request) {
	cmd := commands.RemoveRecipeCommand{
		AdminAuth: adminAuth(r),
		RecipeID:  chi.URLParam(r, "recipeID"),
	}

	if _, err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

func invalidParam(name, value string) error {
	return pkgerrors.NewValidationError(name+" must be a number").
		WithCode(pkgerrors.CodeInvalidRequest).
		WithDetail(name, value)
}
