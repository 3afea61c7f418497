package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/queries"
	querybus "recipebook/application/queries/bus"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
)

// ReferenceHandler serves ingredients, units and forms. The kind comes
// from the {kind} route segment.
type ReferenceHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ReferenceHandler {
	return &ReferenceHandler{
		responder:  responder{errors: errors, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// SaveIngredientRequest is the admin ingredient form body
type SaveIngredientRequest struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	ProteinPer100g *float64 `json:"proteinPer100g,omitempty"`
}

// ListNames handles GET /{kind}/names
func (h *ReferenceHandler) ListNames(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListNamesQuery{Kind: kindParam(r)})
}

// Suggestions handles GET /{kind}/suggestions?q=&limit=
func (h *ReferenceHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := queries.SuggestNamesQuery{
		Kind: kindParam(r),
		Text: r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, invalidParam("limit", raw))
			return
		}
		query.Limit = limit
	}
	h.ask(w, r, query)
}

// ListUnused handles GET /{kind}/unused
func (h *ReferenceHandler) ListUnused(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListUnusedQuery{Kind: kindParam(r)})
}

// ListIngredients handles GET /admin/ingredients
func (h *ReferenceHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListIngredientsQuery{})
}

// SaveIngredient handles PUT /admin/ingredients
func (h *ReferenceHandler) SaveIngredient(w http.ResponseWriter, r *http.Request) {
	var req SaveIngredientRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	cmd := commands.SaveIngredientCommand{
		AdminAuth:      adminAuth(r),
		IngredientID:   req.ID,
		Name:           req.Name,
		ProteinPer100g: req.ProteinPer100g,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// RemoveUnused handles DELETE /admin/{kind}/unused
func (h *ReferenceHandler) RemoveUnused(w http.ResponseWriter, r *http.Request) {
	cmd := commands.RemoveUnusedCommand{AdminAuth: adminAuth(r), Kind: kindParam(r)}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// RemoveEntity handles DELETE /admin/{kind}/{entityID}
func (h *ReferenceHandler) RemoveEntity(w http.ResponseWriter, r *http.Request) {
	cmd := commands.RemoveReferenceCommand{
		AdminAuth: adminAuth(r),
		Kind:      kindParam(r),
		EntityID:  chi.URLParam(r, "entityID"),
	}

	if _, err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

func (h *ReferenceHandler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}
