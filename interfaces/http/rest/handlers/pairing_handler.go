package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/queries"
	querybus "recipebook/application/queries/bus"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
)

// PairingHandler handles the public pairing endpoints
type PairingHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewPairingHandler creates a new pairing handler
func NewPairingHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PairingHandler {
	return &PairingHandler{
		responder:  responder{errors: errors, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// PairingRequest is the body of POST /pairings
type PairingRequest struct {
	Name      string   `json:"name,omitempty"`
	RecipeIDs []string `json:"recipeIds"`
}

// ListPairings handles GET /pairings
func (h *PairingHandler) ListPairings(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListPairingsQuery{})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// SavePairing handles POST /pairings
func (h *PairingHandler) SavePairing(w http.ResponseWriter, r *http.Request) {
	var req PairingRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.SavePairingCommand{
		Name:      req.Name,
		RecipeIDs: req.RecipeIDs,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// DeletePairing handles DELETE /pairings/{pairingID}
func (h *PairingHandler) DeletePairing(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeletePairingCommand{PairingID: chi.URLParam(r, "pairingID")}

	if _, err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
