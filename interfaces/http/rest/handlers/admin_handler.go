package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/services"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
)

// SecretVerifier checks an admin secret for the calling client.
type SecretVerifier interface {
	Verify(r *http.Request, secret string) error
}

// AdminHandler handles the admin session and bulk maintenance endpoints
type AdminHandler struct {
	responder
	commandBus *bus.CommandBus
	verifier   SecretVerifier
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	commandBus *bus.CommandBus,
	verifier SecretVerifier,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		responder:  responder{errors: errors, logger: logger},
		commandBus: commandBus,
		verifier:   verifier,
	}
}

// SessionRequest is the login form body
type SessionRequest struct {
	Secret string `json:"secret"`
}

// Session handles POST /admin/session. It only answers whether the secret
// is right; nothing is stored server side.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.verifier.Verify(r, req.Secret); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

// Clear handles POST /admin/clear
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	result, err := h.commandBus.Send(r.Context(), commands.ClearAllDataCommand{AdminAuth: adminAuth(r)})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Import handles POST /admin/import with a seed document as body
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	var seed services.Seed
	if err := common.ParseJSONBody(w, r, &seed); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.ImportSeedCommand{
		AdminAuth: adminAuth(r),
		Seed:      seed,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}
