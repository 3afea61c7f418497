package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
)

// responder writes JSON bodies and error responses for every handler.
type responder struct {
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := common.RespondJSON(w, status, data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.errors.Handle(w, r, err)
}

// adminAuth carries the secret the admin guard verified.
func adminAuth(r *http.Request) commands.AdminAuth {
	return commands.AdminAuth{Secret: common.GetAdminSecret(r.Context())}
}

func kindParam(r *http.Request) string {
	return chi.URLParam(r, "kind")
}
