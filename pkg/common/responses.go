package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "recipebook/pkg/errors"
)

// MaxBodyBytes bounds request bodies. Recipes with long instructions fit
// comfortably.
const MaxBodyBytes = 1 << 20

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// RespondNoContent sends an empty 204 response
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ParseJSONBody parses a JSON request body with a size limit. Decoding
// failures come back as validation errors.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return pkgerrors.NewValidationError("request body is empty").WithCode(pkgerrors.CodeInvalidRequest)
		case errors.As(err, &tooLarge):
			return pkgerrors.NewValidationError("request body too large").WithCode(pkgerrors.CodeInvalidRequest)
		default:
			return pkgerrors.NewValidationError("invalid request body: " + err.Error()).
				WithCode(pkgerrors.CodeInvalidRequest).
				WithCause(err)
		}
	}

	return nil
}
