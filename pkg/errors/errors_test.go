package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
		wantMsg    string
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest, "bad"},
		{"not found", NewNotFoundError("recipe"), ErrorTypeNotFound, http.StatusNotFound, "recipe not found"},
		{"conflict", NewConflictError("entity is in use"), ErrorTypeConflict, http.StatusConflict, "entity is in use"},
		{"unauthorized default", NewUnauthorizedError(""), ErrorTypeUnauthorized, http.StatusUnauthorized, "not authorized"},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
		})
	}
}

func TestLineValidationError(t *testing.T) {
	err := NewLineValidationError("item name required", 3)

	idx, ok := err.LineIndex()
	require.True(t, ok)
	assert.Equal(t, 3, idx)
	assert.Equal(t, CodeInvalidIngredientLine, err.Code)
	assert.True(t, IsValidation(err))
}

func TestHelpersSeeThroughWrapping(t *testing.T) {
	base := NewConflictError("entity is in use")
	wrapped := fmt.Errorf("command handler failed: %w", base)

	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Same(t, base, GetAppError(wrapped))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	plain := Wrap(fmt.Errorf("disk full"), "save recipe")
	appErr := GetAppError(plain)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeInternal, appErr.Type)

	typed := Wrap(NewNotFoundError("recipe"), "load")
	assert.True(t, IsNotFound(typed))
	assert.Equal(t, "recipe not found", GetAppError(typed).Message)
}

func TestErrorHandler_Handle(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	t.Run("app error keeps status and details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/recipes", nil)

		h.Handle(rec, req, NewLineValidationError("amount must be a number", 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.Error)
		assert.Equal(t, "amount must be a number", body.Message)
		assert.Equal(t, float64(1), body.Details["line"])
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)

		h.Handle(rec, req, fmt.Errorf("connection reset"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "An internal error occurred", body.Message)
	})
}
