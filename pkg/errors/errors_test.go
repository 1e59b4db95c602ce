package errors

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestIsHelpers_Wrapped(t *testing.T) {
	err := fmt.Errorf("save lead: %w", NewConflictError("duplicate phone"))

	assert.True(t, IsConflictError(err))
	assert.False(t, IsNotFoundError(err))
	assert.False(t, IsValidationError(nil))
}

func TestMapper_MapErrorToHTTP(t *testing.T) {
	m := NewMapper(zerolog.Nop())

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, fasthttp.StatusOK},
		{"validation", NewValidationError("bad"), fasthttp.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("no key"), fasthttp.StatusUnauthorized},
		{"permission", NewPermissionError("admins only"), fasthttp.StatusForbidden},
		{"not found", NewNotFoundError("missing"), fasthttp.StatusNotFound},
		{"conflict", fmt.Errorf("wrap: %w", NewConflictError("dup")), fasthttp.StatusConflict},
		{"internal", NewInternalError("db down"), fasthttp.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), fasthttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := m.MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestMapper_MessageKeepsContext(t *testing.T) {
	m := NewMapper(zerolog.Nop())

	status, msg := m.MapErrorToHTTP(fmt.Errorf("%w: fio too short", NewValidationError("invalid lead")))
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "invalid lead: fio too short", msg)

	status, msg = m.MapErrorToHTTP(fmt.Errorf("save lead: %w", NewInternalError("database operation failed")))
	assert.Equal(t, fasthttp.StatusInternalServerError, status)
	assert.Equal(t, "database operation failed", msg)

	_, msg = m.MapErrorToHTTP(fmt.Errorf("dial tcp: refused"))
	assert.Equal(t, "internal server error", msg)
}
