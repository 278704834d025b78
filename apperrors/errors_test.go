package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("product"), http.StatusNotFound},
		{"conflict", Conflict("slug", "slug already exists"), http.StatusConflict},
		{"invalid", InvalidInput("bad"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("account disabled"), http.StatusForbidden},
		{"wrapped sentinel", fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("save: %w", Conflict("slug", "x")), http.StatusConflict},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "product not found", Message(NotFound("product")))
	assert.Equal(t, "an internal error occurred", Message(errors.New("connection refused")))
	assert.Equal(t, "an internal error occurred", Message(Internal(errors.New("db down"))))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("db down")
	assert.ErrorIs(t, Internal(cause), cause)
}

func TestInvalidField(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InvalidField("price", "price must be a positive number"))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, "price", Field(err))
	assert.Equal(t, "price must be a positive number", Message(err))
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, "slug", Field(Conflict("slug", "slug already exists")))
	assert.Empty(t, Field(errors.New("plain")))
}
