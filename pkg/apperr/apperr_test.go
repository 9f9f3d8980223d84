package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", NotFound("mission", 42), http.StatusNotFound},
		{"validation", Validation("conflict is required"), http.StatusBadRequest},
		{"insufficient funds", InsufficientFunds("💵"), http.StatusBadRequest},
		{"generation", New(KindGeneration, "backend returned empty body"), http.StatusBadGateway},
		{"persistence", New(KindPersistence, "write failed"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := InsufficientFunds("💶")
	wrapped := fmt.Errorf("applying choice: %w", base)

	assert.True(t, Is(wrapped, KindInsufficientFunds))
	assert.Equal(t, KindInsufficientFunds, KindOf(wrapped))
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindPersistence, "saving story", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "saving story")
	assert.Contains(t, err.Error(), "connection refused")
}
