package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"assochub/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", services.Unauthenticated("Authentication required"), http.StatusUnauthorized},
		{"forbidden", services.Forbidden("Admin access required"), http.StatusForbidden},
		{"not found", services.NotFound("Meeting not found"), http.StatusNotFound},
		{"invalid state", services.InvalidState("Voting has ended"), http.StatusConflict},
		{"validation", services.Validation("Title is required"), http.StatusBadRequest},
		{"upstream", services.Upstream("Payment provider request failed"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *echo.HTTPError
			require.ErrorAs(t, serviceError(tt.err), &httpErr)
			assert.Equal(t, tt.status, httpErr.Code)
			assert.Equal(t, tt.err.Error(), httpErr.Message)
		})
	}
}

func TestServiceError_PassesThroughUnknownErrors(t *testing.T) {
	raw := errors.New("connection reset")

	assert.Same(t, raw, serviceError(raw))
}

func TestPathID(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		errMsg string
	}{
		{"valid", "550e8400-e29b-41d4-a716-446655440000", ""},
		{"trimmed", " 550e8400-e29b-41d4-a716-446655440000 ", ""},
		{"empty", "", "meeting id is required"},
		{"short", "550e8400-e29b-41d4-a716-44665544000", "meeting id must be exactly 36 characters (including hyphens)"},
		{"bad characters", "550e8400-e29b-41d4-g716-446655440000", "meeting id is not a valid id"},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.SetParamNames("meetingId")
			c.SetParamValues(tt.value)

			_, err := pathID(c, "meetingId", "meeting id")

			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
			assert.Equal(t, tt.errMsg, httpErr.Message)
		})
	}
}

func TestRequestValidatorMessages(t *testing.T) {
	type body struct {
		Title   string   `json:"title" validate:"required,max=5"`
		Options []string `json:"options" validate:"min=2"`
	}
	v := NewRequestValidator()

	err := v.Validate(&body{Title: "", Options: []string{"Yes"}})

	assert.EqualError(t, err, "title is required, options must contain at least 2 items")
	assert.NoError(t, v.Validate(&body{Title: "Roof", Options: []string{"Yes", "No"}}))
}
