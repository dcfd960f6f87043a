package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/backend"
)

func TestRespondErrorMapsBackendFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", &backend.APIError{Status: http.StatusNotFound, Message: "Booking not found"}, http.StatusNotFound, "Booking not found"},
		{"token rejected", &backend.APIError{Status: http.StatusUnauthorized, Message: "Invalid token"}, http.StatusUnauthorized, "Invalid token"},
		{"missing token", backend.ErrNoCredential, http.StatusUnauthorized, "Your session has expired, please sign in again"},
		{"client error", &backend.APIError{Status: http.StatusConflict, Message: "Already cancelled"}, http.StatusConflict, "Already cancelled"},
		{"upstream", &backend.APIError{Status: http.StatusServiceUnavailable}, http.StatusBadGateway, "Service Unavailable"},
		{"transport", &backend.TransportError{Op: "GET /bookings", Err: errors.New("refused")}, http.StatusBadGateway, "Could not reach the server"},
		{"validation", fmt.Errorf("limit: %w", ErrValidation), http.StatusBadRequest, "limit: validation failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
			assert.Equal(t, tc.status, problem.Status)
			assert.Equal(t, tc.detail, problem.Detail)
			assert.Equal(t, "about:blank", problem.Type)
		})
	}
}

func TestJSONIsNotCached(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"n":1}`, rr.Body.String())
}
