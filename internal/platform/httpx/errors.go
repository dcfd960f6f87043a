package httpx

import (
	"errors"
	"net/http"

	"github.com/transitdesk/console/internal/backend"
)

// Sentinel errors for the handler layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps handler and backend errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, ErrNotFound), backend.IsNotFound(err):
		Problem(w, http.StatusNotFound, "Not Found", backend.Message(err))
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, backend.ErrNoCredential), backend.IsUnauthorized(err):
		Problem(w, http.StatusUnauthorized, "Unauthorized", backend.Message(err))
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		Problem(w, apiErr.Status, http.StatusText(apiErr.Status), apiErr.Message)
	case isUpstream(err):
		Problem(w, http.StatusBadGateway, "Bad Gateway", backend.Message(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func isUpstream(err error) bool {
	var apiErr *backend.APIError
	var transportErr *backend.TransportError
	var decodeErr *backend.DecodeError
	return errors.As(err, &apiErr) || errors.As(err, &transportErr) || errors.As(err, &decodeErr)
}
