package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/transitdesk/console/internal/shared"
)

// ErrNoCredential is returned when an authenticated call has no token to send.
var ErrNoCredential = errors.New("backend: no credential available")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// TransportError wraps failures to reach the backend at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response whose shape does not match the expected model.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "backend: decode " + e.Path + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Message converts any backend error into a short user-facing string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	var decodeErr *DecodeError
	var transportErr *TransportError
	var publicErr *shared.PublicError
	switch {
	case errors.As(err, &publicErr):
		return publicErr.Message
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if text := http.StatusText(apiErr.Status); text != "" {
			return text
		}
		return "Request failed"
	case errors.As(err, &decodeErr):
		return "Unexpected response from server"
	case errors.Is(err, ErrNoCredential):
		return "Your session has expired, please sign in again"
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond"
	case errors.As(err, &transportErr):
		return "Could not reach the server"
	default:
		return "Something went wrong"
	}
}

// IsUnauthorized reports whether err is a 401 from the backend or a missing token.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNoCredential) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// parseAPIError builds an APIError from a failed response body. The backend
// sends message either as a string or, for validation failures, a list.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload errorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
		if msg := rawMessageText(raw); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	return apiErr
}

func rawMessageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
