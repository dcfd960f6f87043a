package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/shared"
)

// Session keys holding the admin's backend credentials.
const (
	sessionAccessToken  = "access_token"
	sessionRefreshToken = "refresh_token"
	sessionAdminName    = "admin_name"
	sessionAdminRole    = "admin_role"
	sessionReturnTo     = "return_to"
)

// Authenticator exchanges admin credentials for backend tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (backend.Tokens, error)
}

// Service wraps the login flow.
type Service struct {
	backend Authenticator
}

// NewService constructs a new Service.
func NewService(backend Authenticator) *Service {
	return &Service{backend: backend}
}

// Authenticate validates credentials against the backend. Rejections with a
// 4xx status are reported as shared.ErrInvalidCredentials carrying the
// backend message.
func (s *Service) Authenticate(ctx context.Context, email, password string) (backend.Tokens, error) {
	tokens, err := s.backend.Login(ctx, email, password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
			return backend.Tokens{}, &LoginError{Message: backend.Message(err), Err: shared.ErrInvalidCredentials}
		}
		return backend.Tokens{}, err
	}
	return tokens, nil
}

// LoginError is a rejected login with the message to show on the form.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

// StoreTokens records the admin and tokens in the session.
func StoreTokens(sess *shared.Session, tokens backend.Tokens) {
	sess.SetUser(tokens.Admin.ID)
	sess.Set(sessionAccessToken, tokens.AccessToken)
	sess.Set(sessionRefreshToken, tokens.RefreshToken)
	sess.Set(sessionAdminName, tokens.Admin.Name)
	sess.Set(sessionAdminRole, tokens.Admin.Role)
}

// AdminName returns the display name of the signed-in admin.
func AdminName(sess *shared.Session) string {
	return sess.Get(sessionAdminName)
}
