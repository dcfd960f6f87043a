package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing means the request or the session carries no token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenForeign means the token was not signed for this session.
	ErrCSRFTokenForeign = errors.New("csrf token issued to another session")
	// ErrCSRFTokenMismatch means a valid looking token that is not the current one.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// PublicError carries a message that is safe to show to admins as is.
type PublicError struct {
	Message string
}

func (e *PublicError) Error() string { return e.Message }
