package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/shared"
)

// SessionCredentials reads the access token from the request session at call
// time, so a token replaced mid-session is used on the very next call.
type SessionCredentials struct{}

// Credential implements backend.CredentialSource.
func (SessionCredentials) Credential(ctx context.Context) (string, error) {
	sess := shared.SessionFromContext(ctx)
	token := sess.Get(sessionAccessToken)
	if token == "" {
		return "", backend.ErrNoCredential
	}
	return token, nil
}

// RequireLogin redirects anonymous page loads to the login page and
// remembers where they were headed. Datastar and JSON callers get a 401.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess.User() == "" || sess.Get(sessionAccessToken) == "" {
			if r.Header.Get("Datastar-Request") == "true" || strings.Contains(r.Header.Get("Accept"), "application/json") {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if r.Method == http.MethodGet {
				sess.Set(sessionReturnTo, r.URL.RequestURI())
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Expire ends a session whose backend token was rejected.
func Expire(sess *shared.Session) {
	if sess == nil {
		return
	}
	sess.Delete(sessionAccessToken)
	sess.Delete(sessionRefreshToken)
	sess.SetUser("")
	sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Your session has expired, please sign in again"})
}

// AdminRole returns the backend role of the signed-in admin.
func AdminRole(sess *shared.Session) string {
	return sess.Get(sessionAdminRole)
}

// takeReturnTo pops the remembered destination. Only same-origin paths are
// honoured.
func takeReturnTo(sess *shared.Session) string {
	target := sess.Get(sessionReturnTo)
	sess.Delete(sessionReturnTo)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") || strings.HasPrefix(target, "/auth/") {
		return "/"
	}
	return target
}
