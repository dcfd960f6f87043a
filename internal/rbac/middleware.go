package rbac

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/shared"
)

// Middleware wires role based authorization helpers for HTTP handlers.
type Middleware struct {
	Policy Policy
	Logger *slog.Logger
}

// RequireAny ensures the current admin has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(normalizePermissions(perms), hasAnyPermission, false)
}

// RequireAll ensures the current admin has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(normalizePermissions(perms), hasAllPermissions, false)
}

// RequireAnyForWrites is RequireAny applied to unsafe methods only, so the
// tables stay readable while their actions are gated.
func (m Middleware) RequireAnyForWrites(perms ...string) func(http.Handler) http.Handler {
	return m.require(normalizePermissions(perms), hasAnyPermission, true)
}

func (m Middleware) require(required []string, check func(granted, required []string) bool, writesOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 || (writesOnly && isSafe(r.Method)) {
				next.ServeHTTP(w, r)
				return
			}
			if check(m.granted(r), required) {
				next.ServeHTTP(w, r)
				return
			}
			sess := shared.SessionFromContext(r.Context())
			m.logger().Warn("permission denied",
				slog.String("admin_id", sess.User()),
				slog.String("role", auth.AdminRole(sess)),
				slog.String("path", r.URL.Path),
				slog.String("required", strings.Join(required, ",")))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func (m Middleware) granted(r *http.Request) []string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return nil
	}
	policy := m.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	return policy.Permissions(auth.AdminRole(sess))
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func isSafe(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func normalizePermissions(perms []string) []string {
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" && !slices.Contains(normalized, p) {
			normalized = append(normalized, p)
		}
	}
	return normalized
}

func hasAnyPermission(granted, required []string) bool {
	return len(required) == 0 || slices.ContainsFunc(required, func(p string) bool {
		return slices.Contains(granted, p)
	})
}

func hasAllPermissions(granted, required []string) bool {
	return !slices.ContainsFunc(required, func(p string) bool {
		return !slices.Contains(granted, p)
	})
}
