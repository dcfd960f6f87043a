// Package consoletest provides a signed-in browser and a fake platform API
// for handler tests.
package consoletest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/view"
)

// CookieName is the session cookie used by the harness.
const CookieName = "console_session"

// Harness is a router whose requests carry a signed-in admin session.
type Harness struct {
	Miniredis *miniredis.Miniredis
	Redis     *redis.Client
	Sessions  *shared.SessionManager
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Router    chi.Router

	cookie *http.Cookie
}

// New starts miniredis and a router with session middleware. The session is
// signed in as admin "admin-1" named "Ada" with access token "tok".
func New(t *testing.T) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := view.NewEngine()
	require.NoError(t, err)

	h := &Harness{
		Miniredis: mr,
		Redis:     client,
		Sessions:  shared.NewSessionManager(client, CookieName, "secret", time.Hour, false),
		Templates: engine,
		CSRF:      shared.NewCSRFManager("csrf-secret"),
	}
	r := chi.NewRouter()
	r.Use(h.session)
	h.Router = r
	return h
}

func (h *Harness) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sess, err := h.Sessions.Load(req.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sess.User() == "" {
			sess.SetUser("admin-1")
			sess.Set("access_token", "tok")
			sess.Set("admin_name", "Ada")
			sess.Set("admin_role", "superadmin")
		}
		next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		rec := httptest.NewRecorder()
		if err := h.Sessions.Commit(context.Background(), rec, req, sess); err == nil {
			if cookies := rec.Result().Cookies(); len(cookies) > 0 {
				h.cookie = cookies[0]
			}
		}
	})
}

// Do sends req through the router with the harness cookie.
func (h *Harness) Do(req *http.Request) *httptest.ResponseRecorder {
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rr := httptest.NewRecorder()
	h.Router.ServeHTTP(rr, req)
	return rr
}

// Get issues a GET.
func (h *Harness) Get(target string) *httptest.ResponseRecorder {
	return h.Do(httptest.NewRequest(http.MethodGet, target, nil))
}

// PostForm issues a form POST.
func (h *Harness) PostForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.Do(req)
}

// API is a fake platform backend.
type API struct {
	Server *httptest.Server
	Router chi.Router
}

// NewAPI starts an empty fake backend. Routes are added on Router.
func NewAPI(t *testing.T) *API {
	t.Helper()
	r := chi.NewRouter()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &API{Server: srv, Router: r}
}

// Client returns a backend client for the fake API authenticating with creds.
func (a *API) Client(t *testing.T, creds backend.CredentialSource) *backend.Client {
	t.Helper()
	client, err := backend.NewClient(backend.Options{BaseURL: a.Server.URL, Credentials: creds, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListBody builds the {data: {<key>: records, total: n}} envelope.
func ListBody(key string, records any, total int) map[string]any {
	return map[string]any{"data": map[string]any{key: records, "total": total}}
}
