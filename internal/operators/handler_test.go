package operators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/audit"
	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/consoletest"
	"github.com/transitdesk/console/internal/listcache"
	"github.com/transitdesk/console/internal/listing"
	_ "github.com/transitdesk/console/testing"
)

type recorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recorder) Record(_ context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

type fixture struct {
	web      *consoletest.Harness
	api      *consoletest.API
	audit    *recorder
	lists    atomic.Int32
	patched  chan StatusChange
	lastAuth atomic.Value
	lastQ    atomic.Value
}

var sample = []map[string]any{
	{"id": "op-1", "name": "Sunrise Coaches", "kind": "bus", "email": "ops@sunrise.test", "city": "Lagos", "status": "pending", "fleet_size": 12, "created_at": "2026-01-05T08:00:00Z"},
	{"id": 7, "name": "Harbour Inn", "kind": "hotel", "phone": "+234 800 000", "status": "approved", "fleet_size": 40, "rating": 4.5},
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{web: consoletest.New(t), api: consoletest.NewAPI(t), audit: &recorder{}, patched: make(chan StatusChange, 4)}

	f.api.Router.Get("/operators", func(w http.ResponseWriter, r *http.Request) {
		f.lists.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		f.lastQ.Store(r.URL.Query())
		consoletest.JSON(w, http.StatusOK, consoletest.ListBody("operators", sample, 2))
	})
	f.api.Router.Get("/operators/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "op-1" {
			consoletest.JSON(w, http.StatusNotFound, map[string]string{"message": "Operator not found"})
			return
		}
		consoletest.JSON(w, http.StatusOK, map[string]any{"data": sample[0]})
	})
	f.api.Router.Patch("/operators/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body StatusChange
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.patched <- body
		w.WriteHeader(http.StatusNoContent)
	})

	cache := listcache.New(f.web.Redis, time.Minute, nil)
	service := NewService(f.api.Client(t, auth.SessionCredentials{}), cache)
	deps := listing.Deps{Templates: f.web.Templates, CSRF: f.web.CSRF, PageSize: 10}
	h := NewHandler(deps, service, f.audit)
	f.web.Router.Route("/operators", h.MountRoutes)
	return f
}

func TestOperatorListSendsFiltersWithSessionToken(t *testing.T) {
	f := newFixture(t)

	rr := f.web.Get("/operators?status=pending&kind=bus&search=sun")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Sunrise Coaches")
	assert.Contains(t, body, "12 vehicles")
	assert.Contains(t, body, "40 rooms")
	assert.Contains(t, body, "4.5 / 5")
	assert.Contains(t, body, "05 Jan 2026")
	assert.Contains(t, body, `action="/operators/op-1/status"`)
	assert.Contains(t, body, `href="/operators/7"`)

	assert.Equal(t, "Bearer tok", f.lastAuth.Load())
	q := f.lastQ.Load().(url.Values)
	assert.Equal(t, "kind:bus,status:pending", q.Get("filter"))
	assert.Equal(t, "sun", q.Get("search"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "10", q.Get("limit"))
}

func TestOperatorListIsCachedUntilStatusChange(t *testing.T) {
	f := newFixture(t)

	f.web.Get("/operators")
	f.web.Get("/operators")
	assert.EqualValues(t, 1, f.lists.Load())

	rr := f.web.PostForm("/operators/op-1/status", url.Values{"status": {"approved"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	<-f.patched

	f.web.Get("/operators")
	assert.EqualValues(t, 2, f.lists.Load())
}

func TestOperatorDetail(t *testing.T) {
	f := newFixture(t)

	rr := f.web.Get("/operators/op-1")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<h1>Sunrise Coaches</h1>")
	assert.Contains(t, body, "ops@sunrise.test")
	assert.Contains(t, body, "badge badge-pending")
	assert.Contains(t, body, ">Approve</button>")
	assert.NotContains(t, body, ">Block</button>")
}

func TestOperatorDetailNotFound(t *testing.T) {
	f := newFixture(t)

	rr := f.web.Get("/operators/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Operator not found")
}

func TestChangeStatusRecordsAuditAndFlashes(t *testing.T) {
	f := newFixture(t)

	rr := f.web.PostForm("/operators/op-1/status", url.Values{"status": {"blocked"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/operators/op-1", rr.Header().Get("Location"))
	assert.Equal(t, StatusChange{Status: "blocked"}, <-f.patched)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, "admin-1", entry.ActorID)
	assert.Equal(t, "Ada", entry.Actor)
	assert.Equal(t, "status_change", entry.Action)
	assert.Equal(t, "operator", entry.Entity)
	assert.Equal(t, "op-1", entry.EntityID)
	assert.Equal(t, "status set to blocked", entry.Detail)

	page := f.web.Get("/operators/op-1")
	assert.Contains(t, page.Body.String(), "Operator blocked")
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	rr := f.web.PostForm("/operators/op-1/status", url.Values{"status": {"deleted"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Empty(t, f.patched)
	assert.Empty(t, f.audit.entries)

	page := f.web.Get("/operators/op-1")
	assert.Contains(t, page.Body.String(), "Unsupported status change")
}
