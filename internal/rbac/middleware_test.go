package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/shared"
)

func requestAs(method, role string) *http.Request {
	req := httptest.NewRequest(method, "/operators/7/status", nil)
	sess := &shared.Session{}
	if role != "" {
		auth.StoreTokens(sess, backend.Tokens{AccessToken: "tok", Admin: backend.Admin{ID: "admin-1", Role: role}})
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func serve(mw func(http.Handler) http.Handler, req *http.Request) int {
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAnyByRole(t *testing.T) {
	m := Middleware{}
	guard := m.RequireAny(shared.PermAuditView)

	assert.Equal(t, http.StatusNoContent, serve(guard, requestAs(http.MethodGet, "superadmin")))
	assert.Equal(t, http.StatusNoContent, serve(guard, requestAs(http.MethodGet, " Admin ")))
	assert.Equal(t, http.StatusForbidden, serve(guard, requestAs(http.MethodGet, "support")))
	assert.Equal(t, http.StatusForbidden, serve(guard, requestAs(http.MethodGet, "intern")))
	assert.Equal(t, http.StatusForbidden, serve(guard, requestAs(http.MethodGet, "")))
}

func TestRequireAnyForWritesLeavesReadsOpen(t *testing.T) {
	m := Middleware{}
	guard := m.RequireAnyForWrites(shared.PermOperatorsManage)

	assert.Equal(t, http.StatusNoContent, serve(guard, requestAs(http.MethodGet, "support")))
	assert.Equal(t, http.StatusForbidden, serve(guard, requestAs(http.MethodPost, "support")))
	assert.Equal(t, http.StatusNoContent, serve(guard, requestAs(http.MethodPost, "admin")))
}

func TestRequireAllAndCustomPolicy(t *testing.T) {
	m := Middleware{Policy: Policy{"auditor": {shared.PermAuditView, shared.PermJobsView}}}

	assert.Equal(t, http.StatusNoContent, serve(m.RequireAll(shared.PermAuditView, shared.PermJobsView), requestAs(http.MethodGet, "auditor")))
	assert.Equal(t, http.StatusForbidden, serve(m.RequireAll(shared.PermAuditView, shared.PermBookingsCancel), requestAs(http.MethodGet, "auditor")))
	// The custom policy replaces the defaults.
	assert.Equal(t, http.StatusForbidden, serve(m.RequireAny(shared.PermAuditView), requestAs(http.MethodGet, "superadmin")))
}

func TestNormalizePermissions(t *testing.T) {
	assert.Equal(t, []string{"audit.view", "jobs.view"}, normalizePermissions([]string{" Audit.View", "", "jobs.view", "audit.view"}))
}
