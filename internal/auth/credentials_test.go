package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transitdesk/console/internal/shared"
)

func TestRequireLoginRemembersPageLoads(t *testing.T) {
	sess := &shared.Session{ID: "s1"}
	protected := RequireLogin(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("anonymous request reached the handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/bookings?page=3&filter=status:pending", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req.WithContext(shared.ContextWithSession(req.Context(), sess)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/bookings?page=3&filter=status:pending", sess.Get(sessionReturnTo))

	req = httptest.NewRequest(http.MethodGet, "/bookings/live", nil)
	req.Header.Set("Datastar-Request", "true")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req.WithContext(shared.ContextWithSession(req.Context(), sess)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/bookings?page=3&filter=status:pending", sess.Get(sessionReturnTo), "streams do not overwrite the page")
}

func TestTakeReturnTo(t *testing.T) {
	cases := map[string]string{
		"":                   "/",
		"/coupons?page=2":    "/coupons?page=2",
		"//evil.example/x":   "/",
		"/\\evil.example":    "/",
		"https://evil.test/": "/",
		"/auth/login":        "/",
	}
	for stored, want := range cases {
		sess := &shared.Session{ID: "s1"}
		sess.Set(sessionReturnTo, stored)
		assert.Equal(t, want, takeReturnTo(sess), stored)
		assert.Empty(t, sess.Get(sessionReturnTo), "destination is used once")
	}
}
