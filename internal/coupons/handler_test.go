package coupons

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/audit"
	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/consoletest"
	"github.com/transitdesk/console/internal/listing"
	_ "github.com/transitdesk/console/testing"
)

type memoryRepo struct {
	entries []audit.Entry
}

func (m *memoryRepo) Insert(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryRepo) Page(context.Context, audit.Filters) ([]audit.Entry, int, error) {
	return m.entries, len(m.entries), nil
}

type fixture struct {
	web     *consoletest.Harness
	repo    *memoryRepo
	created chan map[string]any
	patched chan map[string]any
	reject  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{web: consoletest.New(t), repo: &memoryRepo{}, created: make(chan map[string]any, 1), patched: make(chan map[string]any, 1)}
	api := consoletest.NewAPI(t)
	api.Router.Post("/coupons", func(w http.ResponseWriter, r *http.Request) {
		if f.reject != "" {
			consoletest.JSON(w, http.StatusConflict, map[string]string{"message": f.reject})
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created <- body
		consoletest.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
			"id": 501, "code": body["code"], "discount_type": body["discount_type"], "discount_value": body["discount_value"], "status": "active",
		}})
	})
	api.Router.Get("/coupons/{id}", func(w http.ResponseWriter, r *http.Request) {
		consoletest.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"id": chi.URLParam(r, "id"), "code": "SPRING26", "discount_type": "percent", "discount_value": 15, "status": "active",
		}})
	})
	api.Router.Patch("/coupons/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.patched <- body
		consoletest.JSON(w, http.StatusOK, map[string]any{"data": body})
	})

	service := NewService(api.Client(t, auth.SessionCredentials{}), nil)
	deps := listing.Deps{Templates: f.web.Templates, CSRF: f.web.CSRF}
	h := NewHandler(deps, service, audit.NewService(f.repo, nil))
	f.web.Router.Route("/coupons", h.MountRoutes)
	return f
}

func TestNewCouponForm(t *testing.T) {
	f := newFixture(t)

	rr := f.web.Get("/coupons/new")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `action="/coupons"`)
	assert.Contains(t, body, `<option value="percent" selected>`)
	assert.Contains(t, body, `<option value="hotel">Hotel</option>`)
}

func TestCreateCoupon(t *testing.T) {
	f := newFixture(t)
	expires := time.Now().AddDate(0, 1, 0).Format("2006-01-02")

	rr := f.web.PostForm("/coupons", url.Values{
		"code":           {" spring26 "},
		"discount_type":  {"percent"},
		"discount_value": {"15"},
		"service":        {"bus"},
		"usage_limit":    {"250"},
		"expires_at":     {expires},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/coupons/501", rr.Header().Get("Location"))

	body := <-f.created
	assert.Equal(t, "SPRING26", body["code"])
	assert.Equal(t, "percent", body["discount_type"])
	assert.EqualValues(t, 15, body["discount_value"])
	assert.Equal(t, "bus", body["service"])
	assert.EqualValues(t, 250, body["usage_limit"])
	assert.Contains(t, body["expires_at"], expires+"T23:59:59")

	require.Len(t, f.repo.entries, 1)
	assert.Equal(t, "create", f.repo.entries[0].Action)
	assert.Equal(t, "501", f.repo.entries[0].EntityID)
	assert.Equal(t, "code SPRING26", f.repo.entries[0].Detail)

	page := f.web.Get("/coupons/501")
	assert.Contains(t, page.Body.String(), "Coupon SPRING26 created")
}

func TestCreateCouponShowsFieldErrors(t *testing.T) {
	f := newFixture(t)

	rr := f.web.PostForm("/coupons", url.Values{
		"code":           {"a-b"},
		"discount_type":  {"percent"},
		"discount_value": {"lots"},
		"usage_limit":    {"ten"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Use letters and digits only")
	assert.Contains(t, body, "Enter a number")
	assert.Contains(t, body, "Enter a whole number")
	assert.Contains(t, body, `value="a-b"`)
	assert.Empty(t, f.created)
	assert.Empty(t, f.repo.entries)
}

func TestCreateCouponShowsBackendRejection(t *testing.T) {
	f := newFixture(t)
	f.reject = "Coupon code already exists"

	rr := f.web.PostForm("/coupons", url.Values{
		"code":           {"SPRING26"},
		"discount_type":  {"fixed"},
		"discount_value": {"500"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Coupon code already exists")
}

func TestDeactivateCoupon(t *testing.T) {
	f := newFixture(t)

	detail := f.web.Get("/coupons/77")
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), `action="/coupons/77/deactivate"`)

	rr := f.web.PostForm("/coupons/77/deactivate", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, map[string]any{"status": "inactive"}, <-f.patched)
	require.Len(t, f.repo.entries, 1)
	assert.Equal(t, "deactivate", f.repo.entries[0].Action)
	assert.Equal(t, "coupon", f.repo.entries[0].Entity)
}
