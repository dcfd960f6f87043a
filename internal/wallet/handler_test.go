package wallet

import (
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/consoletest"
	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/realtime"
	_ "github.com/transitdesk/console/testing"
)

func TestWalletExportWalksPagesAtMaxLimit(t *testing.T) {
	web := consoletest.New(t)
	api := consoletest.NewAPI(t)

	var (
		mu      sync.Mutex
		queries []url.Values
	)
	api.Router.Get("/wallet/transactions", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query())
		mu.Unlock()
		page := r.URL.Query().Get("page")
		records := []map[string]any{{"id": "tx-" + page, "type": "topup", "amount": 100, "currency": "NGN", "status": "completed", "created_at": "2026-04-01T10:00:00Z"}}
		consoletest.JSON(w, http.StatusOK, consoletest.ListBody("transactions", records, 150))
	})

	h := NewHandler(listing.Deps{Templates: web.Templates, CSRF: web.CSRF}, NewService(api.Client(t, backend.StaticToken("svc")), nil))
	web.Router.Route("/wallet", h.MountRoutes)

	rr := web.Get("/wallet/export.csv?type=topup")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Reference,Customer,Type,Amount,Channel,Status,Date")
	assert.Contains(t, rr.Body.String(), "tx-2")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 2)
	assert.Equal(t, "100", queries[0].Get("limit"))
	assert.Equal(t, "type:topup", queries[1].Get("filter"))
	assert.Equal(t, "2", queries[1].Get("page"))
}

func TestWalletListAdvertisesLiveUpdates(t *testing.T) {
	web := consoletest.New(t)
	api := consoletest.NewAPI(t)
	api.Router.Get("/wallet/transactions", func(w http.ResponseWriter, r *http.Request) {
		consoletest.JSON(w, http.StatusOK, consoletest.ListBody("transactions", []any{}, 0))
	})
	deps := listing.Deps{Templates: web.Templates, CSRF: web.CSRF, Hub: realtime.NewHub(10), Debounce: 300 * time.Millisecond}
	h := NewHandler(deps, NewService(api.Client(t, backend.StaticToken("svc")), nil))
	web.Router.Route("/wallet", h.MountRoutes)

	rr := web.Get("/wallet?status=failed")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `data-live="/wallet/live?`)
	assert.Contains(t, body, `data-debounce="300"`)
	assert.Contains(t, body, "No results")
}
