package events

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/consoletest"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/realtime"
	_ "github.com/transitdesk/console/testing"
)

func seed(hub *realtime.Hub, n int) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		name := "booking:created"
		if i%3 == 0 {
			name = "wallet.topup"
		}
		data, _ := json.Marshal(map[string]any{"id": i, "status": "pending"})
		hub.Publish(realtime.Event{Name: name, Data: data, At: base.Add(time.Duration(i) * time.Second)})
	}
}

func TestSourcePaginatesNewestFirst(t *testing.T) {
	hub := realtime.NewHub(50)
	seed(hub, 25)
	src := NewSource(hub)

	res, err := src.List(t.Context(), datatable.Query{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, res.Total)
	require.Len(t, res.Rows, 10)
	assert.Equal(t, "15", res.Rows[0].Value("reference"))

	res, err = src.List(t.Context(), datatable.Query{Page: 1, Limit: 10, Filters: map[string]string{"entity": "wallet"}})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Total)
	assert.Equal(t, "wallet", res.Rows[0].Value("entity"))
	assert.Equal(t, "24", res.Rows[0].Value("reference"))

	res, err = src.List(t.Context(), datatable.Query{Page: 1, Limit: 10, Search: "TOPUP"})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Total)
}

func TestSourcePastLastPageIsEmpty(t *testing.T) {
	hub := realtime.NewHub(50)
	seed(hub, 3)
	src := NewSource(hub)

	var res datatable.Result
	var err error
	require.NotPanics(t, func() {
		res, err = src.List(t.Context(), datatable.Query{Page: 92233720368547760, Limit: 100})
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Rows)
}

func TestSourceWithoutHub(t *testing.T) {
	res, err := NewSource(nil).List(t.Context(), datatable.Query{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Rows)
}

func TestEventsPages(t *testing.T) {
	web := consoletest.New(t)
	hub := realtime.NewHub(50)
	seed(hub, 12)
	h := NewHandler(listing.Deps{Templates: web.Templates, CSRF: web.CSRF, Hub: hub, PageSize: 5})
	web.Router.Route("/events", h.MountRoutes)

	rr := web.Get("/events")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "1–5 of 12")
	assert.Contains(t, body, "booking:created")
	assert.Contains(t, body, `data-live="/events/live?`)

	js := web.Get("/events/recent.json?limit=3&entity=booking")
	require.Equal(t, http.StatusOK, js.Code)
	var got struct {
		Events []realtime.Event `json:"events"`
		Total  int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(js.Body.Bytes(), &got))
	assert.Equal(t, 8, got.Total)
	require.Len(t, got.Events, 3)
	assert.Equal(t, strconv.Itoa(11), got.Events[0].Field("id"))
}
