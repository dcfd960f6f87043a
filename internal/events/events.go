// Package events shows the recent real-time events held by the hub.
package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/platform/httpx"
	"github.com/transitdesk/console/internal/realtime"
	"github.com/transitdesk/console/internal/shared"
)

// Table is the recent events definition.
var Table = datatable.Table{
	ID:       "events",
	Title:    "Live events",
	BasePath: "/events",
	Columns: []datatable.Column{
		{Key: "at", Header: "Received"},
		{Key: "event", Header: "Event"},
		{Key: "entity", Header: "Entity"},
		{Key: "reference", Header: "Reference"},
		datatable.StatusColumn("status", "Status"),
	},
	Filters: []datatable.Filter{
		{Key: "entity", Label: "Entity", Options: []datatable.Option{
			{Label: "Operators", Value: "operator"},
			{Label: "Customers", Value: "customer"},
			{Label: "Wallet", Value: "wallet"},
			{Label: "Coupons", Value: "coupon"},
			{Label: "Bookings", Value: "booking"},
		}},
	},
}

// Row reshapes an event for the events table. Events carry their record
// reference and status in data when the backend includes them.
func Row(ev realtime.Event) datatable.Row {
	ref := ev.Field("reference")
	if ref == "" {
		ref = ev.Field("id")
	}
	return datatable.NewRow(ev.Name+"@"+ev.At.Format(time.RFC3339Nano), map[string]string{
		"at":        ev.At.Local().Format("15:04:05"),
		"event":     ev.Name,
		"entity":    ev.Entity(),
		"reference": shared.OrDash(ref),
		"status":    ev.Field("status"),
	})
}

// Source pages through the hub history, newest first.
type Source struct {
	hub *realtime.Hub
}

// NewSource constructs a Source.
func NewSource(hub *realtime.Hub) *Source {
	return &Source{hub: hub}
}

// Matching returns the retained events passing the query's entity filter and
// search, newest first.
func (s *Source) Matching(q datatable.Query) []realtime.Event {
	if s == nil || s.hub == nil {
		return nil
	}
	entity := q.Filters["entity"]
	needle := strings.ToLower(q.Search)
	var out []realtime.Event
	for _, ev := range s.hub.Recent() {
		if entity != "" && ev.Entity() != entity {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(ev.Name), needle) && !strings.Contains(strings.ToLower(string(ev.Data)), needle) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// List implements listing.Source.
func (s *Source) List(_ context.Context, q datatable.Query) (datatable.Result, error) {
	matching := s.Matching(q)
	page := shared.Paginate(matching, q.Page, q.Limit)
	rows := make([]datatable.Row, 0, len(page))
	for _, ev := range page {
		rows = append(rows, Row(ev))
	}
	return datatable.Result{Rows: rows, Total: len(matching)}, nil
}

// Handler serves the events pages.
type Handler struct {
	deps   listing.Deps
	source *Source
}

// NewHandler constructs an events Handler over the hub in deps.
func NewHandler(deps listing.Deps) *Handler {
	return &Handler{deps: deps, source: NewSource(deps.Hub)}
}

// MountRoutes registers event routes relative to /events.
func (h *Handler) MountRoutes(r chi.Router) {
	listing.NewHandler(h.deps, listing.Resource{Table: Table, Entity: listing.AnyEntity, Source: h.source}).MountRoutes(r)
	r.Get("/recent.json", h.recentJSON)
}

type recentResponse struct {
	Events []realtime.Event `json:"events"`
	Total  int              `json:"total"`
}

// recentJSON returns up to limit retained events for scripts.
func (h *Handler) recentJSON(w http.ResponseWriter, r *http.Request) {
	q := datatable.ParseQuery(r, Table, datatable.MaxLimit)
	matching := h.source.Matching(q)
	page := shared.Paginate(matching, q.Page, q.Limit)
	httpx.JSON(w, http.StatusOK, recentResponse{Events: page, Total: len(matching)})
}
