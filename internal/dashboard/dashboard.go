// Package dashboard renders the console home page: entity totals, bookings
// by status, event activity and the latest events.
package dashboard

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/charts"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/events"
	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/realtime"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/status"
)

// Counter is one total shown as a card.
type Counter struct {
	Label  string
	Href   string
	Source listing.Source
	// Filters narrows the count, e.g. pending operators.
	Filters map[string]string
}

// Config wires the dashboard.
type Config struct {
	Counters []Counter
	// Bookings and Statuses drive the bookings-by-status chart.
	Bookings listing.Source
	Statuses []datatable.Option
	// Window is the span of the activity chart, bucketed per minute.
	Window time.Duration
	// Parallel bounds concurrent backend calls.
	Parallel int
}

// Card is a rendered counter.
type Card struct {
	Label string
	Href  string
	Value string
}

// Page is the template model of pages/home.html.
type Page struct {
	Errors   []string
	Counts   []Card
	Chart    template.HTML
	Activity template.HTML
	Events   datatable.View
}

// Handler serves the dashboard.
type Handler struct {
	deps listing.Deps
	cfg  Config
	now  func() time.Time
}

// NewHandler constructs a dashboard Handler.
func NewHandler(deps listing.Deps, cfg Config) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Minute
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = 4
	}
	return &Handler{deps: deps, cfg: cfg, now: time.Now}
}

// MountRoutes registers the dashboard at the router root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
}

// total asks a source for one row to learn the matching count.
func total(ctx context.Context, src listing.Source, filters map[string]string) (int, error) {
	res, err := src.List(ctx, datatable.Query{Page: 1, Limit: 1, Filters: filters})
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

type tally struct {
	mu     sync.Mutex
	errs   []string
	denied bool
}

func (t *tally) fail(label string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if backend.IsUnauthorized(err) {
		t.denied = true
	}
	t.errs = append(t.errs, label+": "+backend.Message(err))
}

// Load gathers the dashboard data. Failed counts are reported in Errors and
// leave the rest of the page intact.
func (h *Handler) Load(ctx context.Context) (Page, bool) {
	var (
		page   Page
		t      tally
		counts = make([]int, len(h.cfg.Counters))
		ok     = make([]bool, len(h.cfg.Counters))
		byStat = make([]int, len(h.cfg.Statuses))
		statOK = make([]bool, len(h.cfg.Statuses))
	)
	g := new(errgroup.Group)
	g.SetLimit(h.cfg.Parallel)
	for i, c := range h.cfg.Counters {
		g.Go(func() error {
			n, err := total(ctx, c.Source, c.Filters)
			if err != nil {
				t.fail(c.Label, err)
				return nil
			}
			counts[i], ok[i] = n, true
			return nil
		})
	}
	if h.cfg.Bookings != nil {
		for i, s := range h.cfg.Statuses {
			g.Go(func() error {
				n, err := total(ctx, h.cfg.Bookings, map[string]string{"status": s.Value})
				if err != nil {
					t.fail("Bookings "+s.Label, err)
					return nil
				}
				byStat[i], statOK[i] = n, true
				return nil
			})
		}
	}
	_ = g.Wait()

	for i, c := range h.cfg.Counters {
		value := shared.Dash
		if ok[i] {
			value = shared.FormatCount(counts[i])
		}
		page.Counts = append(page.Counts, Card{Label: c.Label, Href: c.Href, Value: value})
	}

	var bars []charts.Bar
	for i, s := range h.cfg.Statuses {
		if !statOK[i] {
			continue
		}
		bars = append(bars, charts.Bar{Label: s.Label, Value: float64(byStat[i]), Color: status.Color(status.Classify(s.Value))})
	}
	if len(bars) > 0 {
		chart, err := charts.Bars(0, 0, bars, charts.Frame{Title: "Bookings by status", Description: "Current number of bookings in each status"})
		if err != nil {
			h.deps.Logger.Warn("bookings chart", slog.Any("error", err))
		}
		page.Chart = chart
	}

	var recent []realtime.Event
	if h.deps.Hub != nil {
		recent = h.deps.Hub.Recent()
	}
	page.Activity = h.activity(recent)
	q := datatable.Query{Page: 1, Limit: 5}
	res, _ := events.NewSource(h.deps.Hub).List(ctx, q)
	page.Events = events.Table.View(res, q, "")

	page.Errors = t.errs
	return page, t.denied
}

// activity charts events per minute over the window ending now.
func (h *Handler) activity(recent []realtime.Event) template.HTML {
	minutes := int(h.cfg.Window / time.Minute)
	if minutes < 2 {
		return ""
	}
	end := h.now().Truncate(time.Minute).Add(time.Minute)
	start := end.Add(-time.Duration(minutes) * time.Minute)
	series := make([]float64, minutes)
	labels := make([]string, minutes)
	for i := range labels {
		labels[i] = start.Add(time.Duration(i) * time.Minute).Local().Format("15:04")
	}
	for _, ev := range recent {
		if ev.At.Before(start) || !ev.At.Before(end) {
			continue
		}
		series[int(ev.At.Sub(start)/time.Minute)]++
	}
	chart, err := charts.Line(0, 180, series, labels,
		charts.Frame{Title: "Event activity", Description: "Real-time events received per minute"},
		charts.LineStyle{Fill: "rgba(37,99,235,0.12)", LabelEvery: 5})
	if err != nil {
		h.deps.Logger.Warn("activity chart", slog.Any("error", err))
		return ""
	}
	return chart
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	page, denied := h.Load(r.Context())
	if denied {
		listing.SignOut(w, r)
		return
	}
	if len(page.Errors) > 0 {
		h.deps.Logger.Warn("dashboard partially loaded", slog.String("first", page.Errors[0]), slog.Int("failures", len(page.Errors)))
	}
	listing.Render(w, r, h.deps, "pages/home.html", "Dashboard", page, http.StatusOK)
}
