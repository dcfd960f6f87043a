// Package listing serves the list, live-update and export endpoints shared by
// every entity table.
package listing

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/export"
	"github.com/transitdesk/console/internal/observability"
	"github.com/transitdesk/console/internal/realtime"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/view"
)

// Source loads one page of rows for a table query.
type Source interface {
	List(ctx context.Context, q datatable.Query) (datatable.Result, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q datatable.Query) (datatable.Result, error)

// List implements Source.
func (f SourceFunc) List(ctx context.Context, q datatable.Query) (datatable.Result, error) {
	return f(ctx, q)
}

// Link is a header call to action on a list page.
type Link struct {
	Label string
	Href  string
}

// Resource describes one entity table.
type Resource struct {
	Table datatable.Table
	// Entity is the real-time entity whose events refresh the table.
	// AnyEntity refreshes on every event; empty disables live updates.
	Entity string
	Source Source
	Links  []Link
}

// AnyEntity subscribes a table to every real-time event.
const AnyEntity = "*"

// Deps are the collaborators shared by all list handlers.
type Deps struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Hub       *realtime.Hub
	Metrics   *observability.Metrics
	PDF       export.Renderer
	PageSize  int
	Debounce  time.Duration
	// MaxExportPages bounds how many backend pages an export walks.
	MaxExportPages int
}

// Handler serves a Resource.
type Handler struct {
	deps Deps
	res  Resource
}

// NewHandler constructs a Handler.
func NewHandler(deps Deps, res Resource) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.PageSize <= 0 {
		deps.PageSize = 10
	}
	if deps.MaxExportPages <= 0 {
		deps.MaxExportPages = 20
	}
	deps.Logger = deps.Logger.With(slog.String("table", res.Table.ID))
	return &Handler{deps: deps, res: res}
}

// Page is the template model of pages/list.html.
type Page struct {
	Table      datatable.View
	Toolbar    bool
	DebounceMS int64
	Exports    bool
	Live       bool
	Links      []Link
}

// MountRoutes registers list, live and export routes relative to the table
// base path.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/live", h.live)
	r.Get("/export.csv", h.exportCSV)
	r.Get("/export.pdf", h.exportPDF)
	r.Get("/page.json", h.pageJSON)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	q := datatable.ParseQuery(r, h.res.Table, h.deps.PageSize)
	q = datatable.Remember(sess, h.res.Table.ID, q)

	var state datatable.State
	if err := state.Load(r.Context(), q, h.res.Source.List); err != nil {
		if backend.IsUnauthorized(err) {
			SignOut(w, r)
			return
		}
		h.deps.Logger.Error("load table", slog.Any("error", err))
	}

	page := Page{
		Table:      state.Render(h.res.Table, q),
		Toolbar:    true,
		DebounceMS: h.deps.Debounce.Milliseconds(),
		Exports:    true,
		Live:       h.deps.Hub != nil && h.res.Entity != "",
		Links:      h.res.Links,
	}
	Render(w, r, h.deps, "pages/list.html", h.res.Table.Title, page, http.StatusOK)
}

// SignOut expires a session whose backend token was rejected and sends the
// browser to the login page.
func SignOut(w http.ResponseWriter, r *http.Request) {
	auth.Expire(shared.SessionFromContext(r.Context()))
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// TemplateData assembles the layout fields shared by every page.
func TemplateData(r *http.Request, csrf *shared.CSRFManager, title string, data any) view.TemplateData {
	sess := shared.SessionFromContext(r.Context())
	token := ""
	if csrf != nil && sess != nil {
		token, _ = csrf.EnsureToken(r.Context(), sess)
	}
	return view.TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Admin:       auth.AdminName(sess),
		Data:        data,
	}
}

// Render writes a full page, logging template failures.
func Render(w http.ResponseWriter, r *http.Request, deps Deps, name, title string, data any, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := deps.Templates.Render(w, name, TemplateData(r, deps.CSRF, title, data)); err != nil {
		deps.logger().Error("render page", slog.String("template", name), slog.Any("error", err))
		if status == http.StatusOK {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
