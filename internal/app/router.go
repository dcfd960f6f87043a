package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/bookings"
	"github.com/transitdesk/console/internal/coupons"
	"github.com/transitdesk/console/internal/customers"
	"github.com/transitdesk/console/internal/dashboard"
	"github.com/transitdesk/console/internal/events"
	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/observability"
	"github.com/transitdesk/console/internal/operators"
	"github.com/transitdesk/console/internal/platform/httpx"
	"github.com/transitdesk/console/internal/rbac"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/view"
	"github.com/transitdesk/console/internal/wallet"
	"github.com/transitdesk/console/jobs"
	"github.com/transitdesk/console/report"
	"github.com/transitdesk/console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	Access         rbac.Middleware

	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	OperatorHandler  *operators.Handler
	CustomerHandler  *customers.Handler
	WalletHandler    *wallet.Handler
	CouponHandler    *coupons.Handler
	BookingHandler   *bookings.Handler
	EventHandler     *events.Handler
	AuditHandler     *listing.Handler
	JobHandler       *jobs.Handler
	ReportHandler    *report.Handler
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("static assets", slog.Any("error", err))
	} else {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin)

		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
		if params.OperatorHandler != nil {
			r.With(params.Access.RequireAnyForWrites(shared.PermOperatorsManage)).Route("/operators", params.OperatorHandler.MountRoutes)
		}
		if params.CustomerHandler != nil {
			r.Route("/customers", params.CustomerHandler.MountRoutes)
		}
		if params.WalletHandler != nil {
			r.Route("/wallet", params.WalletHandler.MountRoutes)
		}
		if params.CouponHandler != nil {
			r.With(params.Access.RequireAnyForWrites(shared.PermCouponsManage)).Route("/coupons", params.CouponHandler.MountRoutes)
		}
		if params.BookingHandler != nil {
			r.With(params.Access.RequireAnyForWrites(shared.PermBookingsCancel)).Route("/bookings", params.BookingHandler.MountRoutes)
		}
		if params.EventHandler != nil {
			r.Route("/events", params.EventHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.With(params.Access.RequireAny(shared.PermAuditView)).Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.With(params.Access.RequireAny(shared.PermJobsView)).Route("/jobs", params.JobHandler.MountRoutes)
		}
		if params.ReportHandler != nil {
			r.Route("/report", params.ReportHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		data := listing.TemplateData(r, params.CSRFManager, "Not found", map[string]string{
			"Heading": "Page not found",
			"Message": "The page you asked for does not exist.",
		})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := params.Templates.Render(w, "pages/error.html", data); err != nil {
			params.Logger.Error("render not found", slog.Any("error", err))
		}
	})

	return r
}
