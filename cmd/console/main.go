package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/transitdesk/console/internal/app"
	"github.com/transitdesk/console/internal/audit"
	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/bookings"
	"github.com/transitdesk/console/internal/coupons"
	"github.com/transitdesk/console/internal/customers"
	"github.com/transitdesk/console/internal/dashboard"
	"github.com/transitdesk/console/internal/events"
	"github.com/transitdesk/console/internal/listcache"
	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/observability"
	"github.com/transitdesk/console/internal/operators"
	"github.com/transitdesk/console/internal/platform/cache"
	"github.com/transitdesk/console/internal/platform/db"
	"github.com/transitdesk/console/internal/rbac"
	"github.com/transitdesk/console/internal/realtime"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/view"
	"github.com/transitdesk/console/internal/wallet"
	"github.com/transitdesk/console/jobs"
	"github.com/transitdesk/console/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "console_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	client, err := backend.NewClient(backend.Options{
		BaseURL:     cfg.BackendURL,
		Timeout:     cfg.BackendTimeout,
		Credentials: auth.SessionCredentials{},
		Observer:    metrics,
	})
	if err != nil {
		logger.Error("init backend client", slog.Any("error", err))
		os.Exit(1)
	}
	listCache := listcache.New(redisClient, cfg.ListCacheTTL, logger)

	hub := realtime.NewHub(realtime.DefaultHistory)
	channel := openChannel(ctx, cfg, logger, hub, listCache, metrics)
	if channel != nil {
		defer channel.Close()
	}

	recorder, closeAudit := openAudit(ctx, cfg, logger)
	defer closeAudit()

	reportClient := report.NewClient(cfg.GotenbergURL, 30*time.Second)
	deps := listing.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrfManager,
		Hub:       hub,
		Metrics:   metrics,
		PDF:       reportClient,
		PageSize:  cfg.PageSize,
		Debounce:  cfg.LiveDebounce,
	}

	operatorService := operators.NewService(client, listCache)
	customerService := customers.NewService(client, listCache)
	walletService := wallet.NewService(client, listCache)
	couponService := coupons.NewService(client, listCache)
	bookingService := bookings.NewService(client, listCache)

	authHandler := auth.NewHandler(logger, auth.NewService(client), templates, sessionManager, csrfManager)
	dashboardHandler := dashboard.NewHandler(deps, dashboard.Config{
		Counters: []dashboard.Counter{
			{Label: "Operators", Href: "/operators", Source: operatorService},
			{Label: "Pending approval", Href: "/operators?status=pending", Source: operatorService, Filters: map[string]string{"status": "pending"}},
			{Label: "Customers", Href: "/customers", Source: customerService},
			{Label: "Bookings", Href: "/bookings", Source: bookingService},
			{Label: "Active coupons", Href: "/coupons?status=active", Source: couponService, Filters: map[string]string{"status": "active"}},
		},
		Bookings: bookingService,
		Statuses: bookings.Statuses,
	})
	auditHandler := listing.NewHandler(deps, listing.Resource{Table: audit.Table, Source: recorder})

	inspector := asynq.NewInspector(cfg.AsynqRedis())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Metrics:          metrics,
		Access:           rbac.Middleware{Policy: rbac.DefaultPolicy(), Logger: logger},
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		OperatorHandler:  operators.NewHandler(deps, operatorService, recorder),
		CustomerHandler:  customers.NewHandler(deps, customerService),
		WalletHandler:    wallet.NewHandler(deps, walletService),
		CouponHandler:    coupons.NewHandler(deps, couponService, recorder),
		BookingHandler:   bookings.NewHandler(deps, bookingService, recorder),
		EventHandler:     events.NewHandler(deps),
		AuditHandler:     auditHandler,
		JobHandler:       jobs.NewHandler(inspector, logger),
		ReportHandler:    report.NewHandler(reportClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// openChannel connects the real-time channel when configured. Events fan out
// to the hub, the list cache, metrics and the log.
func openChannel(ctx context.Context, cfg *app.Config, logger *slog.Logger, hub *realtime.Hub, listCache *listcache.Cache, metrics *observability.Metrics) *realtime.Channel {
	if !cfg.RealtimeEnabled() {
		logger.Info("realtime disabled, live updates off")
		return nil
	}
	channel, err := realtime.NewChannel(realtime.Options{
		URL:         cfg.RealtimeURL,
		Namespace:   cfg.RealtimeNamespace,
		Credentials: backend.StaticToken(cfg.ServiceToken),
		Logger:      logger,
	})
	if err != nil {
		logger.Error("init realtime channel", slog.Any("error", err))
		os.Exit(1)
	}
	for _, listener := range channelListeners(context.WithoutCancel(ctx), logger, hub, listCache, metrics) {
		channel.OnEvent(listener)
	}
	go func() {
		if err := channel.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, realtime.ErrClosed) {
			logger.Error("realtime channel", slog.Any("error", err))
		}
	}()
	return channel
}

// channelListeners lists the event consumers in dispatch order. The cache is
// bumped before the hub wakes live tables, so their reload misses the cache.
func channelListeners(ctx context.Context, logger *slog.Logger, hub *realtime.Hub, listCache *listcache.Cache, metrics *observability.Metrics) []realtime.Listener {
	return []realtime.Listener{
		listCache.InvalidateOn(ctx),
		hub.Listener(),
		metrics.CountEvents(),
		realtime.LogEvents(logger),
	}
}

// openAudit connects the Postgres audit trail when configured. Without it,
// actions still run and their entries are dropped.
func openAudit(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*audit.Service, func()) {
	if !cfg.AuditEnabled() {
		logger.Info("audit trail disabled")
		return audit.NewService(nil, logger), func() {}
	}
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	store := audit.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("audit schema", slog.Any("error", err))
		pool.Close()
		os.Exit(1)
	}
	return audit.NewService(store, logger), pool.Close
}
