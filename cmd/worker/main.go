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
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/bookings"
	"github.com/transitdesk/console/internal/coupons"
	"github.com/transitdesk/console/internal/customers"
	jobmetrics "github.com/transitdesk/console/internal/jobs"
	"github.com/transitdesk/console/internal/listcache"
	"github.com/transitdesk/console/internal/observability"
	"github.com/transitdesk/console/internal/operators"
	"github.com/transitdesk/console/internal/platform/cache"
	"github.com/transitdesk/console/internal/wallet"
	"github.com/transitdesk/console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	if cfg.ServiceToken == "" {
		logger.Error("SERVICE_TOKEN is required for the cache warmup worker")
		os.Exit(1)
	}

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

	metrics := observability.NewMetrics()
	client, err := backend.NewClient(backend.Options{
		BaseURL:     cfg.BackendURL,
		Timeout:     cfg.BackendTimeout,
		Credentials: backend.StaticToken(cfg.ServiceToken),
		Observer:    metrics,
	})
	if err != nil {
		logger.Error("init backend client", slog.Any("error", err))
		os.Exit(1)
	}
	listCache := listcache.New(redisClient, cfg.ListCacheTTL, logger)

	warmup := jobs.NewWarmupJob([]jobs.Target{
		{Entity: "operator", Source: operators.NewService(client, listCache)},
		{Entity: "customer", Source: customers.NewService(client, listCache)},
		{Entity: "wallet", Source: wallet.NewService(client, listCache)},
		{Entity: "coupon", Source: coupons.NewService(client, listCache)},
		{Entity: "booking", Source: bookings.NewService(client, listCache)},
	}, cfg.PageSize, cfg.WarmupPages, logger, jobmetrics.NewMetrics(metrics.Registerer()))

	var cron []jobs.CronRegistration
	if cfg.WarmupSchedule != "" && cfg.WarmupPages > 0 {
		task, err := jobs.NewWarmupTask(jobs.WarmupPayload{})
		if err != nil {
			logger.Error("build warmup task", slog.Any("error", err))
			os.Exit(1)
		}
		opts := []asynq.Option{asynq.MaxRetry(1)}
		if cfg.ListCacheTTL >= time.Second {
			opts = append(opts, asynq.Unique(cfg.ListCacheTTL))
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.WarmupSchedule, Task: task, Options: opts})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: cfg.AsynqRedis(),
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCacheWarmup, Handler: warmup.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting worker", slog.String("warmup_schedule", cfg.WarmupSchedule), slog.Int("warmup_pages", cfg.WarmupPages))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
