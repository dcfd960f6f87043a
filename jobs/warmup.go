package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hibiken/asynq"

	"github.com/transitdesk/console/internal/datatable"
	jobmetrics "github.com/transitdesk/console/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Lister loads one table page. The entity services satisfy it.
type Lister interface {
	List(ctx context.Context, q datatable.Query) (datatable.Result, error)
}

// Target is one entity list to keep warm.
type Target struct {
	Entity string
	Source Lister
}

// WarmupJob pre-fetches the default list pages so the first admin to open a
// table after an invalidation is served from cache.
type WarmupJob struct {
	Targets  []Target
	PageSize int
	Pages    int
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(targets []Target, pageSize, pages int, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{
		Targets:  targets,
		PageSize: pageSize,
		Pages:    pages,
		Logger:   logger,
		Metrics:  metrics,
		clock:    time.Now,
	}
}

// Handle processes cache warmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cache warmup: handler not configured")
	}
	var payload WarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("cache warmup: %v: %w", err, asynq.SkipRetry)
		}
	}
	return j.Run(ctx, payload)
}

// Run warms every selected target. A failing entity does not stop the others;
// all failures are returned joined.
func (j *WarmupJob) Run(ctx context.Context, payload WarmupPayload) (resultErr error) {
	run := j.metrics().Begin()
	defer func() {
		resultErr = run.Finish(resultErr)
	}()

	pages := payload.Pages
	if pages <= 0 {
		pages = j.Pages
	}
	if pages <= 0 {
		pages = 1
	}
	limit := j.PageSize
	if limit <= 0 {
		limit = 10
	}

	start := j.now()
	logger := j.logger()
	var errs []error
	for _, target := range j.Targets {
		if len(payload.Entities) > 0 && !slices.Contains(payload.Entities, target.Entity) {
			continue
		}
		warmed, err := j.warm(ctx, target, pages, limit)
		run.Entity(target.Entity, warmed, err)
		if err != nil {
			logger.Warn("warm entity", slog.String("entity", target.Entity), slog.Int("pages", warmed), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", target.Entity, err))
		}
	}
	logger.Info("completed cache warmup", slog.Int("targets", len(j.Targets)), slog.Int("failures", len(errs)), slog.Duration("duration", time.Since(start)))
	return errors.Join(errs...)
}

func (j *WarmupJob) warm(ctx context.Context, target Target, pages, limit int) (int, error) {
	// Bound each entity so one slow service cannot stall the run.
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	warmed := 0
	for page := 1; page <= pages; page++ {
		res, err := target.Source.List(ctx, datatable.Query{Page: page, Limit: limit, Filters: map[string]string{}})
		if err != nil {
			return warmed, err
		}
		warmed++
		if page*limit >= res.Total {
			break
		}
	}
	return warmed, nil
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *WarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
