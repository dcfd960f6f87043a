package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/datatable"
	jobmetrics "github.com/transitdesk/console/internal/jobs"
)

type fakeLister struct {
	mu      sync.Mutex
	total   int
	err     error
	queries []datatable.Query
}

func (f *fakeLister) List(_ context.Context, q datatable.Query) (datatable.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return datatable.Result{}, f.err
	}
	return datatable.Result{Total: f.total}, nil
}

func newTestJob(targets []Target, pages int) *WarmupJob {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWarmupJob(targets, 10, pages, logger, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestWarmupFetchesDefaultPages(t *testing.T) {
	bookings := &fakeLister{total: 35}
	coupons := &fakeLister{total: 4}
	job := newTestJob([]Target{{Entity: "booking", Source: bookings}, {Entity: "coupon", Source: coupons}}, 3)

	require.NoError(t, job.Run(context.Background(), WarmupPayload{}))

	require.Len(t, bookings.queries, 3)
	for i, q := range bookings.queries {
		assert.Equal(t, i+1, q.Page)
		assert.Equal(t, 10, q.Limit)
		assert.Empty(t, q.Search)
	}
	// A single page covers every coupon.
	assert.Len(t, coupons.queries, 1)
}

func TestWarmupPayloadSelectsEntities(t *testing.T) {
	bookings := &fakeLister{total: 100}
	coupons := &fakeLister{total: 100}
	job := newTestJob([]Target{{Entity: "booking", Source: bookings}, {Entity: "coupon", Source: coupons}}, 1)

	require.NoError(t, job.Run(context.Background(), WarmupPayload{Entities: []string{"coupon"}, Pages: 2}))
	assert.Empty(t, bookings.queries)
	assert.Len(t, coupons.queries, 2)
}

func TestWarmupContinuesPastFailures(t *testing.T) {
	boom := errors.New("backend down")
	broken := &fakeLister{err: boom}
	healthy := &fakeLister{total: 1}
	job := newTestJob([]Target{{Entity: "operator", Source: broken}, {Entity: "customer", Source: healthy}}, 1)

	err := job.Run(context.Background(), WarmupPayload{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "operator")
	assert.Len(t, healthy.queries, 1)
}

func TestWarmupHandleRejectsBadPayload(t *testing.T) {
	job := newTestJob(nil, 1)
	err := job.Handle(context.Background(), asynq.NewTask(TaskCacheWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWarmupHandleDecodesTask(t *testing.T) {
	wallet := &fakeLister{total: 50}
	job := newTestJob([]Target{{Entity: "wallet", Source: wallet}}, 1)

	task, err := NewWarmupTask(WarmupPayload{Pages: 2})
	require.NoError(t, err)
	assert.Equal(t, TaskCacheWarmup, task.Type())
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Len(t, wallet.queries, 2)
}
