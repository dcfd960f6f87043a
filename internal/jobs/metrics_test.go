package jobmetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsEntitiesAndResult(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	run := metrics.Begin()
	run.Entity("booking", 2, nil)
	run.Entity("coupon", 0, errors.New("timeout"))
	boom := errors.New("boom")
	assert.ErrorIs(t, run.Finish(boom), boom)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.pages.WithLabelValues("booking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.entityFails.WithLabelValues("coupon")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.lastSuccess))
	// No sample for an entity that warmed nothing.
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.pages))
}

func TestSuccessfulRunStampsLastSuccess(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	run := metrics.Begin()
	run.now = func() time.Time { return fixed }
	require.NoError(t, run.Finish(nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("success")))
	assert.Equal(t, float64(fixed.Unix()), testutil.ToFloat64(metrics.lastSuccess))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var metrics *Metrics
	run := metrics.Begin()
	run.Entity("booking", 3, nil)
	assert.NoError(t, run.Finish(nil))

	var nilRun *Run
	nilRun.Entity("booking", 1, nil)
	assert.Error(t, nilRun.Finish(errors.New("x")))
}
