// Package jobmetrics exports Prometheus collectors for the console worker.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records cache warmup activity.
type Metrics struct {
	runs        *prometheus.CounterVec
	entityFails *prometheus.CounterVec
	pages       *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors with registerer. A nil registerer
// shares one set registered against the Prometheus default.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Run instruments one warmup pass. The zero value and a nil *Run are no-ops.
type Run struct {
	metrics *Metrics
	start   time.Time
	now     func() time.Time
}

// Begin starts timing a warmup pass.
func (m *Metrics) Begin() *Run {
	return &Run{metrics: m, start: time.Now(), now: time.Now}
}

// Entity records the outcome for one entity within the pass.
func (r *Run) Entity(entity string, pages int, err error) {
	if r == nil || r.metrics == nil {
		return
	}
	if pages > 0 {
		r.metrics.pages.WithLabelValues(entity).Add(float64(pages))
	}
	if err != nil {
		r.metrics.entityFails.WithLabelValues(entity).Inc()
	}
}

// Finish closes the pass and returns err unchanged so it can wrap a return.
func (r *Run) Finish(err error) error {
	if r == nil || r.metrics == nil {
		return err
	}
	end := r.now()
	r.metrics.duration.Observe(end.Sub(r.start).Seconds())
	if err != nil {
		r.metrics.runs.WithLabelValues("failure").Inc()
		return err
	}
	r.metrics.runs.WithLabelValues("success").Inc()
	r.metrics.lastSuccess.Set(float64(end.Unix()))
	return nil
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_cache_warmup_runs_total",
			Help: "Cache warmup passes by result.",
		}, []string{"result"}),
		entityFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_cache_warmup_entity_failures_total",
			Help: "Entities whose list pages could not be warmed.",
		}, []string{"entity"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_cache_warmed_pages_total",
			Help: "List pages pre-fetched into the cache by entity.",
		}, []string{"entity"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "console_cache_warmup_duration_seconds",
			Help:    "Wall time of a full cache warmup pass.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_cache_warmup_last_success_timestamp_seconds",
			Help: "Unix time of the last warmup pass without failures.",
		}),
	}
	registerer.MustRegister(m.runs, m.entityFails, m.pages, m.duration, m.lastSuccess)
	return m
}
