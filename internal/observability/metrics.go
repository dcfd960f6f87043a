package observability

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/transitdesk/console/internal/realtime"
)

// Metrics collects Prometheus metrics for the console.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	backendTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	realtimeEvents  *prometheus.CounterVec
	liveStreams     prometheus.Gauge
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	backendCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_backend_requests_total",
		Help: "Calls to the platform API by method, path and status.",
	}, []string{"method", "path", "code"})
	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_backend_request_duration_seconds",
		Help:    "Platform API call duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_realtime_events_total",
		Help: "Real-time events received by entity.",
	}, []string{"entity"})
	streams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_live_streams",
		Help: "Open live table streams.",
	})
	registry.MustRegister(requests, duration, backendCalls, backendDuration, events, streams)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		backendTotal:    backendCalls,
		backendDuration: backendDuration,
		realtimeEvents:  events,
		liveStreams:     streams,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveBackendCall implements backend.Observer. Status 0 means the call
// never got a response.
func (m *Metrics) ObserveBackendCall(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	path = normalizePath(path)
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.backendTotal.WithLabelValues(method, path, code).Inc()
	m.backendDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// CountEvents returns a realtime listener counting events by entity.
func (m *Metrics) CountEvents() realtime.Listener {
	return func(ev realtime.Event) {
		if m == nil {
			return
		}
		m.realtimeEvents.WithLabelValues(ev.Entity()).Inc()
	}
}

// StreamOpened tracks a live stream; call the returned func when it closes.
func (m *Metrics) StreamOpened() func() {
	if m == nil {
		return func() {}
	}
	m.liveStreams.Inc()
	return m.liveStreams.Dec
}

// Registerer exposes the registry for custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE responses streaming through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

var idSegment = regexp.MustCompile(`/(\d+|[0-9a-fA-F]{8}-[0-9a-fA-F-]{27,}|[0-9a-fA-F]{24})(/|$)`)

// normalizePath folds record ids out of backend paths to bound label cardinality.
func normalizePath(path string) string {
	for {
		next := idSegment.ReplaceAllString(path, "/:id$2")
		if next == path {
			return path
		}
		path = next
	}
}
