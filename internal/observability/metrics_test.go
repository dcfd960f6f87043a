package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/transitdesk/console/internal/realtime"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "console_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "console_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObserveBackendCallNormalizesIDs(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveBackendCall(http.MethodGet, "/operators/42", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveBackendCall(http.MethodGet, "/operators/43", http.StatusOK, 10*time.Millisecond)
	metrics.ObserveBackendCall(http.MethodPost, "/bookings", 0, time.Millisecond)

	body := scrape(t, metrics)
	assert.Contains(t, body, `console_backend_requests_total{code="200",method="GET",path="/operators/:id"} 2`)
	assert.Contains(t, body, `console_backend_requests_total{code="error",method="POST",path="/bookings"} 1`)
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/customers":                        "/customers",
		"/customers/7/wallet":               "/customers/:id/wallet",
		"/coupons/64b7f0a2c9e77a0012345678": "/coupons/:id",
		"/bookings/1/2":                     "/bookings/:id/:id",
		"/operators/3f2504e0-4f89-11d3-9a0c-0305e82c3301/status": "/operators/:id/status",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizePath(in), in)
	}
}

func TestCountEventsAndStreams(t *testing.T) {
	metrics := NewMetrics()
	count := metrics.CountEvents()
	count(realtime.Event{Name: "booking:created"})
	count(realtime.Event{Name: "booking:cancelled"})
	closeStream := metrics.StreamOpened()

	body := scrape(t, metrics)
	assert.Contains(t, body, `console_realtime_events_total{entity="booking"} 2`)
	assert.Contains(t, body, "console_live_streams 1")

	closeStream()
	assert.Contains(t, scrape(t, metrics), "console_live_streams 0")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveBackendCall(http.MethodGet, "/x", 200, time.Millisecond)
	metrics.CountEvents()(realtime.Event{Name: "a:b"})
	metrics.StreamOpened()()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
