package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/wcdk/pkg/component"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsRecorder(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.RenderCompleted("my-counter", component.Mounting, time.Millisecond, nil)
	m.RenderCompleted("my-counter", component.Updating, time.Millisecond, nil)
	m.RenderCompleted("my-counter", component.Updating, time.Millisecond, errors.New("boom"))
	m.ActionDispatched("my-counter", "increment", time.Millisecond, nil)

	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("my-counter", component.Updating.String(), "success")); got != 1 {
		t.Fatalf("renders_total(updating, success)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("my-counter", component.Updating.String(), "error")); got != 1 {
		t.Fatalf("renders_total(updating, error)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.renderDuration.WithLabelValues("my-counter")); got != 3 {
		t.Fatalf("render_duration count=%d, want 3", got)
	}
	if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("my-counter", "success")); got != 1 {
		t.Fatalf("actions_total=%v, want 1", got)
	}
}

func TestMetricsBuild(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.BuildCompleted(3, time.Second, nil)
	m.BuildCompleted(0, time.Second, errors.New("parse failure"))
	m.ReloadSent(2)

	if got := metricGaugeValue(t, m.buildComponents); got != 3 {
		t.Fatalf("build_components=%v, want 3 (failed builds keep the last value)", got)
	}
	if got := metricCounterValue(t, m.buildsTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("builds_total(error)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.buildDuration); got != 2 {
		t.Fatalf("build_duration count=%d, want 2", got)
	}
	if got := metricCounterValue(t, m.reloadsTotal); got != 2 {
		t.Fatalf("reloads_total=%v, want 2", got)
	}
}

func TestMetricsHandlerUsesRoutePattern(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/components/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/components/a-b", "/components/c-d", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("/components/{name}", "204")); got != 2 {
		t.Fatalf("http_requests_total(route)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("unmatched", "404")); got != 1 {
		t.Fatalf("http_requests_total(unmatched)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.requestDuration.WithLabelValues("/components/{name}")); got != 2 {
		t.Fatalf("http_request_duration count=%d, want 2", got)
	}
}

func TestNewMetricsDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	NewMetrics(WithRegistry(reg))
}
