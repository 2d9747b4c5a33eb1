package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/wcdk/pkg/component"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "wcdk").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render and request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "wcdk",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

var _ component.Recorder = (*Metrics)(nil)

// Metrics holds the Prometheus collectors for the runtime and tooling.
type Metrics struct {
	rendersTotal    *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	actionsTotal    *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec
	buildsTotal     *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	buildComponents prometheus.Gauge
	reloadsTotal    prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with the configured registry.
// Registering twice with the same registry panics; use a fresh
// prometheus.NewRegistry per Metrics outside of main.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, labels)
	}

	return &Metrics{
		rendersTotal:   counter("renders_total", "Total number of component renders", "component", "phase", "status"),
		renderDuration: histogram("render_duration_seconds", "Component render duration in seconds", "component"),
		actionsTotal:   counter("actions_total", "Total number of dispatched actions", "component", "status"),
		actionDuration: histogram("action_duration_seconds", "Action dispatch duration in seconds, including re-renders", "component"),
		buildsTotal:    counter("builds_total", "Total number of builds", "status"),
		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "build_duration_seconds",
			Help:        "Build duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		buildComponents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "build_components",
			Help:        "Number of components in the most recent build",
			ConstLabels: config.ConstLabels,
		}),
		reloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reloads_total",
			Help:        "Total number of reload notifications sent to browsers",
			ConstLabels: config.ConstLabels,
		}),
		requestsTotal:   counter("http_requests_total", "Total dev server requests", "route", "code"),
		requestDuration: histogram("http_request_duration_seconds", "Dev server request duration in seconds", "route"),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RenderCompleted records one render of the named component.
func (m *Metrics) RenderCompleted(name string, phase component.Phase, d time.Duration, err error) {
	m.rendersTotal.WithLabelValues(name, phase.String(), status(err)).Inc()
	m.renderDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ActionDispatched records one action dispatch on the named component.
func (m *Metrics) ActionDispatched(name, action string, d time.Duration, err error) {
	// action is left out of the labels; names are user-controlled.
	m.actionsTotal.WithLabelValues(name, status(err)).Inc()
	m.actionDuration.WithLabelValues(name).Observe(d.Seconds())
}

// BuildCompleted records a build that produced components modules.
func (m *Metrics) BuildCompleted(components int, d time.Duration, err error) {
	m.buildsTotal.WithLabelValues(status(err)).Inc()
	m.buildDuration.Observe(d.Seconds())
	if err == nil {
		m.buildComponents.Set(float64(components))
	}
}

// ReloadSent records a reload notification broadcast to n clients.
func (m *Metrics) ReloadSent(n int) {
	m.reloadsTotal.Add(float64(n))
}

// Handler records request counts and durations by chi route pattern.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := routePattern(r)
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// routePattern keeps label cardinality bounded by using the matched route
// instead of the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
