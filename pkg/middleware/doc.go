// Package middleware instruments the component runtime and the dev server.
//
// # Prometheus Metrics
//
// Metrics implements component.Recorder, so passing it to
// component.WithRecorder counts renders and action dispatches per component.
// Its Handler method wraps an http.Handler and records request counts and
// durations by route.
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	inst, _ := comp.NewInstance(target, nil, component.WithRecorder(m))
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Metrics collected (namespace "wcdk" by default):
//   - wcdk_renders_total: renders by component, phase and status
//   - wcdk_render_duration_seconds: render duration by component
//   - wcdk_actions_total: dispatched actions by component and status
//   - wcdk_builds_total: builds by status
//   - wcdk_build_duration_seconds: build duration
//   - wcdk_build_components: components in the most recent build
//   - wcdk_reloads_total: reload notifications sent to browsers
//   - wcdk_http_requests_total: dev server requests by route and status code
//   - wcdk_http_request_duration_seconds: dev server request duration by route
//
// # OpenTelemetry
//
// Tracing wraps an http.Handler in a server span named after the matched chi
// route. The tracer comes from the global provider; configure it with
// otel.SetTracerProvider before starting the server.
//
//	r.Use(middleware.Tracing(middleware.WithTracerName("wcdk-dev")))
package middleware
