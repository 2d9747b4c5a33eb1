package dev

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/errors"
	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/middleware"
)

// Query parameters a preview does not treat as props.
const (
	dispatchParam = "dispatch"
	formatParam   = "format"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server and build logs. Nil uses slog.Default().
	Logger *slog.Logger

	// Registry collects the server's metrics and backs /metrics.
	// Nil creates a fresh registry.
	Registry *prometheus.Registry

	// OnBuildComplete is called after every build.
	OnBuildComplete func(result *build.Result, err error)

	// OnReload is called when browsers are notified of a change.
	OnReload func(clients int)
}

// Server is the development server.
type Server struct {
	config   *config.Config
	options  ServerOptions
	logger   *slog.Logger
	builder  *build.Builder
	reload   *reloadHub
	metrics  *middleware.Metrics
	registry *prometheus.Registry

	current atomic.Pointer[snapshot]
	buildMu sync.Mutex

	mu         sync.Mutex
	running    bool
	watcher    *Watcher
	httpServer *http.Server
}

// snapshot is the outcome of the most recent build.
type snapshot struct {
	components *component.Registry
	result     *build.Result
	err        error
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) (*Server, error) {
	if options.Config == nil {
		return nil, errors.New("W040").WithDetail("dev server requires a configuration")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := options.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))

	s := &Server{
		config:   options.Config,
		options:  options,
		logger:   logger,
		reload:   newReloadHub(),
		metrics:  metrics,
		registry: reg,
	}
	s.builder = build.New(options.Config, build.Options{
		Logger:   logger,
		Recorder: metrics,
	})
	s.current.Store(&snapshot{components: component.NewRegistry()})
	return s, nil
}

// Components returns the registry built by the most recent successful build.
func (s *Server) Components() *component.Registry {
	return s.current.Load().components
}

// Rebuild compiles the sources, swaps in the new registry and notifies
// browsers: a reload when every source compiled, an error banner otherwise.
// When the build itself fails the previous registry stays in place.
func (s *Server) Rebuild(ctx context.Context) (*build.Result, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	result, err := s.builder.Build(ctx)
	if s.options.OnBuildComplete != nil {
		defer s.options.OnBuildComplete(result, err)
	}
	if err != nil {
		prev := s.current.Load()
		s.current.Store(&snapshot{components: prev.components, result: prev.result, err: err})
		s.logger.Error("build failed", "error", err)
		s.reload.fail(errors.Diagnose(err, "").FormatCompact())
		return nil, err
	}

	reg := component.NewRegistry()
	for _, m := range result.Modules {
		c, err := m.Component()
		if err == nil {
			err = reg.Define(m.Name, c)
		}
		if err != nil {
			s.logger.Warn("component not registered", "name", m.Name, "error", err)
		}
	}
	s.current.Store(&snapshot{components: reg, result: result})

	s.logger.Info("build complete",
		"components", len(result.Modules),
		"failures", len(result.Failures),
		"cached", result.Cached,
		"duration", result.Duration.Round(time.Millisecond))

	if len(result.Failures) > 0 {
		s.reload.fail(s.failureText(result))
		return result, nil
	}
	s.reload.clear()
	s.notifyReload()
	return result, nil
}

func (s *Server) notifyReload() {
	n := s.reload.reload()
	s.metrics.ReloadSent(n)
	if s.options.OnReload != nil {
		s.options.OnReload(n)
	}
}

// failureText renders every per-file failure as one diagnostic per line.
func (s *Server) failureText(result *build.Result) string {
	lines := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		file := filepath.Join(s.config.SourcePath(), filepath.FromSlash(f.File))
		lines = append(lines, errors.Diagnose(f.Err, file).FormatCompact())
	}
	return strings.Join(lines, "\n")
}

// Handler returns the server's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.Handler)
	r.Use(middleware.Tracing(
		middleware.WithTracerName("wcdk/dev"),
		middleware.WithRequestFilter(func(r *http.Request) bool {
			switch r.URL.Path {
			case "/metrics", "/healthz", ReloadPath:
				return false
			}
			return true
		}),
	))

	r.Get("/", s.handleIndex)
	r.Get("/components/{name}", s.handleComponent)
	r.Get(ReloadPath, s.reload.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	return r
}

// Start builds, starts watching the sources and serves on the configured
// address until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.DevAddress())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if _, err := s.Rebuild(ctx); err != nil {
		s.logger.Warn("serving without components", "error", err)
	}

	if s.config.Dev.HotReload {
		w, err := NewWatcher(WatcherConfig{
			Paths:      []string{s.config.SourcePath()},
			Extensions: []string{s.config.Source.Extension},
			Skip:       []string{s.config.Build.Output},
			Debounce:   s.config.Dev.Debounce,
			Logger:     s.logger,
		})
		if err != nil {
			s.logger.Warn("file watching disabled", "error", err)
		} else {
			w.OnChange(func(changes []Change) { s.handleChanges(ctx, changes) })
			s.mu.Lock()
			s.watcher = w
			s.mu.Unlock()
			go w.Run(ctx)
		}
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("dev server running", "url", "http://"+ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	s.reload.close()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	for _, c := range changes {
		s.logger.Debug("source changed", "path", c.Path, "change", c.Type.String())
	}
	if ctx.Err() != nil {
		return
	}
	s.Rebuild(ctx)
}

type indexEntry struct {
	Name  string
	Props []string
}

type indexData struct {
	Components []indexEntry
	Failures   []string
	BuildError string
	Script     template.HTML
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>wcdk components</title></head>
<body>
<h1>Components</h1>
{{if .BuildError}}<pre class="build-error">{{.BuildError}}</pre>{{end}}
<ul>
{{range .Components}}<li><a href="/components/{{.Name}}">{{.Name}}</a>{{if .Props}} <small>props: {{range $i, $p := .Props}}{{if $i}}, {{end}}{{$p}}{{end}}</small>{{end}}</li>
{{else}}<li>No components found.</li>
{{end}}</ul>
{{if .Failures}}<h2>Failures</h2>
{{range .Failures}}<pre class="failure">{{.}}</pre>
{{end}}{{end}}{{.Script}}
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	data := indexData{Script: s.clientScript()}
	for _, name := range snap.components.Names() {
		c, _ := snap.components.Lookup(name)
		data.Components = append(data.Components, indexEntry{Name: name, Props: c.Definition().PropNames()})
	}
	if snap.result != nil {
		for _, f := range snap.result.Failures {
			file := filepath.Join(s.config.SourcePath(), filepath.FromSlash(f.File))
			data.Failures = append(data.Failures, errors.Diagnose(f.Err, file).FormatCompact())
		}
	}
	if snap.err != nil {
		data.BuildError = snap.err.Error()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Warn("index render failed", "error", err)
	}
}

type previewData struct {
	*Preview
	Markup template.HTML
	Style  template.HTML
	Script template.HTML
}

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Name}}</title>{{.Style}}</head>
<body>
<div class="wcdk-preview" data-component="{{.Name}}">{{.Markup}}</div>
{{range .Warnings}}<pre class="warning">{{.}}</pre>
{{end}}{{.Script}}
</body>
</html>
`))

func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, ok := s.Components().Lookup(name)
	if !ok {
		http.Error(w, errors.New("W061").Wrap(fmt.Errorf("no component named %q", name)).Error(), http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	props := make(map[string]any)
	for key, values := range query {
		if key == dispatchParam || key == formatParam || len(values) == 0 {
			continue
		}
		props[key] = values[0]
	}
	var actions []string
	for _, v := range query[dispatchParam] {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				actions = append(actions, a)
			}
		}
	}

	p, err := RenderPreview(name, c, props, actions,
		component.WithLogger(s.logger),
		component.WithRecorder(s.metrics),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if query.Get(formatParam) == "json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
		return
	}

	data := previewData{
		Preview: p,
		Markup: template.HTML(p.embed),
		Script: s.clientScript(),
	}
	if style := strings.TrimSpace(c.Definition().Style); strings.HasPrefix(style, "<style") {
		data.Style = template.HTML(style)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := previewTemplate.Execute(w, data); err != nil {
		s.logger.Warn("preview render failed", "component", name, "error", err)
	}
}

func (s *Server) clientScript() template.HTML {
	if !s.config.Dev.HotReload {
		return ""
	}
	return template.HTML(reloadScript)
}
