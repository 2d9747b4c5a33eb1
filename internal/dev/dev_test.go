package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/pkg/component"
)

const counterSource = `---
<button @click="increment">{{count}}</button>
---
---
export default {
  name: 'my-counter',
  props: {
    step: (Number, default 1)
  },
  state: {
    count: 0
  },
  methods: {
    increment() { count += step }
  }
}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProject(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.New()
	cfg.Source.Dir = filepath.Join(root, "components")
	cfg.Build.Output = filepath.Join(root, "dist")
	if err := os.MkdirAll(cfg.Source.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		writeSource(t, cfg, name, content)
	}
	return cfg
}

func writeSource(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(cfg.Source.Dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(ServerOptions{Config: cfg, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func startWatcher(t *testing.T, dir string) (*Watcher, chan []Change) {
	t.Helper()
	w, err := NewWatcher(WatcherConfig{
		Paths:      []string{dir},
		Extensions: []string{".wcdk"},
		Debounce:   50 * time.Millisecond,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	batches := make(chan []Change, 10)
	w.OnChange(func(c []Change) { batches <- c })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	go w.Run(ctx)
	return w, batches
}

func waitBatch(t *testing.T, batches chan []Change) []Change {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return nil
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	_, batches := startWatcher(t, dir)

	path := filepath.Join(dir, "counter.wcdk")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	batch := waitBatch(t, batches)
	if len(batch) != 1 || batch[0].Path != path {
		t.Fatalf("batch = %+v", batch)
	}
	if batch[0].Type != ChangeCreated {
		t.Errorf("Type = %v, want created", batch[0].Type)
	}

	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	batch = waitBatch(t, batches)
	if batch[0].Type != ChangeModified {
		t.Errorf("Type = %v, want modified", batch[0].Type)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	batch = waitBatch(t, batches)
	if batch[0].Type != ChangeRemoved {
		t.Errorf("Type = %v, want removed", batch[0].Type)
	}
}

func TestWatcher_DebounceAndFilter(t *testing.T) {
	dir := t.TempDir()
	_, batches := startWatcher(t, dir)

	path := filepath.Join(dir, "counter.wcdk")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(strings.Repeat("x", i+1)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	batch := waitBatch(t, batches)
	if len(batch) != 1 || batch[0].Path != path {
		t.Fatalf("batch = %+v, want a single change for %s", batch, path)
	}

	select {
	case extra := <-batches:
		t.Fatalf("unexpected extra batch %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	_, batches := startWatcher(t, dir)

	sub := filepath.Join(dir, "ui")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Let the watcher pick up the directory before writing into it.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(sub, "badge.wcdk")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case batch := <-batches:
			for _, c := range batch {
				if c.Path == path {
					return
				}
			}
		case <-deadline:
			t.Fatal("change in new directory not reported")
		}
	}
}

func TestWatcher_Skipped(t *testing.T) {
	w, err := NewWatcher(WatcherConfig{Skip: []string{"dist", filepath.Join("p", "build", "tmp")}})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	tests := []struct {
		dir  string
		want bool
	}{
		{filepath.Join("p", "components"), false},
		{filepath.Join("p", ".git"), true},
		{filepath.Join("p", "node_modules"), true},
		{filepath.Join("p", "dist"), true},
		{filepath.Join("p", "build", "tmp"), true},
		{filepath.Join("p", "build"), false},
	}
	for _, tt := range tests {
		if got := w.skipped(tt.dir); got != tt.want {
			t.Errorf("skipped(%q) = %v, want %v", tt.dir, got, tt.want)
		}
	}

	w.exts = []string{".wcdk"}
	for p, want := range map[string]bool{
		"counter.wcdk":      true,
		"counter.wcdk.swp":  false,
		"counter.wcdk~":     false,
		".#counter.wcdk":    false,
		"notes/readme.WCDK": true,
	} {
		if got := w.wanted(p); got != want {
			t.Errorf("wanted(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestWatcher_SkipsBuildOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dist")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(WatcherConfig{
		Paths:      []string{dir},
		Extensions: []string{".wcdk"},
		Skip:       []string{out},
		Debounce:   50 * time.Millisecond,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	batches := make(chan []Change, 10)
	w.OnChange(func(c []Change) { batches <- c })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer w.Close()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(out, "copy.wcdk"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case b := <-batches:
		t.Fatalf("change in skipped directory reported: %+v", b)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChangeTypeString(t *testing.T) {
	if ChangeRemoved.String() != "removed" || ChangeType(99).String() != "unknown" {
		t.Fatal("unexpected ChangeType strings")
	}
}

func TestRenderPreview(t *testing.T) {
	c, err := component.Load(counterSource)
	if err != nil {
		t.Fatal(err)
	}

	p, err := RenderPreview("my-counter", c, map[string]any{"step": "3"},
		[]string{"increment", "increment"}, component.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("RenderPreview error: %v", err)
	}
	if p.HTML != "<button>6</button>" {
		t.Errorf("HTML = %q", p.HTML)
	}
	if p.State["count"] != int64(6) {
		t.Errorf("count = %#v", p.State["count"])
	}
	if len(p.Actions) != 1 || p.Actions[0] != "increment" {
		t.Errorf("Actions = %v", p.Actions)
	}

	if _, err := RenderPreview("my-counter", c, nil, []string{"nope"}, component.WithLogger(quietLogger())); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestServer_Routes(t *testing.T) {
	cfg := newProject(t, map[string]string{
		"counter.wcdk": counterSource,
		"broken.wcdk":  "not a component",
	})
	s := newServer(t, cfg)

	result, err := s.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}
	if len(result.Modules) != 1 || len(result.Failures) != 1 {
		t.Fatalf("modules=%d failures=%d", len(result.Modules), len(result.Failures))
	}

	h := s.Handler()

	rec := get(t, h, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `href="/components/my-counter"`) {
		t.Errorf("index missing component link:\n%s", body)
	}
	if !strings.Contains(body, "broken.wcdk") || !strings.Contains(body, "W001") {
		t.Errorf("index missing failure:\n%s", body)
	}
	if !strings.Contains(body, "/_wcdk/reload") {
		t.Error("index missing reload script")
	}

	rec = get(t, h, "/components/my-counter?step=2&dispatch=increment,increment&format=json")
	if rec.Code != http.StatusOK {
		t.Fatalf("preview = %d: %s", rec.Code, rec.Body.String())
	}
	var p Preview
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.HTML != "<button>4</button>" {
		t.Errorf("HTML = %q", p.HTML)
	}
	if _, ok := p.Props["format"]; ok {
		t.Error("format leaked into props")
	}

	rec = get(t, h, "/components/my-counter")
	if !strings.Contains(rec.Body.String(), "<button>0</button>") {
		t.Errorf("HTML preview missing markup:\n%s", rec.Body.String())
	}

	if rec := get(t, h, "/components/missing-one"); rec.Code != http.StatusNotFound {
		t.Errorf("missing component = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/components/my-counter?dispatch=explode"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action = %d, want 400", rec.Code)
	}
	if rec := get(t, h, "/healthz"); rec.Body.String() != "ok" {
		t.Errorf("healthz = %q", rec.Body.String())
	}

	rec = get(t, h, "/metrics")
	for _, metric := range []string{"wcdk_builds_total", "wcdk_renders_total", "wcdk_http_requests_total"} {
		if !strings.Contains(rec.Body.String(), metric) {
			t.Errorf("/metrics missing %s", metric)
		}
	}
}

const scriptSource = `---
<div><script>var label = "{{label}}";</script><p>{{label}}</p></div>
---
---
export default {
  name: 'script-box',
  props: {
    label: (String, default 'hi')
  }
}
`

func TestServer_PreviewEscapesRawText(t *testing.T) {
	cfg := newProject(t, map[string]string{"box.wcdk": scriptSource})
	cfg.Dev.HotReload = false
	s := newServer(t, cfg)
	if _, err := s.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	label := `</script><img src=x onerror=alert(1)>`
	rec := get(t, s.Handler(), "/components/script-box?label="+url.QueryEscape(label))
	if rec.Code != http.StatusOK {
		t.Fatalf("preview = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<script>var label = "<\/script><img src=x onerror=alert(1)>";</script>`) {
		t.Errorf("script text not escaped:\n%s", body)
	}
	if strings.Count(body, "</script>") != 1 {
		t.Errorf("want exactly one </script>:\n%s", body)
	}
	if !strings.Contains(body, "<p>&lt;/script&gt;&lt;img") {
		t.Errorf("paragraph text not escaped:\n%s", body)
	}

	rec = get(t, s.Handler(), "/components/script-box?format=json&label="+url.QueryEscape(label))
	var p Preview
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.HTML, `"`+label+`"`) {
		t.Errorf("JSON HTML = %q", p.HTML)
	}
}

func TestServer_RebuildKeepsRegistryOnFatalError(t *testing.T) {
	cfg := newProject(t, map[string]string{"counter.wcdk": counterSource})
	var builds []error
	s, err := NewServer(ServerOptions{
		Config:          cfg,
		Logger:          quietLogger(),
		OnBuildComplete: func(_ *build.Result, err error) { builds = append(builds, err) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.RemoveAll(cfg.Source.Dir); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Rebuild(context.Background()); err == nil {
		t.Fatal("expected error for missing source directory")
	}
	if _, ok := s.Components().Lookup("my-counter"); !ok {
		t.Error("registry dropped after failed build")
	}
	if len(builds) != 2 || builds[0] != nil || builds[1] == nil {
		t.Errorf("OnBuildComplete errors = %v", builds)
	}
	if !strings.Contains(get(t, s.Handler(), "/").Body.String(), "build-error") {
		t.Error("index does not show the build error")
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) ReloadMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ReloadMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestServer_ReloadMessages(t *testing.T) {
	cfg := newProject(t, map[string]string{"counter.wcdk": counterSource})
	var reloaded []int
	s, err := NewServer(ServerOptions{
		Config:   cfg,
		Logger:   quietLogger(),
		OnReload: func(n int) { reloaded = append(reloaded, n) },
	})
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+ReloadPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	for s.reload.clients() != 1 {
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := s.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MsgClear {
		t.Fatalf("first message = %+v, want clear", msg)
	}
	if msg := readMessage(t, conn); msg.Type != MsgReload {
		t.Fatalf("second message = %+v, want reload", msg)
	}
	if len(reloaded) != 1 || reloaded[0] != 1 {
		t.Errorf("OnReload = %v, want [1]", reloaded)
	}

	writeSource(t, cfg, "counter.wcdk", "---\n<p>")
	if _, err := s.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != MsgError || !strings.Contains(msg.Error, "counter.wcdk") {
		t.Fatalf("message = %+v, want error banner for counter.wcdk", msg)
	}
}

func TestServer_Serve(t *testing.T) {
	cfg := newProject(t, map[string]string{"counter.wcdk": counterSource})
	cfg.Dev.Debounce = 20 * time.Millisecond

	var logs bytes.Buffer
	done := make(chan struct{}, 4)
	s, err := NewServer(ServerOptions{
		Config:          cfg,
		Logger:          slog.New(slog.NewTextHandler(&logs, nil)),
		OnBuildComplete: func(*build.Result, error) { done <- struct{}{} },
	})
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("initial build did not run")
	}

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}

	// Give the watcher a moment to register before editing.
	time.Sleep(100 * time.Millisecond)
	writeSource(t, cfg, "counter.wcdk", counterSource+"\n")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("source change did not trigger a rebuild")
	}

	cancel()
	if err := <-served; err != nil {
		t.Fatalf("Serve returned %v", err)
	}
	if !strings.Contains(logs.String(), "dev server running") {
		t.Errorf("logs missing startup line:\n%s", logs.String())
	}
}
