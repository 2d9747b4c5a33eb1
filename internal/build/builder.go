package build

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/errors"
	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/middleware"
)

// Recorder receives build telemetry. *middleware.Metrics implements it.
type Recorder interface {
	BuildCompleted(components int, d time.Duration, err error)
}

// Options configures the builder.
type Options struct {
	// Logger receives per-file failures. Nil uses slog.Default().
	Logger *slog.Logger

	// Recorder receives build metrics.
	Recorder Recorder

	// Tracer traces builds. Nil uses the global tracer provider.
	Tracer trace.Tracer

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// FileError is a failure to compile one source file.
type FileError struct {
	// File is the source path relative to the source directory.
	File string
	Err  error
}

func (e *FileError) Error() string {
	return e.File + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Modules are the compiled modules in source path order.
	Modules []*Module

	// Failures are the sources that did not compile.
	Failures []*FileError

	// Cached is how many modules were reused from the previous build.
	Cached int

	// Bundle and Manifest are the written output paths.
	Bundle   string
	Manifest string
}

// Err joins every per-file failure, or returns nil.
func (r *Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return stderrors.Join(errs...)
}

// Manifest describes a bundle for tools that do not decode CBOR.
type Manifest struct {
	Version    int             `json:"version"`
	Bundle     string          `json:"bundle"`
	Components []ManifestEntry `json:"components"`
	Failures   []ManifestError `json:"failures,omitempty"`
}

// ManifestEntry is one compiled component.
type ManifestEntry struct {
	Name    string   `json:"name"`
	File    string   `json:"file"`
	Hash    string   `json:"hash"`
	Props   []string `json:"props,omitempty"`
	Methods []string `json:"methods,omitempty"`
	Style   string   `json:"style,omitempty"`
}

// ManifestError is one failed source.
type ManifestError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Builder compiles a source directory. A Builder remembers the modules of
// its previous build and reuses those whose source is unchanged.
type Builder struct {
	config  *config.Config
	options Options
	tracer  trace.Tracer

	mu    sync.Mutex
	cache map[string]*Module // relative path -> module
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	tracer := options.Tracer
	if tracer == nil {
		tracer = middleware.Tracer(middleware.WithTracerName("wcdk/build"))
	}
	return &Builder{
		config:  cfg,
		options: options,
		tracer:  tracer,
		cache:   make(map[string]*Module),
	}
}

// Build compiles every source and writes the bundle and manifest. A source
// that fails to compile is recorded in Result.Failures and does not stop the
// build; the returned error is reserved for failures to read the source
// directory or write the output.
func (b *Builder) Build(ctx context.Context) (result *Result, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	ctx, span := b.tracer.Start(ctx, "wcdk.build",
		trace.WithAttributes(attribute.String("wcdk.source_dir", b.config.SourcePath())))
	defer func() {
		if result != nil {
			span.SetAttributes(
				attribute.Int("wcdk.components", len(result.Modules)),
				attribute.Int("wcdk.failures", len(result.Failures)),
				attribute.Int("wcdk.cached", result.Cached),
			)
		}
		middleware.EndSpan(span, err)
		if b.options.Recorder != nil {
			n := 0
			if result != nil {
				n = len(result.Modules)
			}
			b.options.Recorder.BuildCompleted(n, time.Since(start), err)
		}
	}()

	b.progress("Scanning sources...")
	files, err := b.sources()
	if err != nil {
		return nil, err
	}

	result = &Result{}
	seen := make(map[string]string) // element name -> file
	next := make(map[string]*Module, len(files))

	b.progress("Compiling components...")
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, cached, err := b.compile(ctx, rel)
		if err == nil {
			if prev, dup := seen[m.Name]; dup {
				err = fmt.Errorf("%w: %q is also defined by %s", component.ErrDuplicate, m.Name, prev)
			}
		}
		if err != nil {
			b.options.Logger.Warn("component failed to compile", "file", rel, "error", err)
			result.Failures = append(result.Failures, &FileError{File: rel, Err: err})
			continue
		}

		seen[m.Name] = rel
		next[rel] = m
		result.Modules = append(result.Modules, m)
		if cached {
			result.Cached++
		}
	}
	b.cache = next

	b.progress("Writing bundle...")
	if err := b.write(result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// compile returns the module for rel, reusing the cached module when the
// source hash is unchanged.
func (b *Builder) compile(ctx context.Context, rel string) (*Module, bool, error) {
	data, err := os.ReadFile(filepath.Join(b.config.SourcePath(), filepath.FromSlash(rel)))
	if err != nil {
		return nil, false, err
	}
	source := string(data)

	if m, ok := b.cache[rel]; ok && m.Hash == hashSource(source) {
		return m, true, nil
	}

	_, span := b.tracer.Start(ctx, "wcdk.transform",
		trace.WithAttributes(attribute.String("wcdk.file", rel)))
	m, err := Transform(source, rel)
	middleware.EndSpan(span, err)
	return m, false, err
}

// sources lists source files relative to the source directory, sorted.
func (b *Builder) sources() ([]string, error) {
	root := b.config.SourcePath()
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		d := errors.New("W045").WithLocation(root, 0, 0)
		if err != nil {
			d = d.Wrap(err)
		}
		return nil, d
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(path) != b.config.Source.Extension {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.New("W045").Wrap(err)
	}
	sort.Strings(files)
	return files, nil
}

func (b *Builder) write(result *Result) error {
	out := b.config.OutputPath()
	if err := os.MkdirAll(out, 0o755); err != nil {
		return errors.New("W046").Wrap(err)
	}

	bundle := &Bundle{Version: BundleVersion, Modules: result.Modules}
	data, err := bundle.Encode()
	if err != nil {
		return errors.New("W046").Wrap(err)
	}
	result.Bundle = filepath.Join(out, BundleFile)
	if err := os.WriteFile(result.Bundle, data, 0o644); err != nil {
		return errors.New("W046").Wrap(err)
	}

	manifest := NewManifest(result)
	data, err = json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.New("W046").Wrap(err)
	}
	result.Manifest = filepath.Join(out, ManifestFile)
	if err := os.WriteFile(result.Manifest, data, 0o644); err != nil {
		return errors.New("W046").Wrap(err)
	}
	return nil
}

// NewManifest summarizes a build result.
func NewManifest(result *Result) *Manifest {
	m := &Manifest{
		Version:    BundleVersion,
		Bundle:     BundleFile,
		Components: make([]ManifestEntry, 0, len(result.Modules)),
	}
	for _, mod := range result.Modules {
		m.Components = append(m.Components, ManifestEntry{
			Name:    mod.Name,
			File:    mod.File,
			Hash:    mod.HashString(),
			Props:   mod.Definition.PropNames(),
			Methods: mod.Definition.MethodNames(),
			Style:   mod.Definition.StyleSrc(),
		})
	}
	for _, f := range result.Failures {
		m.Failures = append(m.Failures, ManifestError{File: f.File, Error: f.Err.Error()})
	}
	return m
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}

func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}
