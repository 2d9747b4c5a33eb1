package component

import (
	"log/slog"
	"time"
)

// DefaultRenderBudget is the number of consecutive re-renders a single flush
// may perform before giving up.
const DefaultRenderBudget = 100

// Recorder receives instance telemetry.
type Recorder interface {
	RenderCompleted(component string, phase Phase, d time.Duration, err error)
	ActionDispatched(component, action string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RenderCompleted(string, Phase, time.Duration, error) {}
func (nopRecorder) ActionDispatched(string, string, time.Duration, error) {}

type options struct {
	logger       *slog.Logger
	incremental  bool
	recorder     Recorder
	renderBudget int
}

// Option configures an Instance.
type Option func(*options)

// WithLogger sets the logger for binding failures. Nil uses slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIncrementalRendering makes updates patch the target in place when it
// implements dom.Patcher instead of re-rendering the whole subtree.
func WithIncrementalRendering() Option {
	return func(o *options) { o.incremental = true }
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithRenderBudget overrides DefaultRenderBudget.
func WithRenderBudget(n int) Option {
	return func(o *options) { o.renderBudget = n }
}

func buildOptions(opts []Option) options {
	o := options{renderBudget: DefaultRenderBudget}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.recorder == nil {
		o.recorder = nopRecorder{}
	}
	if o.renderBudget <= 0 {
		o.renderBudget = DefaultRenderBudget
	}
	return o
}
