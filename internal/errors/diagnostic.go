package errors

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryParse      Category = "parse"
	CategoryEvaluation Category = "evaluation"
	CategoryRender     Category = "render"
	CategoryRegistry   Category = "registry"
	CategoryConfig     Category = "config"
	CategoryBuild      Category = "build"
	CategoryPublish    Category = "publish"
	CategoryCLI        Category = "cli"
)

// Location represents a position in a component source file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	switch {
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return l.File
	}
}

// Diagnostic is a structured error with location and a fix suggestion.
type Diagnostic struct {
	// Code is a unique error identifier (e.g., "W001").
	Code string `json:"code,omitempty"`

	// Category is the error type (parse, evaluation, etc.).
	Category Category `json:"category"`

	// Message is a short description of the error.
	Message string `json:"message"`

	// Detail is the underlying failure or a longer explanation.
	Detail string `json:"detail,omitempty"`

	Location *Location `json:"location,omitempty"`

	// Context holds the source lines around Location.Line.
	Context []string `json:"-"`

	// contextStart is the line number of Context[0].
	contextStart int

	Suggestion string `json:"suggestion,omitempty"`

	// Wrapped is the underlying error, if any.
	Wrapped error `json:"-"`
}

// Error implements the error interface.
func (e *Diagnostic) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Diagnostic) Unwrap() error {
	return e.Wrapped
}

// WithLocation sets the location and reads context lines from file when it
// exists on disk.
func (e *Diagnostic) WithLocation(file string, line, column int) *Diagnostic {
	e.Location = &Location{File: file, Line: line, Column: column}
	if line > 0 {
		e.Context, e.contextStart = readContextLines(file, line, 5)
	}
	return e
}

// WithSource takes context lines from an in-memory source instead of the file.
func (e *Diagnostic) WithSource(src string) *Diagnostic {
	if e.Location == nil || e.Location.Line <= 0 {
		return e
	}
	e.Context, e.contextStart = contextLines(bufio.NewScanner(strings.NewReader(src)), e.Location.Line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Diagnostic) WithSuggestion(s string) *Diagnostic {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Diagnostic) WithDetail(d string) *Diagnostic {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Diagnostic) Wrap(err error) *Diagnostic {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) ([]string, int) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer file.Close()
	return contextLines(bufio.NewScanner(file), targetLine, contextSize)
}

func contextLines(scanner *bufio.Scanner, targetLine, contextSize int) ([]string, int) {
	var lines []string
	lineNum := 0
	startLine := max(1, targetLine-contextSize/2)
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines, startLine
}

// New creates a Diagnostic from a registered error code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Diagnostic{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new Diagnostic with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a Diagnostic with the given code. A Diagnostic is
// returned unchanged.
func FromError(err error, code string) *Diagnostic {
	if err == nil {
		return nil
	}
	if d, ok := err.(*Diagnostic); ok {
		return d
	}
	return New(code).Wrap(err)
}
