package errors

import (
	stderrors "errors"
	"regexp"
	"strconv"

	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/dom"
	"github.com/vango-dev/wcdk/pkg/expr"
	"github.com/vango-dev/wcdk/pkg/sfc"
)

var lineRef = regexp.MustCompile(`\(line (\d+)\)`)

// Diagnose classifies err and attaches file as its location. Errors that do
// not match a known failure get code W001 for parse-time use; callers with a
// better default can use FromError instead.
func Diagnose(err error, file string) *Diagnostic {
	if err == nil {
		return nil
	}
	if d, ok := err.(*Diagnostic); ok {
		return d
	}

	code, line := classify(err)
	d := New(code).Wrap(err)
	if file != "" {
		d.WithLocation(file, line, 0)
	}
	return d
}

func classify(err error) (code string, line int) {
	var (
		parseErr  *sfc.ParseError
		actionErr *dom.ActionNotFoundError
		evalErr   *expr.EvaluationError
	)
	switch {
	case stderrors.As(err, &parseErr):
		line = parseErr.Line
		switch parseErr.Kind {
		case sfc.MissingSection:
			return "W002", line
		case sfc.UnterminatedBlock:
			return "W003", line
		default:
			return "W001", line
		}
	case stderrors.Is(err, component.ErrUnsupportedStatement):
		return "W011", 0
	case stderrors.As(err, &evalErr):
		if m := lineRef.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
		}
		return "W010", line
	case stderrors.As(err, &actionErr):
		return "W020", 0
	case stderrors.Is(err, component.ErrRenderBudget):
		return "W021", 0
	case stderrors.Is(err, component.ErrInvalidName):
		return "W030", 0
	case stderrors.Is(err, component.ErrDuplicate):
		return "W031", 0
	default:
		return "W001", 0
	}
}
