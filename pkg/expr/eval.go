package expr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Evaluator compiles and evaluates restricted expressions.
// An Evaluator is safe for concurrent use.
type Evaluator struct {
	mu  sync.Mutex
	ctx *cue.Context
}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{ctx: cuecontext.New()}
}

// Eval evaluates src with the names in scope visible as references.
func (e *Evaluator) Eval(src string, scope map[string]any) (any, error) {
	text := strings.TrimSpace(src)
	if text == "" {
		return nil, &EvaluationError{Expr: src, Err: ErrEmpty}
	}

	norm, err := normalize(text)
	if err != nil {
		return nil, &EvaluationError{Expr: src, Err: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var opts []cue.BuildOption
	if len(scope) > 0 {
		sv := e.ctx.Encode(scope)
		if err := sv.Err(); err != nil {
			return nil, &EvaluationError{Expr: src, Err: fmt.Errorf("encoding scope: %w", err)}
		}
		opts = append(opts, cue.Scope(sv))
	}

	v := e.ctx.CompileString(norm, opts...)
	if err := v.Err(); err != nil {
		return nil, &EvaluationError{Expr: src, Err: err}
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &EvaluationError{Expr: src, Err: errors.Join(ErrNotConcrete, err)}
	}

	out, err := decode(v)
	if err != nil {
		return nil, &EvaluationError{Expr: src, Err: err}
	}
	return out, nil
}

// decode converts a concrete CUE value into plain Go data.
func decode(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		// Out of int64 range.
		return v.Float64()
	case cue.FloatKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case cue.ListKind:
		it, err := v.List()
		if err != nil {
			return nil, err
		}
		out := make([]any, 0)
		for it.Next() {
			item, err := decode(it.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case cue.StructKind:
		it, err := v.Fields()
		if err != nil {
			return nil, err
		}
		out := make(map[string]any)
		for it.Next() {
			item, err := decode(it.Value())
			if err != nil {
				return nil, err
			}
			out[it.Selector().Unquoted()] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}

// Interpolate replaces every {{expr}} placeholder in text with the formatted
// value of expr. A placeholder that fails to evaluate is replaced by the empty
// string and its error is included in the returned error. An unclosed "{{" is
// kept as literal text.
func (e *Evaluator) Interpolate(text string, scope map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	var (
		b    strings.Builder
		errs []error
	)
	rest := text
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])

		src := rest[start+2 : start+2+end]
		v, err := e.Eval(src, scope)
		if err != nil {
			errs = append(errs, err)
		} else {
			b.WriteString(Format(v))
		}
		rest = rest[start+2+end+2:]
	}
	return b.String(), errors.Join(errs...)
}

// HasPlaceholder reports whether text contains a {{...}} placeholder.
func HasPlaceholder(text string) bool {
	start := strings.Index(text, "{{")
	return start >= 0 && strings.Contains(text[start+2:], "}}")
}

// Format renders a value as display text.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any, map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
