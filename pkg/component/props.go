package component

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/wcdk/pkg/expr"
	"github.com/vango-dev/wcdk/pkg/sfc"
)

// resolveProps builds the instance's props from host-supplied values and the
// declared prop specs. Host values given as strings are coerced to the
// declared type first. Declared props missing from host then take their
// default, evaluated with the resolved props and the initial state in scope;
// a default may reference another prop's default regardless of declaration
// order. A prop with neither a host value nor a default takes the initial
// state value of the same name, if any.
func resolveProps(ev *expr.Evaluator, def *sfc.Definition, host, state map[string]any) (map[string]any, error) {
	props := make(map[string]any, len(def.Props)+len(host))
	for k, v := range host {
		props[k] = v
	}

	var pending []string
	for _, name := range def.PropNames() {
		spec := def.Props[name]
		if v, ok := host[name]; ok {
			cv, err := coerce(ev, spec.Type, v)
			if err != nil {
				return nil, fmt.Errorf("prop %q: %w", name, err)
			}
			props[name] = cv
			continue
		}
		if spec.HasDefault {
			pending = append(pending, name)
			continue
		}
		props[name] = state[name]
	}

	// Each pass resolves every default whose references are available.
	for len(pending) > 0 {
		var (
			next     []string
			firstErr error
		)
		for _, name := range pending {
			spec := def.Props[name]
			v, err := ev.Eval(spec.Default, map[string]any{"props": props, "state": state})
			if err != nil {
				next = append(next, name)
				if firstErr == nil {
					firstErr = fmt.Errorf("prop %q default: %w", name, err)
				}
				continue
			}
			cv, err := conform(ev, spec.Type, v)
			if err != nil {
				return nil, fmt.Errorf("prop %q default: %w", name, err)
			}
			props[name] = cv
		}
		if len(next) == len(pending) {
			return nil, firstErr
		}
		pending = next
	}
	return props, nil
}

// conform checks an evaluated default against the declared type. Strings are
// coerced as attribute values would be.
func conform(ev *expr.Evaluator, typ string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(string); ok {
		return coerce(ev, typ, v)
	}
	var ok bool
	switch strings.ToLower(typ) {
	case "number":
		switch v.(type) {
		case int, int64, float64:
			ok = true
		}
	case "boolean":
		_, ok = v.(bool)
	case "string":
		ok = false
	case "array":
		_, ok = v.([]any)
	case "object":
		_, ok = v.(map[string]any)
	default:
		ok = true
	}
	if !ok {
		return nil, fmt.Errorf("%s is not a %s", expr.Format(v), typ)
	}
	return v, nil
}

// coerce converts an attribute value to the declared prop type. Non-string
// values and unknown types pass through unchanged.
func coerce(ev *expr.Evaluator, typ string, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	switch strings.ToLower(typ) {
	case "number":
		t := strings.TrimSpace(s)
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a Number", s)
		}
		return f, nil
	case "boolean":
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "false", "0":
			return false, nil
		default:
			// Presence of a boolean attribute means true.
			return true, nil
		}
	case "array", "object":
		out, err := ev.Eval(s, nil)
		if err != nil {
			return nil, err
		}
		switch out.(type) {
		case []any:
			if strings.EqualFold(typ, "array") {
				return out, nil
			}
		case map[string]any:
			if strings.EqualFold(typ, "object") {
				return out, nil
			}
		}
		return nil, fmt.Errorf("%q is not an %s", s, typ)
	default:
		return s, nil
	}
}
