// Package expr implements the restricted expression evaluator used for state
// initializers, prop defaults, template interpolation and method statements.
//
// Expressions are never executed as code. They are compiled as CUE values,
// which only admit literals, references to names in the supplied scope and
// pure operators:
//
//	e := expr.New()
//	v, err := e.Eval("[1, 2, 3]", nil)          // []any{int64(1), int64(2), int64(3)}
//	v, err = e.Eval("count + 1", map[string]any{"count": 1}) // int64(2)
//	s, err := e.Interpolate("Hi {{name}}", map[string]any{"name": "Ada"})
//
// A handful of script-style spellings are accepted and rewritten before
// compilation: single-quoted strings, undefined (null) and the strict
// comparison operators === and !==.
//
// Values decode to nil, bool, int64, float64, string, []any and map[string]any.
package expr
