package expr

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned for blank expressions.
var ErrEmpty = errors.New("empty expression")

// ErrNotConcrete is returned when an expression does not reduce to a value,
// for example a bare type such as "int".
var ErrNotConcrete = errors.New("expression does not evaluate to a concrete value")

// EvaluationError reports an expression the evaluator could not reduce to a value.
type EvaluationError struct {
	// Expr is the source text as written.
	Expr string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %q: %v", e.Expr, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}
