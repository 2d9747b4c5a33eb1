package dom

import "fmt"

// ActionNotFoundError reports an event binding whose action does not exist.
// Only the listener is skipped; the element and the rest of the tree render.
type ActionNotFoundError struct {
	Tag    string
	Event  string
	Action string
}

func (e *ActionNotFoundError) Error() string {
	return fmt.Sprintf("action %q not found for %s event on <%s>", e.Action, e.Event, e.Tag)
}

// MissingActions returns every ActionNotFoundError contained in err.
func MissingActions(err error) []*ActionNotFoundError {
	var out []*ActionNotFoundError
	var visit func(error)
	visit = func(err error) {
		if err == nil {
			return
		}
		switch u := err.(type) {
		case *ActionNotFoundError:
			out = append(out, u)
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				visit(e)
			}
		case interface{ Unwrap() error }:
			visit(u.Unwrap())
		}
	}
	visit(err)
	return out
}
