package sfc

import "fmt"

// ErrorKind classifies a ParseError.
type ErrorKind uint8

const (
	// MalformedSource means the source does not have the expected shape.
	MalformedSource ErrorKind = iota + 1

	// MissingSection means a required part of a section is absent.
	MissingSection

	// UnterminatedBlock means a block has unbalanced braces.
	UnterminatedBlock
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case MalformedSource:
		return "MalformedSource"
	case MissingSection:
		return "MissingSection"
	case UnterminatedBlock:
		return "UnterminatedBlock"
	default:
		return "Unknown"
	}
}

// ParseError is returned when a source cannot be parsed.
type ParseError struct {
	Kind ErrorKind

	// Section names the block the error was found in ("props", "state",
	// "methods"), empty for whole-source errors.
	Section string

	// Line is the 1-based line in the source, 0 when unknown.
	Line int

	// Detail is a human readable explanation.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if e.Section != "" {
		msg += "(" + e.Section + ")"
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches another *ParseError by kind and, when set, section.
//
//	errors.Is(err, &sfc.ParseError{Kind: sfc.MalformedSource})
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Section == "" || t.Section == e.Section
}
