package component

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vango-dev/wcdk/pkg/expr"
)

type stmtKind uint8

const (
	stmtAssign stmtKind = iota + 1
	stmtStep
	stmtCall
	stmtReturn
)

// statement is one compiled line of a method body.
type statement struct {
	kind   stmtKind
	src    string
	target string // state field for assign/step
	op     string // "", "+", "-", "*", "/"
	expr   string // right-hand side, return value
	callee string
}

const fieldPattern = `(?:(?:this|state)\s*\.\s*)?([A-Za-z_$][A-Za-z0-9_$]*)`

var (
	callRe    = regexp.MustCompile(`^(?:this\s*\.\s*)?([A-Za-z_$][A-Za-z0-9_$]*)\s*\(\s*\)$`)
	postfixRe = regexp.MustCompile(`^` + fieldPattern + `\s*(\+\+|--)$`)
	prefixRe  = regexp.MustCompile(`^(\+\+|--)\s*` + fieldPattern + `$`)
	assignRe  = regexp.MustCompile(`(?s)^` + fieldPattern + `\s*([-+*/]?)=([^=].*)$`)
	returnRe  = regexp.MustCompile(`(?s)^return(?:\s+(.*))?$`)
)

// compileMethod turns a method body into statements. Any statement outside
// the supported forms is an *expr.EvaluationError.
func compileMethod(body string) ([]statement, error) {
	var out []statement
	for _, src := range splitStatements(body) {
		st, err := compileStatement(src)
		if err != nil {
			return nil, &expr.EvaluationError{Expr: src, Err: err}
		}
		out = append(out, st)
	}
	return out, nil
}

func compileStatement(src string) (statement, error) {
	if m := returnRe.FindStringSubmatch(src); m != nil {
		return statement{kind: stmtReturn, src: src, expr: strings.TrimSpace(m[1])}, nil
	}
	if m := callRe.FindStringSubmatch(src); m != nil {
		return statement{kind: stmtCall, src: src, callee: m[1]}, nil
	}
	if m := postfixRe.FindStringSubmatch(src); m != nil {
		return statement{kind: stmtStep, src: src, target: m[1], op: m[2][:1]}, nil
	}
	if m := prefixRe.FindStringSubmatch(src); m != nil {
		return statement{kind: stmtStep, src: src, target: m[2], op: m[1][:1]}, nil
	}
	if m := assignRe.FindStringSubmatch(src); m != nil {
		rhs := strings.TrimSpace(m[3])
		if rhs == "" {
			return statement{}, fmt.Errorf("%w: missing value", ErrUnsupportedStatement)
		}
		return statement{kind: stmtAssign, src: src, target: m[1], op: m[2], expr: rhs}, nil
	}
	return statement{}, ErrUnsupportedStatement
}

// splitStatements splits a body on semicolons and newlines that are not
// nested inside brackets or strings. Line comments are dropped.
func splitStatements(body string) []string {
	var (
		out   []string
		depth int
		start int
	)
	flush := func(end int) {
		if s := strings.TrimSpace(body[start:end]); s != "" {
			out = append(out, s)
		}
	}
	for i := 0; i < len(body); i++ {
		switch c := body[i]; c {
		case '"', '\'', '`':
			j := i + 1
			for j < len(body) && body[j] != c {
				if body[j] == '\\' {
					j++
				}
				j++
			}
			i = j
		case '/':
			if i+1 < len(body) && body[i+1] == '/' && depth == 0 {
				flush(i)
				for i < len(body) && body[i] != '\n' {
					i++
				}
				start = i
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ';', '\n':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	if start < len(body) {
		flush(len(body))
	}
	return out
}
