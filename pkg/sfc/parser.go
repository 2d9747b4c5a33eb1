package sfc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vango-dev/wcdk/pkg/expr"
)

// Delimiter separates the sections of a source.
const Delimiter = "---"

// Section indexes.
const (
	sectionTemplate = 1
	sectionStyle    = 2
	sectionScript   = 3
	minSections     = 4
)

// Parser parses sources. The zero value is not usable; use NewParser.
type Parser struct {
	eval *expr.Evaluator
}

// NewParser creates a Parser evaluating state with ev. A nil ev gets a fresh
// evaluator.
func NewParser(ev *expr.Evaluator) *Parser {
	if ev == nil {
		ev = expr.New()
	}
	return &Parser{eval: ev}
}

// Parse parses source with a fresh Parser.
func Parse(source string) (*Definition, error) {
	return NewParser(nil).Parse(source)
}

// Parse splits source into sections and extracts the component definition.
func (p *Parser) Parse(source string) (*Definition, error) {
	sections := strings.Split(source, Delimiter)
	if len(sections) < minSections {
		return nil, &ParseError{
			Kind:   MalformedSource,
			Detail: fmt.Sprintf("expected at least %d sections separated by %q, found %d", minSections, Delimiter, len(sections)),
		}
	}

	// The script may itself contain the delimiter.
	script := strings.Join(sections[sectionScript:], Delimiter)
	scriptOffset := 0
	for _, s := range sections[:sectionScript] {
		scriptOffset += len(s) + len(Delimiter)
	}

	def := &Definition{
		Props:        make(map[string]PropSpec),
		State:        make(map[string]any),
		Methods:      make(map[string]string),
		TemplateText: strings.TrimSpace(sections[sectionTemplate]),
		Style:        strings.TrimSpace(sections[sectionStyle]),
	}

	ctx := &parseContext{source: source, script: script, code: blank(script), base: scriptOffset}

	propsBlock, err := ctx.block("props")
	if err != nil {
		return nil, err
	}
	stateBlock, err := ctx.block("state")
	if err != nil {
		return nil, err
	}
	methodsBlock, err := ctx.block("methods")
	if err != nil {
		return nil, err
	}

	if err := ctx.parseProps(propsBlock, def.Props); err != nil {
		return nil, err
	}
	if err := p.parseState(ctx, stateBlock, def.State); err != nil {
		return nil, err
	}
	if err := ctx.parseMethods(methodsBlock, def.Methods); err != nil {
		return nil, err
	}

	def.Name = ctx.componentName(propsBlock, stateBlock, methodsBlock)
	return def, nil
}

// parseContext carries the script being parsed and its position in the source.
type parseContext struct {
	source string
	script string
	code   string // script with strings and comments blanked
	base   int
}

// block is the body of a "name: { ... }" region of the script.
type block struct {
	name  string
	body  string
	start int // offset of the body in the script
	end   int // offset just past the closing brace
	found bool
}

// line returns the source line of a script offset.
func (c *parseContext) line(scriptOffset int) int {
	return lineAt(c.source, c.base+scriptOffset)
}

var blockRes = map[string]*regexp.Regexp{
	"props":   regexp.MustCompile(`\bprops\s*:\s*\{`),
	"state":   regexp.MustCompile(`\bstate\s*:\s*\{`),
	"methods": regexp.MustCompile(`\bmethods\s*:\s*\{`),
}

// block locates the named block outside strings and comments. A missing
// block is not an error.
func (c *parseContext) block(name string) (block, error) {
	loc := blockRes[name].FindStringIndex(c.code)
	if loc == nil {
		return block{name: name}, nil
	}
	open := loc[1] - 1
	closeIdx := matchClose(c.script, open)
	if closeIdx < 0 {
		return block{}, &ParseError{
			Kind:    UnterminatedBlock,
			Section: name,
			Line:    c.line(open),
			Detail:  "no matching '}' for block",
		}
	}
	return block{
		name:  name,
		body:  c.script[open+1 : closeIdx],
		start: open + 1,
		end:   closeIdx + 1,
		found: true,
	}, nil
}

// parseProps reads "name: (Type[, default EXPR])" entries.
func (c *parseContext) parseProps(b block, out map[string]PropSpec) error {
	for _, e := range splitEntries(b.body) {
		line := c.line(b.start + e.offset)

		name, spec, ok := splitKey(e.text)
		if !ok || spec == "" {
			return &ParseError{Kind: MissingSection, Section: "props", Line: line,
				Detail: fmt.Sprintf("prop %q has no type", strings.TrimSpace(strings.TrimSuffix(e.text, ":")))}
		}
		if !expr.IsIdentifier(name) {
			return &ParseError{Kind: MalformedSource, Section: "props", Line: line,
				Detail: fmt.Sprintf("invalid prop name %q", name)}
		}

		prop, err := parsePropSpec(spec)
		if err != nil {
			err.Line = line
			err.Detail = fmt.Sprintf("prop %q: %s", name, err.Detail)
			return err
		}
		out[name] = prop
	}
	return nil
}

// parsePropSpec parses "(Type, default EXPR)" or a bare "Type".
func parsePropSpec(spec string) (PropSpec, *ParseError) {
	inner := spec
	if strings.HasPrefix(spec, "(") {
		if !strings.HasSuffix(spec, ")") {
			return PropSpec{}, &ParseError{Kind: MalformedSource, Section: "props", Detail: "missing ')'"}
		}
		inner = spec[1 : len(spec)-1]
	}

	typ, rest, _ := splitFirstComma(inner)
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return PropSpec{}, &ParseError{Kind: MissingSection, Section: "props", Detail: "missing type"}
	}

	prop := PropSpec{Type: typ}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return prop, nil
	}

	switch {
	case strings.HasPrefix(rest, "default:"):
		rest = rest[len("default:"):]
	case strings.HasPrefix(rest, "default ") || strings.HasPrefix(rest, "default\t"):
		rest = rest[len("default"):]
	case strings.HasPrefix(rest, "="):
		rest = rest[1:]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return PropSpec{}, &ParseError{Kind: MalformedSource, Section: "props", Detail: "empty default"}
	}
	prop.Default = rest
	prop.HasDefault = true
	return prop, nil
}

// parseState evaluates "name: EXPR" entries in order. Earlier entries are in
// scope for later ones.
func (p *Parser) parseState(c *parseContext, b block, out map[string]any) error {
	for _, e := range splitEntries(b.body) {
		line := c.line(b.start + e.offset)

		name, value, ok := splitKey(e.text)
		if !ok {
			// A bare name declares an entry without a value.
			name, value = e.text, ""
		}
		if !expr.IsIdentifier(name) {
			return &ParseError{Kind: MalformedSource, Section: "state", Line: line,
				Detail: fmt.Sprintf("invalid state name %q", name)}
		}
		if value == "" {
			out[name] = nil
			continue
		}

		v, err := p.eval.Eval(value, out)
		if err != nil {
			return fmt.Errorf("state %q (line %d): %w", name, line, err)
		}
		out[name] = v
	}
	return nil
}

// parseMethods reads "name(params) { body }" entries.
func (c *parseContext) parseMethods(b block, out map[string]string) error {
	body := b.body
	i := 0
	for {
		i = skipSeparators(body, i)
		if i < 0 {
			return &ParseError{Kind: UnterminatedBlock, Section: "methods", Line: c.line(b.start), Detail: "unterminated comment"}
		}
		if i >= len(body) {
			return nil
		}

		line := c.line(b.start + i)
		j := i
		for j < len(body) && isNameByte(body[j]) {
			j++
		}
		name := body[i:j]
		if !expr.IsIdentifier(name) {
			return &ParseError{Kind: MalformedSource, Section: "methods", Line: line,
				Detail: fmt.Sprintf("expected method name at %q", snippet(body[i:]))}
		}

		j = skipSpace(body, j)
		if j >= len(body) || body[j] != '(' {
			return &ParseError{Kind: MalformedSource, Section: "methods", Line: line,
				Detail: fmt.Sprintf("method %q: expected '('", name)}
		}
		closeParen := matchClose(body, j)
		if closeParen < 0 {
			return &ParseError{Kind: UnterminatedBlock, Section: "methods", Line: line,
				Detail: fmt.Sprintf("method %q: no matching ')'", name)}
		}

		j = skipSpace(body, closeParen+1)
		if j >= len(body) || body[j] != '{' {
			return &ParseError{Kind: MalformedSource, Section: "methods", Line: line,
				Detail: fmt.Sprintf("method %q: expected '{'", name)}
		}
		closeBrace := matchClose(body, j)
		if closeBrace < 0 {
			return &ParseError{Kind: UnterminatedBlock, Section: "methods", Line: line,
				Detail: fmt.Sprintf("method %q: no matching '}'", name)}
		}

		out[name] = strings.TrimSpace(body[j+1 : closeBrace])
		i = closeBrace + 1
	}
}

// skipSeparators skips whitespace, commas and comments. It returns -1 on an
// unterminated comment.
func skipSeparators(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\r', '\n', ',':
			i++
		case '/':
			next := skipComment(s, i)
			if next < 0 {
				return -1
			}
			if next == i {
				return i
			}
			i = next
		default:
			return i
		}
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n') {
		i++
	}
	return i
}

func isNameByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 20 {
		return s[:20] + "..."
	}
	return s
}

var nameRe = regexp.MustCompile(`\bname\s*:\s*["']([^"']*)["']`)

// componentName finds the name field of the script outside the parsed
// blocks, comments and strings.
func (c *parseContext) componentName(blocks ...block) string {
	script := []byte(c.script)
	for _, b := range blocks {
		if !b.found {
			continue
		}
		for i := b.start; i < b.end-1; i++ {
			script[i] = ' '
		}
	}
	for _, m := range nameRe.FindAllSubmatchIndex(script, -1) {
		// Matches starting in a comment or string are blanked in code.
		if c.code[m[0]] == ' ' {
			continue
		}
		return strings.TrimSpace(string(script[m[2]:m[3]]))
	}
	return ""
}
