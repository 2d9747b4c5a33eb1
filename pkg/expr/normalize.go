package expr

import (
	"fmt"
	"strings"
)

// normalize rewrites script-style spellings into CUE syntax.
// Double-quoted strings are copied verbatim; single-quoted strings are
// re-quoted; undefined becomes null; === and !== become == and !=.
func normalize(src string) (string, error) {
	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			end, err := skipString(src, i, '"')
			if err != nil {
				return "", err
			}
			b.WriteString(src[i:end])
			i = end

		case c == '\'':
			end, err := skipString(src, i, '\'')
			if err != nil {
				return "", err
			}
			b.WriteString(requote(src[i+1 : end-1]))
			i = end

		case c == '`':
			return "", fmt.Errorf("template literals are not supported")

		case (c == '=' || c == '!') && strings.HasPrefix(src[i+1:], "=="):
			b.WriteByte(c)
			b.WriteByte('=')
			i += 3

		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			if word == "undefined" {
				word = "null"
			}
			b.WriteString(word)
			i = j

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// skipString returns the index just past the string literal starting at i.
func skipString(src string, i int, quote byte) (int, error) {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated string literal")
}

// requote turns the body of a single-quoted string into a double-quoted one.
func requote(body string) string {
	var b strings.Builder
	b.Grow(len(body) + 2)
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			b.WriteByte(c)
			b.WriteByte(body[i+1])
			i++
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// IsIdentifier reports whether s is a plain identifier.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
