package sfc

import "strings"

// skipQuoted returns the index just past the quoted literal starting at i,
// or -1 if it is not terminated.
func skipQuoted(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return -1
}

// skipComment returns the index just past a // or /* */ comment starting at
// i, or i when there is no comment there. -1 means an unterminated block comment.
func skipComment(s string, i int) int {
	if i+1 >= len(s) || s[i] != '/' {
		return i
	}
	switch s[i+1] {
	case '/':
		end := strings.IndexByte(s[i:], '\n')
		if end < 0 {
			return len(s)
		}
		return i + end
	case '*':
		end := strings.Index(s[i+2:], "*/")
		if end < 0 {
			return -1
		}
		return i + 2 + end + 2
	}
	return i
}

// matchClose returns the index of the bracket closing the one at open,
// skipping strings and comments. It returns -1 when unbalanced.
func matchClose(s string, open int) int {
	var stack []byte
	for i := open; i < len(s); {
		c := s[i]
		switch c {
		case '"', '\'', '`':
			next := skipQuoted(s, i)
			if next < 0 {
				return -1
			}
			i = next
			continue
		case '/':
			next := skipComment(s, i)
			if next < 0 {
				return -1
			}
			if next != i {
				i = next
				continue
			}
		case '{', '[', '(':
			stack = append(stack, closerOf(c))
		case '}', ']', ')':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// blank returns s with the contents of strings and comments replaced by
// spaces. Offsets and newlines are preserved; an unterminated literal or
// comment blanks the rest of s.
func blank(s string) string {
	b := []byte(s)
	fill := func(from, to int) {
		if to < 0 || to > len(b) {
			to = len(b)
		}
		for k := from; k < to; k++ {
			if b[k] != '\n' {
				b[k] = ' '
			}
		}
	}
	for i := 0; i < len(s); {
		switch s[i] {
		case '"', '\'', '`':
			next := skipQuoted(s, i)
			fill(i, next)
			if next < 0 {
				return string(b)
			}
			i = next
			continue
		case '/':
			if next := skipComment(s, i); next != i {
				fill(i, next)
				if next < 0 {
					return string(b)
				}
				i = next
				continue
			}
		}
		i++
	}
	return string(b)
}

func closerOf(c byte) byte {
	switch c {
	case '{':
		return '}'
	case '[':
		return ']'
	default:
		return ')'
	}
}

// entry is one item of a block body together with its offset in the body.
type entry struct {
	text   string
	offset int
}

// splitEntries splits a block body on commas and newlines that are not
// nested inside brackets or strings. Blank entries are dropped.
func splitEntries(body string) []entry {
	var (
		out   []entry
		depth int
		start int
	)

	flush := func(end int) {
		raw := body[start:end]
		text := strings.TrimSpace(raw)
		if text != "" {
			lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
			out = append(out, entry{text: text, offset: start + lead})
		}
		start = end + 1
	}

	for i := 0; i < len(body); {
		c := body[i]
		switch c {
		case '"', '\'', '`':
			next := skipQuoted(body, i)
			if next < 0 {
				i = len(body)
				continue
			}
			i = next
			continue
		case '/':
			if next := skipComment(body, i); next != i {
				if next < 0 {
					next = len(body)
				}
				// Comments are blanked out of the entry text.
				body = body[:i] + strings.Repeat(" ", next-i) + body[next:]
				i = next
				continue
			}
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ',', '\n':
			if depth == 0 {
				flush(i)
			}
		}
		i++
	}
	if start <= len(body) {
		flush(len(body))
	}
	return out
}

// splitKey splits "name: value" at the first top-level colon. The name may be
// quoted.
func splitKey(text string) (name, value string, ok bool) {
	idx := strings.IndexByte(text, ':')
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(text[:idx])
	value = strings.TrimSpace(text[idx+1:])
	if len(name) >= 2 && (name[0] == '"' || name[0] == '\'') && name[len(name)-1] == name[0] {
		name = name[1 : len(name)-1]
	}
	return name, value, true
}

// splitFirstComma splits s at its first comma not nested in brackets or strings.
func splitFirstComma(s string) (head, tail string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'', '`':
			next := skipQuoted(s, i)
			if next < 0 {
				return s, "", false
			}
			i = next - 1
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ',':
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// lineAt returns the 1-based line of offset in s.
func lineAt(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	if offset < 0 {
		return 0
	}
	return strings.Count(s[:offset], "\n") + 1
}
