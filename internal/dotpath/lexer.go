package dotpath

import (
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenWord
	tokenString
	tokenLParen
	tokenRParen
)

type token struct {
	typ     tokenType
	literal string
	pos     int
}

// lex splits a query into words, quoted strings and parentheses. A word runs
// until whitespace or a parenthesis at bracket depth zero, so paths such as
// users[?(@.age > 30)].name stay one word.
func lex(input string) ([]token, error) {
	tokens := make([]token, 0, len(input)/4)
	pos := 0

	for pos < len(input) {
		c := input[pos]
		if unicode.IsSpace(rune(c)) {
			pos++
			continue
		}

		switch c {
		case '(':
			tokens = append(tokens, token{typ: tokenLParen, pos: pos})
			pos++
			continue
		case ')':
			tokens = append(tokens, token{typ: tokenRParen, pos: pos})
			pos++
			continue
		case '\'', '"':
			literal, next, err := scanString(input, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenString, literal: literal, pos: pos})
			pos = next
			continue
		}

		start := pos
		next, err := scanWord(input, pos)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token{typ: tokenWord, literal: input[start:next], pos: start})
		pos = next
	}

	tokens = append(tokens, token{typ: tokenEOF, pos: len(input)})
	return tokens, nil
}

func scanWord(input string, start int) (int, error) {
	depth := 0
	pos := start
	for pos < len(input) {
		c := input[pos]
		if depth > 0 && (c == '\'' || c == '"') {
			end, err := skipQuoted(input, pos)
			if err != nil {
				return 0, err
			}
			pos = end
			continue
		}

		switch c {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		}
		if depth <= 0 && (unicode.IsSpace(rune(c)) || c == '(' || c == ')') {
			break
		}
		pos++
	}

	if depth > 0 {
		return 0, &SyntaxError{Input: input, Pos: start, Msg: "unbalanced bracket in path"}
	}
	return pos, nil
}

// skipQuoted returns the offset just past the quoted string starting at start.
func skipQuoted(input string, start int) (int, error) {
	quote := input[start]
	for pos := start + 1; pos < len(input); pos++ {
		switch input[pos] {
		case '\\':
			pos++
		case quote:
			return pos + 1, nil
		}
	}
	return 0, &SyntaxError{Input: input, Pos: start, Msg: "unterminated string"}
}

// scanString decodes the quoted string starting at start and returns the
// offset just past its closing quote.
func scanString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder

	for pos := start + 1; pos < len(input); pos++ {
		ch := input[pos]
		if ch == quote {
			return b.String(), pos + 1, nil
		}

		if ch == '\\' {
			pos++
			if pos >= len(input) {
				return "", 0, &SyntaxError{Input: input, Pos: start, Msg: "unterminated escape sequence"}
			}
			switch escaped := input[pos]; escaped {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(escaped)
			}
			continue
		}

		if ch == '\n' || ch == '\r' {
			return "", 0, &SyntaxError{Input: input, Pos: start, Msg: "unterminated string"}
		}

		b.WriteByte(ch)
	}

	return "", 0, &SyntaxError{Input: input, Pos: start, Msg: "unterminated string"}
}

// quoteString renders s as a single-quoted string that scanString decodes back to s.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '\'':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
