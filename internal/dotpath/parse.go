package dotpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser is handed to syntax recognizers while a path is being parsed.
type Parser struct {
	reg         *Registry
	input       string
	recognizers []SyntaxFunc
}

// Input returns the full text being parsed.
func (p *Parser) Input() string { return p.input }

// Registry returns the registry driving the parse.
func (p *Parser) Registry() *Registry { return p.reg }

// Errorf builds a ParseError at pos.
func (p *Parser) Errorf(pos int, format string, args ...any) *ParseError {
	return &ParseError{Input: p.input, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Bracket returns the content of the bracket group opening at pos and the
// offset just past its closing bracket. ok is false when there is no '[' at pos.
func (p *Parser) Bracket(pos int) (content string, next int, ok bool, err error) {
	if pos >= len(p.input) || p.input[pos] != '[' {
		return "", pos, false, nil
	}
	end := findClosing(p.input, pos, '[', ']')
	if end < 0 {
		return "", pos, true, p.Errorf(pos, "unbalanced '['")
	}
	return p.input[pos+1 : end], end + 1, true, nil
}

// Parse parses text with the default registry.
func Parse(text string) (Path, error) {
	return Default().Parse(text)
}

// MustParse is like Parse but panics on malformed text. It is meant for
// paths fixed at compile time.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse turns text into a Path using the registry's syntax recognizers.
// The empty string is the root path.
func (r *Registry) Parse(text string) (Path, error) {
	p := &Parser{reg: r, input: text, recognizers: r.recognizers()}
	return p.parse()
}

func (p *Parser) parse() (Path, error) {
	var path Path
	src := p.input
	pos := 0

	if pos < len(src) && (src[pos] == '$' || src[pos] == '@') {
		path.Absolute = src[pos] == '$'
		pos++
		if pos == len(src) {
			return path, nil
		}
		switch src[pos] {
		case '.':
			pos++
			if pos == len(src) {
				return Path{}, p.Errorf(pos-1, "trailing dot")
			}
		case '[', '{':
		default:
			return Path{}, p.Errorf(pos, "expected '.' or '[' after %q", src[0])
		}
	}

	for pos < len(src) {
		if src[pos] == '.' {
			return Path{}, p.Errorf(pos, "empty segment")
		}

		seg, next, err := p.segment(pos)
		if err != nil {
			return Path{}, err
		}
		path.Segments = append(path.Segments, seg)
		pos = next

		if pos == len(src) {
			break
		}
		switch src[pos] {
		case '.':
			pos++
			if pos == len(src) {
				return Path{}, p.Errorf(pos-1, "trailing dot")
			}
		case '[', '{':
		default:
			return Path{}, p.Errorf(pos, "unexpected %q", src[pos])
		}
	}

	return path, nil
}

func (p *Parser) segment(pos int) (Segment, int, error) {
	for _, recognize := range p.recognizers {
		seg, next, err := recognize(p, pos)
		if err != nil {
			return nil, pos, err
		}
		if seg != nil {
			if next <= pos {
				return nil, pos, p.Errorf(pos, "segment syntax consumed no input")
			}
			return seg, next, nil
		}
	}

	if p.input[pos] == '[' {
		return nil, pos, p.Errorf(pos, "unknown bracket selector")
	}
	return nil, pos, p.Errorf(pos, "unexpected %q", p.input[pos])
}

func registerCoreSyntax(r *Registry) {
	r.RegisterSyntax(KindKey, parseBareKey)
	r.RegisterSyntax(KindWildcard, parseWildcard)
	r.RegisterSyntax(KindDescent, parseDescent)
	r.RegisterSyntax(KindIndex, parseIndex)
	r.RegisterSyntax(KindSlice, parseSlice)
	r.RegisterSyntax(KindFilter, parseFilter)
	r.RegisterSyntax("quoted_key", parseQuotedKey)
	r.RegisterSyntax(KindRegexKey, parseRegexKey)
	r.RegisterSyntax(KindJSONPath, parseJSONPath)
}

func parseBareKey(p *Parser, pos int) (Segment, int, error) {
	end := pos
	for end < len(p.input) && isKeyByte(p.input[end]) {
		end++
	}
	if end == pos {
		return nil, pos, nil
	}
	return Key{Name: p.input[pos:end]}, end, nil
}

func parseWildcard(p *Parser, pos int) (Segment, int, error) {
	if p.input[pos] == '*' {
		return Wildcard{}, pos + 1, nil
	}
	content, next, ok, err := p.Bracket(pos)
	if !ok || err != nil {
		return nil, pos, err
	}
	if strings.TrimSpace(content) == "*" {
		return Wildcard{}, next, nil
	}
	return nil, pos, nil
}

func parseDescent(p *Parser, pos int) (Segment, int, error) {
	if strings.HasPrefix(p.input[pos:], "**") {
		return Descent{}, pos + 2, nil
	}
	return nil, pos, nil
}

func parseIndex(p *Parser, pos int) (Segment, int, error) {
	content, next, ok, err := p.Bracket(pos)
	if !ok || err != nil {
		return nil, pos, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(content))
	if convErr != nil {
		return nil, pos, nil
	}
	return Index{N: n}, next, nil
}

func parseSlice(p *Parser, pos int) (Segment, int, error) {
	content, next, ok, err := p.Bracket(pos)
	if !ok || err != nil {
		return nil, pos, err
	}
	if !strings.Contains(content, ":") || isQuotedName(strings.TrimSpace(content)) {
		return nil, pos, nil
	}

	bounds := strings.Split(content, ":")
	if len(bounds) > 3 {
		return nil, pos, p.Errorf(pos, "too many colons in slice %q", content)
	}

	var s Slice
	targets := []**int{&s.Start, &s.Stop, &s.Step}
	names := []string{"start", "stop", "step"}
	for i, bound := range bounds {
		if err := parseSliceBound(targets[i], bound); err != nil {
			return nil, pos, p.Errorf(pos, "slice %s %q is not an integer", names[i], strings.TrimSpace(bound))
		}
	}
	if s.Step != nil && *s.Step == 0 {
		return nil, pos, p.Errorf(pos, "slice step cannot be zero")
	}
	return s, next, nil
}

func parseSliceBound(target **int, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return err
	}
	*target = &v
	return nil
}

func parseQuotedKey(p *Parser, pos int) (Segment, int, error) {
	content, next, ok, err := p.Bracket(pos)
	if !ok || err != nil {
		return nil, pos, err
	}
	content = strings.TrimSpace(content)
	if !isQuotedName(content) {
		return nil, pos, nil
	}
	name, err := unquote(content)
	if err != nil {
		// e.g. ['a'='b'], left to the filter shorthand
		return nil, pos, nil
	}
	return Key{Name: name}, next, nil
}

// parseFilter handles [?(query)] and the [path op value] shorthand.
func parseFilter(p *Parser, pos int) (Segment, int, error) {
	content, next, ok, err := p.Bracket(pos)
	if !ok || err != nil {
		return nil, pos, err
	}
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "?") {
		inner := strings.TrimSpace(trimmed[1:])
		if len(inner) < 2 || inner[0] != '(' || inner[len(inner)-1] != ')' {
			return nil, pos, p.Errorf(pos, "filter must be written [?(expression)]")
		}
		node, err := p.reg.ParseQuery(inner[1 : len(inner)-1])
		if err != nil {
			pe := p.Errorf(pos, "invalid filter expression")
			pe.Err = err
			return nil, pos, pe
		}
		return Filter{Predicate: node}, next, nil
	}

	opStart, opEnd := findShorthandOperator(trimmed)
	if opStart < 0 {
		return nil, pos, nil
	}

	symbol := trimmed[opStart:opEnd]
	op, found := p.reg.Operator(symbol)
	if !found || op.Unary {
		pe := p.Errorf(pos, "unknown predicate operator %q", symbol)
		pe.Err = &UnknownOperatorError{Name: symbol, Pos: -1}
		return nil, pos, pe
	}

	left := strings.TrimSpace(trimmed[:opStart])
	right := strings.TrimSpace(trimmed[opEnd:])
	if left == "" || right == "" {
		return nil, pos, p.Errorf(pos, "filter %q needs a path and a value", trimmed)
	}

	var target Path
	if isQuotedName(left) {
		name, err := unquote(left)
		if err != nil {
			return nil, pos, p.Errorf(pos, "invalid quoted key %s", left)
		}
		target = Path{Segments: []Segment{Key{Name: name}}}
	} else if target, err = p.reg.Parse(left); err != nil {
		pe := p.Errorf(pos, "invalid filter path %q", left)
		pe.Err = err
		return nil, pos, pe
	}

	var value Operand
	if isQuotedName(right) {
		s, err := unquote(right)
		if err != nil {
			return nil, pos, p.Errorf(pos, "invalid quoted value %s", right)
		}
		value = Literal{Value: s}
	} else if value, err = operandFromWord(p.reg, right); err != nil {
		pe := p.Errorf(pos, "invalid filter value %q", right)
		pe.Err = err
		return nil, pos, pe
	}

	return Filter{Predicate: Comparison{Op: op.Name, Left: Ref{Path: target}, Right: value}}, next, nil
}

// findShorthandOperator locates the first run of comparison characters
// outside quotes.
func findShorthandOperator(s string) (int, int) {
	isOpByte := func(c byte) bool { return c == '=' || c == '!' || c == '<' || c == '>' || c == '~' }
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '"' {
			end, err := skipQuoted(s, i)
			if err != nil {
				return -1, -1
			}
			i = end - 1
			continue
		}
		if c == '=' || c == '!' || c == '<' || c == '>' {
			j := i + 1
			for j < len(s) && isOpByte(s[j]) {
				j++
			}
			return i, j
		}
	}
	return -1, -1
}

func parseRegexKey(p *Parser, pos int) (Segment, int, error) {
	src := p.input
	if !strings.HasPrefix(src[pos:], "~r/") {
		return nil, pos, nil
	}

	var pattern strings.Builder
	i := pos + 3
	for ; i < len(src) && src[i] != '/'; i++ {
		if src[i] == '\\' && i+1 < len(src) && src[i+1] == '/' {
			i++
		}
		pattern.WriteByte(src[i])
	}
	if i >= len(src) {
		return nil, pos, p.Errorf(pos, "unterminated regex")
	}

	i++
	flagsStart := i
	for i < len(src) && src[i] >= 'a' && src[i] <= 'z' {
		i++
	}

	seg, err := NewRegexKey(pattern.String(), src[flagsStart:i])
	if err != nil {
		pe := p.Errorf(pos, "invalid regex")
		pe.Err = err
		return nil, pos, pe
	}
	return seg, i, nil
}

func parseJSONPath(p *Parser, pos int) (Segment, int, error) {
	if p.input[pos] != '{' {
		return nil, pos, nil
	}
	end := findClosing(p.input, pos, '{', '}')
	if end < 0 {
		return nil, pos, p.Errorf(pos, "unbalanced '{'")
	}

	seg, err := NewJSONPath(strings.TrimSpace(p.input[pos+1 : end]))
	if err != nil {
		pe := p.Errorf(pos, "invalid JSONPath query")
		pe.Err = err
		return nil, pos, pe
	}
	return seg, end + 1, nil
}

// findClosing finds the bracket closing the one opened at start, skipping
// quoted strings. It returns -1 when the group is unbalanced.
func findClosing(s string, start int, openCh, closeCh byte) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			end, err := skipQuoted(s, i)
			if err != nil {
				return -1
			}
			i = end - 1
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isQuotedName(s string) bool {
	return len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0]
}

// unquote decodes a string that must be exactly one quoted literal.
func unquote(s string) (string, error) {
	value, next, err := scanString(s, 0)
	if err != nil {
		return "", err
	}
	if next != len(s) {
		return "", fmt.Errorf("unexpected text after closing quote")
	}
	return value, nil
}
