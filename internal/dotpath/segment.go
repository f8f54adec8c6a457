package dotpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/theory/jsonpath"
)

// Segment kinds of the core grammar and the bundled extensions.
const (
	KindKey      = "key"
	KindIndex    = "index"
	KindWildcard = "wildcard"
	KindSlice    = "slice"
	KindDescent  = "descent"
	KindFilter   = "filter"
	KindRegexKey = "regex_key"
	KindJSONPath = "jsonpath"
)

// Segment is one step of a Path. Kind selects the evaluator in the Registry.
type Segment interface {
	Kind() string
	String() string
}

// Key selects a mapping value by name. A name made of an optional minus
// sign and digits also selects a sequence element, counting from the end
// when negative.
type Key struct {
	Name string
}

func (Key) Kind() string { return KindKey }

func (s Key) String() string {
	if isBareKey(s.Name) {
		return s.Name
	}
	return "[" + quoteString(s.Name) + "]"
}

// Index selects a sequence element; negative values count from the end.
type Index struct {
	N int
}

func (Index) Kind() string { return KindIndex }

func (s Index) String() string { return "[" + strconv.Itoa(s.N) + "]" }

// Wildcard selects every child of a container.
type Wildcard struct{}

func (Wildcard) Kind() string { return KindWildcard }

func (Wildcard) String() string { return "*" }

// Slice selects a range of sequence elements with Python slicing rules.
// Nil bounds take the defaults for the direction of Step.
type Slice struct {
	Start *int
	Stop  *int
	Step  *int
}

func (Slice) Kind() string { return KindSlice }

func (s Slice) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if s.Start != nil {
		b.WriteString(strconv.Itoa(*s.Start))
	}
	b.WriteByte(':')
	if s.Stop != nil {
		b.WriteString(strconv.Itoa(*s.Stop))
	}
	if s.Step != nil {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(*s.Step))
	}
	b.WriteByte(']')
	return b.String()
}

// Descent selects the current node and every node below it, in pre-order.
type Descent struct{}

func (Descent) Kind() string { return KindDescent }

func (Descent) String() string { return "**" }

// Filter keeps the children of a container for which Predicate holds.
type Filter struct {
	Predicate Node
}

func (Filter) Kind() string { return KindFilter }

func (s Filter) String() string {
	switch n := s.Predicate.(type) {
	case nil:
		return "[?()]"
	case And:
		if len(n.Children) > 0 {
			return "[?" + n.String() + "]"
		}
	case Or:
		if len(n.Children) > 0 {
			return "[?" + n.String() + "]"
		}
	}
	return "[?(" + s.Predicate.String() + ")]"
}

// RegexKey selects mapping values whose key contains a match of Pattern.
type RegexKey struct {
	Pattern string
	Flags   string
	re      *regexp.Regexp
}

// NewRegexKey compiles pattern with flags drawn from "i", "m" and "s".
func NewRegexKey(pattern, flags string) (RegexKey, error) {
	re, err := compileKeyPattern(pattern, flags)
	if err != nil {
		return RegexKey{}, err
	}
	return RegexKey{Pattern: pattern, Flags: flags, re: re}, nil
}

func (RegexKey) Kind() string { return KindRegexKey }

func (s RegexKey) String() string {
	return "~r/" + strings.ReplaceAll(s.Pattern, "/", `\/`) + "/" + s.Flags
}

func (s RegexKey) compiled() (*regexp.Regexp, error) {
	if s.re != nil {
		return s.re, nil
	}
	return compileKeyPattern(s.Pattern, s.Flags)
}

func compileKeyPattern(pattern, flags string) (*regexp.Regexp, error) {
	for _, f := range flags {
		if !strings.ContainsRune("ims", f) {
			return nil, fmt.Errorf("unsupported regex flag %q", f)
		}
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// JSONPath evaluates an RFC 9535 query with the current node as its root.
type JSONPath struct {
	Query string
	path  *jsonpath.Path
}

// NewJSONPath parses query.
func NewJSONPath(query string) (JSONPath, error) {
	p, err := jsonpath.Parse(query)
	if err != nil {
		return JSONPath{}, err
	}
	return JSONPath{Query: query, path: p}, nil
}

func (JSONPath) Kind() string { return KindJSONPath }

func (s JSONPath) String() string { return "{" + s.Query + "}" }

func (s JSONPath) compiled() (*jsonpath.Path, error) {
	if s.path != nil {
		return s.path, nil
	}
	return jsonpath.Parse(s.Query)
}

// Path is a parsed path expression. It holds no document references and can
// be evaluated against any number of documents concurrently.
type Path struct {
	Segments []Segment
	// Absolute paths start at the document root even when evaluated
	// relative to a node inside a predicate.
	Absolute bool
}

// String renders the path in the textual grammar.
func (p Path) String() string {
	var b strings.Builder
	if p.Absolute {
		b.WriteByte('$')
	}
	for i, seg := range p.Segments {
		s := seg.String()
		if (i > 0 || p.Absolute) && !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "{") {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	return b.String()
}

// IsExact reports whether the path only contains Key and Index segments,
// so it addresses at most one value.
func (p Path) IsExact() bool {
	for _, seg := range p.Segments {
		switch seg.(type) {
		case Key, Index:
		default:
			return false
		}
	}
	return true
}

func isKeyByte(c byte) bool {
	switch c {
	case '.', '[', ']', '{', '}', '(', ')', '*', '\'', '"', '=', '!', '<', '>', ' ', '\t', '\r', '\n':
		return false
	}
	return c >= 0x20 && c != 0x7f
}

func isBareKey(name string) bool {
	if name == "" || name[0] == '$' || name[0] == '@' || strings.HasPrefix(name, "~r/") {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isKeyByte(name[i]) {
			return false
		}
	}
	return true
}
