package dotpath

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/number"
)

// Built-in operator names.
const (
	OpEquals       = "equals"
	OpNotEquals    = "not_equals"
	OpGreater      = "greater"
	OpGreaterEqual = "greater_equal"
	OpLess         = "less"
	OpLessEqual    = "less_equal"
	OpContains     = "contains"
	OpMatches      = "matches"
	OpExists       = "exists"
	OpStartsWith   = "starts_with"
	OpEndsWith     = "ends_with"
	OpTypeIs       = "type_is"
)

func registerBuiltinOperators(r *Registry) {
	r.RegisterOperator(Operator{Name: OpEquals, Fn: equals}, "eq", "=", "==")
	r.RegisterOperator(Operator{Name: OpNotEquals, Fn: notEquals}, "ne", "!=", "neq")
	r.RegisterOperator(Operator{Name: OpGreater, Fn: ordered(func(c int) bool { return c > 0 })}, "gt", ">")
	r.RegisterOperator(Operator{Name: OpGreaterEqual, Fn: ordered(func(c int) bool { return c >= 0 })}, "ge", "gte", ">=")
	r.RegisterOperator(Operator{Name: OpLess, Fn: ordered(func(c int) bool { return c < 0 })}, "lt", "<")
	r.RegisterOperator(Operator{Name: OpLessEqual, Fn: ordered(func(c int) bool { return c <= 0 })}, "le", "lte", "<=")
	r.RegisterOperator(Operator{Name: OpContains, Fn: contains})
	r.RegisterOperator(Operator{Name: OpMatches, Fn: regexes.matches}, "=~", "regex")
	r.RegisterOperator(Operator{Name: OpExists, Unary: true, Fn: exists})
	r.RegisterOperator(Operator{Name: OpStartsWith, Fn: stringOperator(strings.HasPrefix)})
	r.RegisterOperator(Operator{Name: OpEndsWith, Fn: stringOperator(strings.HasSuffix)})
	r.RegisterOperator(Operator{Name: OpTypeIs, Fn: typeIs})
}

func equals(left, right any) bool {
	if IsMissing(left) || IsMissing(right) {
		return false
	}
	return document.Equal(left, right)
}

func notEquals(left, right any) bool {
	if IsMissing(left) || IsMissing(right) {
		return false
	}
	return !document.Equal(left, right)
}

// ordered compares numbers with numbers and strings with strings. Any other
// pairing is unordered and never satisfies the operator.
func ordered(accept func(cmp int) bool) OperatorFunc {
	return func(left, right any) bool {
		if c, ok := number.Compare(left, right); ok {
			return accept(c)
		}
		ls, lok := left.(string)
		rs, rok := right.(string)
		if lok && rok {
			return accept(strings.Compare(ls, rs))
		}
		return false
	}
}

// contains tests substring membership on strings, element membership on
// sequences and key membership on mappings.
func contains(left, right any) bool {
	if IsMissing(left) || IsMissing(right) {
		return false
	}

	switch l := left.(type) {
	case string:
		s, ok := right.(string)
		return ok && strings.Contains(l, s)
	case []any:
		for _, item := range l {
			if document.Equal(item, right) {
				return true
			}
		}
		return false
	}

	if document.IsMapping(left) {
		key, ok := right.(string)
		if !ok {
			return false
		}
		_, found := document.Lookup(left, key)
		return found
	}
	return false
}

func exists(left, _ any) bool {
	return !IsMissing(left)
}

func stringOperator(accept func(s, arg string) bool) OperatorFunc {
	return func(left, right any) bool {
		ls, lok := left.(string)
		rs, rok := right.(string)
		return lok && rok && accept(ls, rs)
	}
}

func typeIs(left, right any) bool {
	if IsMissing(left) {
		return false
	}
	name, ok := right.(string)
	if !ok {
		return false
	}
	return document.TypeName(left) == strings.ToLower(strings.TrimSpace(name))
}

var regexes = newCachedRegexCompiler()

type cachedRegexCompiler struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func newCachedRegexCompiler() *cachedRegexCompiler {
	return &cachedRegexCompiler{
		patterns: make(map[string]*regexp.Regexp),
	}
}

func (c *cachedRegexCompiler) Compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	if compiled, ok := c.patterns[pattern]; ok {
		c.mu.RUnlock()
		return compiled, nil
	}
	c.mu.RUnlock()

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.patterns[pattern] = compiled
	c.mu.Unlock()

	return compiled, nil
}

// matches reports whether the text of scalar left matches pattern right
// from its first character. Numbers and booleans match their literal text.
// An invalid pattern never matches.
func (c *cachedRegexCompiler) matches(left, right any) bool {
	s, ok := scalarText(left)
	if !ok {
		return false
	}
	pattern, ok := right.(string)
	if !ok {
		return false
	}
	re, err := c.Compile("^(?:" + pattern + ")")
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func scalarText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	}
	if number.IsNumber(v) {
		return fmt.Sprint(v), true
	}
	return "", false
}
