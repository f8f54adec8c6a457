// Package document holds the tree model shared by the path engine and its
// front-ends: mappings, sequences and scalars decoded from JSON or YAML.
//
// A mapping is either a yaml.MapSlice, which keeps insertion order, or a
// map[string]any, which is visited in sorted key order because Go maps do
// not remember insertion order. A sequence is a []any. Every other value is
// a scalar.
package document

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/dq/internal/number"
)

// Entry is a single key/value pair of a mapping.
type Entry struct {
	Key   string
	Value any
}

// IsMapping reports whether v is a mapping node.
func IsMapping(v any) bool {
	switch v.(type) {
	case yaml.MapSlice, map[string]any:
		return true
	}
	return false
}

// IsSequence reports whether v is a sequence node.
func IsSequence(v any) bool {
	_, ok := v.([]any)
	return ok
}

// Lookup returns the value stored under key when v is a mapping.
func Lookup(v any, key string) (any, bool) {
	switch m := v.(type) {
	case yaml.MapSlice:
		for _, item := range m {
			if KeyString(item.Key) == key {
				return item.Value, true
			}
		}
	case map[string]any:
		value, ok := m[key]
		return value, ok
	}
	return nil, false
}

// Entries lists the entries of a mapping in traversal order.
// The second result is false when v is not a mapping.
func Entries(v any) ([]Entry, bool) {
	switch m := v.(type) {
	case yaml.MapSlice:
		entries := make([]Entry, 0, len(m))
		for _, item := range m {
			entries = append(entries, Entry{Key: KeyString(item.Key), Value: item.Value})
		}
		return entries, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		entries := make([]Entry, 0, len(m))
		for _, k := range keys {
			entries = append(entries, Entry{Key: k, Value: m[k]})
		}
		return entries, true
	}
	return nil, false
}

// Children returns the direct children of a container in traversal order.
func Children(v any) []any {
	if seq, ok := v.([]any); ok {
		return seq
	}

	entries, ok := Entries(v)
	if !ok {
		return nil
	}
	children := make([]any, 0, len(entries))
	for _, e := range entries {
		children = append(children, e.Value)
	}
	return children
}

// Len returns the number of children of a container, or the length of a string.
func Len(v any) (int, bool) {
	switch current := v.(type) {
	case yaml.MapSlice:
		return len(current), true
	case map[string]any:
		return len(current), true
	case []any:
		return len(current), true
	case string:
		return len(current), true
	}
	return 0, false
}

// KeyString renders a mapping key as a string. YAML allows non-string keys.
func KeyString(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}

// TypeName classifies a node with JSON vocabulary.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case yaml.MapSlice, map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}

	if number.IsNumber(v) {
		return "number"
	}

	reflected := reflect.ValueOf(v)
	switch reflected.Kind() {
	case reflect.Array, reflect.Slice:
		return "array"
	default:
		return "object"
	}
}

// Equal reports structural equality. Numbers compare by value regardless of
// their Go type and mappings compare regardless of representation or order.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if cmp, ok := number.Compare(a, b); ok {
		return cmp == 0
	}

	if IsMapping(a) || IsMapping(b) {
		return equalMappings(a, b)
	}

	if sa, ok := a.([]any); ok {
		sb, ok := b.([]any)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !Equal(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}

	if number.IsNumber(a) || number.IsNumber(b) {
		return false
	}

	return reflect.DeepEqual(a, b)
}

func equalMappings(a, b any) bool {
	ea, ok := Entries(a)
	if !ok {
		return false
	}
	eb, ok := Entries(b)
	if !ok || len(ea) != len(eb) {
		return false
	}

	for _, e := range ea {
		other, ok := Lookup(b, e.Key)
		if !ok || !Equal(e.Value, other) {
			return false
		}
	}
	return true
}
