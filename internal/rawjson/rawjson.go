// Package rawjson reads and writes single JSON documents in place without
// decoding the whole tree.
package rawjson

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/dotpath"
)

var (
	// ErrNotExact indicates a path that addresses more than one location.
	ErrNotExact = errors.New("rawjson: path is not exact")

	// ErrInvalidLocation indicates a location that cannot be written.
	ErrInvalidLocation = errors.New("rawjson: invalid location")
)

// Valid reports whether data holds exactly one JSON value.
func Valid(data []byte) bool {
	return gjson.ValidBytes(data)
}

// Get resolves an exact path against the raw JSON value in data and decodes
// only the addressed subtree. It follows the same key and index rules as the
// path engine: a numeric key addresses a sequence element and negative
// indices count from the end.
func Get(data []byte, p dotpath.Path) (any, bool, error) {
	if !p.IsExact() {
		return nil, false, fmt.Errorf("%w: %s", ErrNotExact, p)
	}
	if !gjson.ValidBytes(data) {
		return nil, false, fmt.Errorf("%w: invalid JSON", document.ErrMalformed)
	}

	res := gjson.ParseBytes(data)
	for _, seg := range p.Segments {
		var ok bool
		if res, ok = step(res, seg); !ok {
			return nil, false, nil
		}
	}

	value, err := document.DecodeJSON([]byte(res.Raw))
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func step(res gjson.Result, seg dotpath.Segment) (gjson.Result, bool) {
	switch s := seg.(type) {
	case dotpath.Key:
		if res.IsObject() {
			return member(res, s.Name)
		}
		if i, ok := integer(s.Name); ok && res.IsArray() {
			return element(res, i)
		}
	case dotpath.Index:
		if res.IsArray() {
			return element(res, s.N)
		}
	}
	return gjson.Result{}, false
}

// member finds the member named name, taking the last one when a key
// repeats as the ordered decoder does. Keys are compared literally so names
// never need gjson path escaping.
func member(obj gjson.Result, name string) (gjson.Result, bool) {
	var found gjson.Result
	var ok bool
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.String() == name {
			found, ok = value, true
		}
		return true
	})
	return found, ok
}

func element(arr gjson.Result, i int) (gjson.Result, bool) {
	items := arr.Array()
	if i < 0 {
		i += len(items)
	}
	if i < 0 || i >= len(items) {
		return gjson.Result{}, false
	}
	return items[i], true
}

// integer parses a key made of an optional minus sign and digits. Values
// that do not fit an int address nothing.
func integer(name string) (int, bool) {
	digits := strings.TrimPrefix(name, "-")
	if digits == "" || strings.ContainsFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) {
		return 0, false
	}
	n, err := strconv.Atoi(name)
	return n, err == nil
}

// Set writes value at loc in data, returning the updated document. The
// empty location replaces the whole document.
func Set(data []byte, loc dotpath.Location, value any) ([]byte, error) {
	raw, err := document.MarshalJSON(value)
	if err != nil {
		return nil, err
	}
	if len(loc) == 0 {
		return raw, nil
	}

	path, err := SetPath(loc)
	if err != nil {
		return nil, err
	}

	out, err := sjson.SetRawBytes(data, path, raw)
	if err != nil {
		return nil, fmt.Errorf("rawjson: set %s: %w", loc, err)
	}
	return out, nil
}

// SetAll writes value at every location in order. A location nested under
// one already written is skipped, since its old parent no longer exists.
func SetAll(data []byte, locs []dotpath.Location, value any) ([]byte, error) {
	var written []dotpath.Location
	for _, loc := range locs {
		if slices.ContainsFunc(written, func(w dotpath.Location) bool { return hasPrefix(loc, w) }) {
			continue
		}

		var err error
		if data, err = Set(data, loc, value); err != nil {
			return nil, err
		}
		written = append(written, loc)
	}
	return data, nil
}

func hasPrefix(loc, prefix dotpath.Location) bool {
	return len(prefix) <= len(loc) && slices.Equal(loc[:len(prefix)], prefix)
}

// SetPath renders loc in sjson path syntax.
func SetPath(loc dotpath.Location) (string, error) {
	parts := make([]string, len(loc))
	for i, e := range loc {
		switch {
		case e.IsIndex && e.Index < 0:
			return "", fmt.Errorf("%w: negative index %d", ErrInvalidLocation, e.Index)
		case e.IsIndex:
			parts[i] = fmt.Sprint(e.Index)
		case e.Name == "":
			return "", fmt.Errorf("%w: empty key in %s", ErrInvalidLocation, loc)
		default:
			parts[i] = escape(e.Name)
		}
	}
	return strings.Join(parts, "."), nil
}

const special = `\.*?|#@!=<>%[]{}(),:"`

func escape(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
