package dotpath

import (
	"strconv"
	"strings"
)

// Elem is one concrete step of a Location: a mapping key or a sequence index.
type Elem struct {
	Name    string
	Index   int
	IsIndex bool
}

// NameElem returns a key step.
func NameElem(name string) Elem {
	return Elem{Name: name}
}

// IndexElem returns an index step.
func IndexElem(index int) Elem {
	return Elem{Index: index, IsIndex: true}
}

// Location is the concrete address of a value inside a document.
type Location []Elem

// String renders the location as an absolute exact path, e.g. $.users[0].name.
// The output parses back into a path that selects the same value.
func (l Location) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, e := range l {
		switch {
		case e.IsIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(e.Index))
			b.WriteByte(']')
		case isBareKey(e.Name):
			b.WriteByte('.')
			b.WriteString(e.Name)
		default:
			b.WriteByte('[')
			b.WriteString(quoteString(e.Name))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Path converts the location into an exact path of Key and Index segments.
func (l Location) Path() Path {
	segments := make([]Segment, 0, len(l))
	for _, e := range l {
		if e.IsIndex {
			segments = append(segments, Index{N: e.Index})
			continue
		}
		segments = append(segments, Key{Name: e.Name})
	}
	return Path{Segments: segments, Absolute: true}
}

// with returns a new location extended by e. The receiver's backing array is
// never shared with the result, so sibling results cannot overwrite each other.
func (l Location) with(e Elem) Location {
	return append(l[:len(l):len(l)], e)
}

// Result is a single match: where it was found and what is there.
type Result struct {
	Location Location
	Value    any
}

// Results is an ordered multiset of matches. Duplicates are kept.
type Results []Result

// Values returns the matched values in order.
func (r Results) Values() []any {
	values := make([]any, len(r))
	for i, res := range r {
		values[i] = res.Value
	}
	return values
}

// Locations returns the matched locations in order.
func (r Results) Locations() []Location {
	locations := make([]Location, len(r))
	for i, res := range r {
		locations[i] = res.Location
	}
	return locations
}
