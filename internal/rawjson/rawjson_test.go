package rawjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/dotpath"
)

const sample = `{
  "users": [
    {"name": "Alice", "tags": ["a", "b"], "address": {"city": "Paris"}},
    {"name": "Bob", "tags": []}
  ],
  "a.b": {"c*d": 1},
  "count": 12345678901234567890,
  "1": "numeric key"
}`

func TestGet(t *testing.T) {
	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{path: "", want: mustDecode(t, sample), found: true},
		{path: "users[0].name", want: "Alice", found: true},
		{path: "users.1.name", want: "Bob", found: true},
		{path: "users[-1].name", want: "Bob", found: true},
		{path: "users[0].address", want: mustDecode(t, `{"city":"Paris"}`), found: true},
		{path: "users[0].tags", want: []any{"a", "b"}, found: true},
		{path: "['a.b']['c*d']", want: mustDecode(t, `1`), found: true},
		{path: "count", want: mustDecode(t, `12345678901234567890`), found: true},
		{path: "['1']", want: "numeric key", found: true},
		{path: "users[2]", found: false},
		{path: "users[0].missing", found: false},
		{path: "users.name", found: false},
		{path: "count[0]", found: false},
		{path: "users.18446744073709551616", found: false},
		{path: "users.-18446744073709551617", found: false},
		{path: "users.+1", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p := dotpath.MustParse(tt.path)

			got, found, err := Get([]byte(sample), p)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGet_AgreesWithEngine(t *testing.T) {
	doc := mustDecode(t, sample)

	for _, path := range []string{"users[0].tags[1]", "users.0.address.city", "users[-2].name", "nothing.here", "users.18446744073709551616", "users.-1.name"} {
		t.Run(path, func(t *testing.T) {
			p := dotpath.MustParse(path)

			want, wantFound, err := dotpath.NewEvaluator(nil).GetFirst(p, doc)
			require.NoError(t, err)

			got, found, err := Get([]byte(sample), p)
			require.NoError(t, err)
			assert.Equal(t, wantFound, found)
			assert.Equal(t, want, got)
		})
	}
}

func TestGet_Errors(t *testing.T) {
	_, _, err := Get([]byte(sample), dotpath.MustParse("users[*].name"))
	require.ErrorIs(t, err, ErrNotExact)

	_, _, err = Get([]byte(`{"a":`), dotpath.MustParse("a"))
	require.ErrorIs(t, err, document.ErrMalformed)

	_, _, err = Get([]byte(`{"a":1} {"a":2}`), dotpath.MustParse("a"))
	require.ErrorIs(t, err, document.ErrMalformed)
}

func TestSetPath(t *testing.T) {
	tests := []struct {
		loc  dotpath.Location
		want string
	}{
		{loc: dotpath.Location{dotpath.NameElem("users"), dotpath.IndexElem(0), dotpath.NameElem("name")}, want: "users.0.name"},
		{loc: dotpath.Location{dotpath.NameElem("a.b"), dotpath.NameElem("c*d")}, want: `a\.b.c\*d`},
		{loc: dotpath.Location{dotpath.NameElem("x?y|z")}, want: `x\?y\|z`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := SetPath(tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := SetPath(dotpath.Location{dotpath.NameElem("")})
	require.ErrorIs(t, err, ErrInvalidLocation)

	_, err = SetPath(dotpath.Location{dotpath.IndexElem(-1)})
	require.ErrorIs(t, err, ErrInvalidLocation)
}

func TestSet(t *testing.T) {
	doc := mustDecode(t, sample)
	results, err := dotpath.NewEvaluator(nil).Select(dotpath.MustParse("users[*].name"), doc)
	require.NoError(t, err)

	out, err := SetAll([]byte(sample), results.Locations(), "redacted")
	require.NoError(t, err)

	updated := mustDecode(t, string(out))
	got, err := dotpath.FindAll("users[*].name", updated)
	require.NoError(t, err)
	assert.Equal(t, []any{"redacted", "redacted"}, got)

	// untouched members keep their values and order
	keys, err := dotpath.FindAll("users[0].*", updated)
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	out, err = Set([]byte(sample), dotpath.Location{dotpath.NameElem("a.b"), dotpath.NameElem("c*d")}, map[string]any{"k": true})
	require.NoError(t, err)
	v, found, err := Get(out, dotpath.MustParse("['a.b']['c*d'].k"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, true, v)
}

func TestSet_Root(t *testing.T) {
	out, err := Set([]byte(sample), nil, []any{1, "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"x"]`, string(out))
}

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	doc, err := document.DecodeJSON([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestSetAll_SkipsNestedLocations(t *testing.T) {
	data := []byte(`{"a":{"a":{"b":1}},"c":[{"a":2}]}`)
	results, err := dotpath.Find("**.a", mustDecode(t, string(data)))
	require.NoError(t, err)
	require.Len(t, results, 3)

	out, err := SetAll(data, results.Locations(), 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0,"c":[{"a":0}]}`, string(out))
}
