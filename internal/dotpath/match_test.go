package dotpath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personJSON = `{
	"name": "Alice",
	"age": 30,
	"tags": ["go", "rust"],
	"profile": {"city": "Lisbon"},
	"score": null,
	"users": [
		{"name": "Alice", "role": "admin", "age": 30},
		{"name": "Bob", "role": "user", "age": 17}
	]
}`

func TestMatch_Queries(t *testing.T) {
	doc := decode(t, personJSON)

	tests := []struct {
		query string
		want  bool
	}{
		{query: "name equals Alice", want: true},
		{query: "name eq Bob", want: false},
		{query: "name != Bob", want: true},
		{query: "age > 18", want: true},
		{query: "age >= 30", want: true},
		{query: "age < 30", want: false},
		{query: "age <= 30.0", want: true},
		{query: "age == 30.0", want: true},
		{query: "age gt 'abc'", want: false},
		{query: "name > 5", want: false},
		{query: "name < Bob", want: true},
		{query: "name ge Alice", want: true},
		{query: "tags contains go", want: true},
		{query: "tags contains java", want: false},
		{query: "name contains lic", want: true},
		{query: "profile contains city", want: true},
		{query: "age contains 3", want: false},
		{query: "name matches '^A'", want: true},
		{query: "name matches lic", want: false},
		{query: "name matches '.*lic'", want: true},
		{query: "name matches 'A|x'", want: true},
		{query: "name =~ 'z$'", want: false},
		{query: "name regex '('", want: false},
		{query: "age matches 3", want: true},
		{query: "age matches '^30$'", want: true},
		{query: "age matches 4", want: false},
		{query: "tags matches go", want: false},
		{query: "score matches ''", want: false},
		{query: "missing exists", want: false},
		{query: "score exists", want: true},
		{query: "profile.city exists", want: true},
		{query: "missing equals null", want: false},
		{query: "score equals null", want: true},
		{query: "missing not_equals x", want: false},
		{query: "missing < 100", want: false},
		{query: "name starts_with Al", want: true},
		{query: "name ends_with ce", want: true},
		{query: "age starts_with 3", want: false},
		{query: "age type_is number", want: true},
		{query: "tags type_is array", want: true},
		{query: "profile type_is Object", want: true},
		{query: "score type_is null", want: true},
		{query: "missing type_is null", want: false},
		{query: "age == @.age", want: true},
		{query: "profile.city == $.profile.city", want: true},
		{query: "users[0].age == $.age", want: true},
		{query: "not name eq Bob", want: true},
		{query: "name eq Alice and age gt 40", want: false},
		{query: "name eq Bob or age gt 20", want: true},
		{query: "any tags eq rust", want: true},
		{query: "all tags matches '^[a-z]+$'", want: true},
		{query: "all tags eq go", want: false},
		{query: "any users.*.age < 18", want: true},
		{query: "any users.* (role eq admin and name eq Alice)", want: true},
		{query: "any users.* (role eq admin and name eq Bob)", want: false},
		{query: "all users.* (age exists)", want: true},
		{query: "all users.* (role eq admin)", want: false},
		{query: "any nothing.* eq 1", want: false},
		{query: "all nothing.* eq 1", want: true},
		{query: "users[?(@.age > 18)].name eq Alice", want: true},
		{query: "users.*.role equals user", want: true},
		{query: "users.*.name matches '^B'", want: true},
		{query: "users.*.age < 18", want: true},
		{query: "users.*.role equals guest", want: false},
		{query: "users.*.email exists", want: false},
		{query: "users.*.age exists", want: true},
		{query: "not users.*.role equals user", want: false},
		{query: "tags.* eq rust", want: true},
		{query: "**.city eq Lisbon", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			n, err := ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := Match(n, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_UnquantifiedPathActsAsAny(t *testing.T) {
	doc := decode(t, usersJSON)

	implicit, err := ParseQuery("users.*.role equals user")
	require.NoError(t, err)
	explicit, err := ParseQuery("any users.*.role equals user")
	require.NoError(t, err)

	for _, n := range []Node{implicit, explicit, Q("users.*.role").Equals("user")} {
		got, err := Match(n, doc)
		require.NoError(t, err)
		assert.True(t, got, n.String())
	}

	// an exact path still compares its single value
	got, err := Match(Q("users[0].role").Equals("user"), doc)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMatch_Scenario(t *testing.T) {
	doc := decode(t, usersJSON)

	anyAdmin, err := ParseQuery("any users.*.role equals admin")
	require.NoError(t, err)
	ok, err := Match(anyAdmin, doc)
	require.NoError(t, err)
	assert.True(t, ok)

	allAdmin, err := ParseQuery("all users.*.role equals admin")
	require.NoError(t, err)
	ok, err = Match(allAdmin, doc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_BooleanLaws(t *testing.T) {
	docs := []any{
		decode(t, personJSON),
		decode(t, `{}`),
		decode(t, `[1, 2, 3]`),
		"scalar",
		nil,
	}
	preds := []Node{
		Q("name").Equals("Alice"),
		Q("age").Greater(10),
		Q("tags").All().Equals("go"),
		Q("*").Any().Exists(),
		AnyOf(Q("missing").Exists(), Q("name").Exists()),
	}

	for i, doc := range docs {
		ok, err := Match(And{}, doc)
		require.NoError(t, err)
		assert.True(t, ok, "empty and on doc %d", i)

		ok, err = Match(Or{}, doc)
		require.NoError(t, err)
		assert.False(t, ok, "empty or on doc %d", i)

		for _, pred := range preds {
			want, err := Match(pred, doc)
			require.NoError(t, err)
			got, err := Match(Negate(Negate(pred)), doc)
			require.NoError(t, err)
			assert.Equal(t, want, got, "not(not(%s)) on doc %d", pred, i)

			negated, err := Match(Negate(pred), doc)
			require.NoError(t, err)
			assert.Equal(t, !want, negated)
		}
	}
}

func TestMatch_QuantifiersOverNothing(t *testing.T) {
	// the inner predicate is never evaluated, so even an unknown operator is fine
	inners := []Node{
		Comparison{Op: "no_such_operator", Left: Ref{}},
		Or{},
		And{},
		Q("x").Equals(1),
	}
	docs := []any{decode(t, `{}`), decode(t, `{"xs":[]}`), []any{}, 7}

	for _, doc := range docs {
		for _, inner := range inners {
			all, err := Match(Quantifier{Kind: QuantifierAll, Path: MustParse("xs.*"), Inner: inner}, doc)
			require.NoError(t, err)
			assert.True(t, all)

			anyOf, err := Match(Quantifier{Kind: QuantifierAny, Path: MustParse("xs.*"), Inner: inner}, doc)
			require.NoError(t, err)
			assert.False(t, anyOf)
		}
	}
}

func TestMatch_OperatorAliases(t *testing.T) {
	groups := [][]string{
		{"equals", "eq", "=", "=="},
		{"not_equals", "ne", "!=", "neq"},
		{"greater", "gt", ">"},
		{"greater_equal", "ge", "gte", ">="},
		{"less", "lt", "<"},
		{"less_equal", "le", "lte", "<="},
		{"matches", "=~", "regex"},
	}
	values := []any{
		1, int64(1), 1.0, json.Number("1"), 2.5, "1", "a", "b", true, nil, Missing,
		[]any{1}, map[string]any{"a": 1},
	}

	for _, group := range groups {
		t.Run(group[0], func(t *testing.T) {
			for _, left := range values {
				for _, right := range values {
					want, err := Match(Comparison{Op: group[0], Left: Literal{Value: left}, Right: Literal{Value: right}}, nil)
					require.NoError(t, err)
					for _, alias := range group[1:] {
						got, err := Match(Comparison{Op: alias, Left: Literal{Value: left}, Right: Literal{Value: right}}, nil)
						require.NoError(t, err)
						assert.Equal(t, want, got, "%s(%v, %v)", alias, left, right)
					}
				}
			}
		})
	}
}

func TestMatch_NumbersCompareExactly(t *testing.T) {
	doc := decode(t, `{"big": 9007199254740993, "small": 0.1}`)

	tests := []struct {
		query string
		want  bool
	}{
		{query: "big > 9007199254740992", want: true},
		{query: "big == 9007199254740993", want: true},
		{query: "small == 0.1", want: true},
		{query: "small < 0.2", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			n, err := ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := Match(n, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	t.Run("unknown_operator", func(t *testing.T) {
		_, err := Match(Comparison{Op: "bogus", Left: Ref{}}, map[string]any{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownOperator)
		assert.NotErrorIs(t, err, ErrDSL)
	})

	t.Run("unknown_operator_inside_filter", func(t *testing.T) {
		p := Path{Segments: []Segment{Wildcard{}, Filter{Predicate: Comparison{Op: "bogus", Left: Ref{}}}}}
		_, err := Select(p, map[string]any{"a": []any{1}})
		assert.ErrorIs(t, err, ErrUnknownOperator)
	})

	t.Run("nil_node", func(t *testing.T) {
		_, err := Match(Not{}, nil)
		assert.ErrorIs(t, err, ErrInvalidNode)
	})

	t.Run("bad_quantifier", func(t *testing.T) {
		_, err := Match(Quantifier{Kind: "some", Inner: And{}}, nil)
		assert.ErrorIs(t, err, ErrInvalidNode)
	})
}

func TestMatch_IsPure(t *testing.T) {
	doc := decode(t, personJSON)
	snapshot := decode(t, personJSON)
	n, err := ParseQuery("any users.* (role eq admin) and tags contains go and not profile.city eq Porto")
	require.NoError(t, err)

	first, err := Match(n, doc)
	require.NoError(t, err)
	second, err := Match(n, doc)
	require.NoError(t, err)

	assert.True(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, doc)
}
