package dotpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	doc := decode(t, `{
		"active": true,
		"tags": ["go", "cli"],
		"users": [{"age": 20, "name": "Ann"}, {"age": 35, "name": "Ben"}],
		"limit": 30
	}`)

	tests := []struct {
		name string
		node Node
		want bool
	}{
		{name: "equals", node: Q("active").Equals(true), want: true},
		{name: "not_equals", node: Q("active").NotEquals(true), want: false},
		{name: "all_greater", node: Q("users.*.age").All().Greater(18), want: true},
		{name: "all_greater_fails", node: Q("users.*.age").All().Greater(21), want: false},
		{name: "any_greater_equal", node: Q("users.*.age").Any().GreaterEqual(35), want: true},
		{name: "less", node: Q("users[0].age").Less(21), want: true},
		{name: "less_equal", node: Q("users[1].age").LessEqual(34), want: false},
		{name: "contains", node: Q("tags").Contains("cli"), want: true},
		{name: "matches", node: Q("users.*.name").Any().Matches("^B"), want: true},
		{name: "implicit_any_matches", node: Q("users.*.name").Matches("B"), want: true},
		{name: "implicit_any_equals", node: Q("users.*.age").Equals(35), want: true},
		{name: "implicit_any_none", node: Q("users.*.name").Equals("Cy"), want: false},
		{name: "matches_number_text", node: Q("limit").Matches("3"), want: true},
		{name: "starts_with", node: Q("users[0].name").StartsWith("An"), want: true},
		{name: "ends_with", node: Q("users[0].name").EndsWith("x"), want: false},
		{name: "type_is", node: Q("tags").TypeIs("array"), want: true},
		{name: "exists", node: Q("limit").Exists(), want: true},
		{name: "all_exists_on_nothing", node: Q("nothing.*").All().Exists(), want: true},
		{name: "compare_to_path", node: Q("users.*.age").Any().Greater(MustParse("$.limit")), want: true},
		{name: "op", node: Q("limit").Op("gte", 30), want: true},
		{
			name: "where",
			node: Q("users.*").Where(AllOf(Q("age").Greater(30), Q("name").Equals("Ben"))),
			want: true,
		},
		{
			name: "all_where",
			node: Q("users.*").All().Where(Q("age").Greater(30)),
			want: false,
		},
		{name: "any_of", node: AnyOf(Q("active").Equals(false), Q("limit").Equals(30)), want: true},
		{name: "negate", node: Negate(Q("active").Equals(true)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(tt.node, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_MatchesParsedQuery(t *testing.T) {
	built := Q("users.*.age").All().Greater(18)
	parsed, err := ParseQuery("all users.*.age greater 18")
	require.NoError(t, err)

	assert.Equal(t, parsed.String(), built.String())
}

func TestBuilder_PanicsOnBadPath(t *testing.T) {
	assert.Panics(t, func() { Q("a..b") })
}
