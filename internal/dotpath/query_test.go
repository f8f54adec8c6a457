package dotpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(path ...Segment) Ref {
	return Ref{Path: Path{Segments: path}}
}

func TestParseQuery(t *testing.T) {
	role := Comparison{Op: OpEquals, Left: ref(Key{Name: "role"}), Right: Literal{Value: "admin"}}
	a := Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: int64(1)}}
	b := Comparison{Op: OpEquals, Left: ref(Key{Name: "b"}), Right: Literal{Value: int64(2)}}
	c := Comparison{Op: OpEquals, Left: ref(Key{Name: "c"}), Right: Literal{Value: int64(3)}}

	tests := []struct {
		input string
		want  Node
	}{
		{
			input: "role equals admin and age greater 18",
			want: And{Children: []Node{
				role,
				Comparison{Op: OpGreater, Left: ref(Key{Name: "age"}), Right: Literal{Value: int64(18)}},
			}},
		},
		{input: "a eq 1 or b = 2 and c == 3", want: Or{Children: []Node{a, And{Children: []Node{b, c}}}}},
		{input: "(a eq 1 or b eq 2) and c eq 3", want: And{Children: []Node{Or{Children: []Node{a, b}}, c}}},
		{input: "a eq 1 and b eq 2 and c eq 3", want: And{Children: []Node{a, b, c}}},
		{input: "a eq 1 AND b eq 2", want: And{Children: []Node{a, b}}},
		{input: "not a eq 1", want: Not{Child: a}},
		{input: "not not a eq 1", want: Not{Child: Not{Child: a}}},
		{input: "((a eq 1))", want: a},
		{input: "a exists", want: Comparison{Op: OpExists, Left: ref(Key{Name: "a"})}},
		{input: "true", want: And{}},
		{input: "false or a eq 1", want: Or{Children: []Node{Or{}, a}}},
		{
			input: "any users.*.role equals admin",
			want: Quantifier{
				Kind:  QuantifierAny,
				Path:  Path{Segments: []Segment{Key{Name: "users"}, Wildcard{}, Key{Name: "role"}}},
				Inner: Comparison{Op: OpEquals, Left: Ref{}, Right: Literal{Value: "admin"}},
			},
		},
		{
			input: "all users[*] (role eq admin and not a eq 1)",
			want: Quantifier{
				Kind:  QuantifierAll,
				Path:  Path{Segments: []Segment{Key{Name: "users"}, Wildcard{}}},
				Inner: And{Children: []Node{role, Not{Child: a}}},
			},
		},
		{
			input: "any eq 1",
			want:  Comparison{Op: OpEquals, Left: ref(Key{Name: "any"}), Right: Literal{Value: int64(1)}},
		},
		{input: "a eq 'x y'", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: "x y"}}},
		{input: `a eq "it's"`, want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: "it's"}}},
		{input: "a eq 1.5", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: 1.5}}},
		{input: "a eq -3", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: int64(-3)}}},
		{input: "a eq true", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: true}}},
		{input: "a eq null", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: nil}}},
		{input: "a eq 1e3", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: 1000.0}}},
		{input: "a eq 12abc", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Literal{Value: "12abc"}}},
		{input: "a eq @.b", want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: ref(Key{Name: "b"})}},
		{
			input: "a eq $.b",
			want: Comparison{Op: OpEquals, Left: ref(Key{Name: "a"}), Right: Ref{Path: Path{
				Absolute: true, Segments: []Segment{Key{Name: "b"}},
			}}},
		},
		{
			input: "users[?(@.age > 3)].name exists",
			want: Comparison{Op: OpExists, Left: ref(
				Key{Name: "users"},
				Filter{Predicate: Comparison{Op: OpGreater, Left: ref(Key{Name: "age"}), Right: Literal{Value: int64(3)}}},
				Key{Name: "name"},
			)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQuery(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuery_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{name: "empty", input: "   ", pos: 0},
		{name: "missing_operator", input: "a", pos: 1},
		{name: "missing_value", input: "a eq", pos: 4},
		{name: "unclosed_group", input: "(a eq 1", pos: 7},
		{name: "trailing_tokens", input: "a eq 1 b", pos: 7},
		{name: "dangling_and", input: "a eq 1 and", pos: 10},
		{name: "unexpected_paren", input: ")", pos: 0},
		{name: "unterminated_string", input: "a eq 'x", pos: 5},
		{name: "unbalanced_path", input: "a[0 eq 1", pos: 0},
		{name: "bad_path", input: "a..b eq 1", pos: 0},
		{name: "quantifier_unclosed", input: "any xs (@ eq 1", pos: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDSL)
			assert.NotErrorIs(t, err, ErrUnknownOperator)

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.pos, syntaxErr.Pos)
		})
	}
}

func TestParseQuery_UnknownOperator(t *testing.T) {
	_, err := ParseQuery("age resembles 3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDSL)
	assert.ErrorIs(t, err, ErrUnknownOperator)

	var opErr *UnknownOperatorError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "resembles", opErr.Name)
	assert.Equal(t, 4, opErr.Pos)
}

func TestParseQuery_StringRoundTrip(t *testing.T) {
	inputs := []string{
		"role equals admin and age greater 18",
		"not (a eq 1 or b ne 'x')",
		"any users.*.role equals admin",
		"all users[*] (role eq admin and (a exists or b exists))",
		"a eq $.b and c eq @.d",
		"name matches '^A\\\\d' or name eq 'it\\'s'",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			n, err := ParseQuery(input)
			require.NoError(t, err)

			again, err := ParseQuery(n.String())
			require.NoError(t, err, n.String())
			assert.Equal(t, n, again)
		})
	}
}
