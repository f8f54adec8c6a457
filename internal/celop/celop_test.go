package celop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/dotpath"
)

const ordersJSON = `{
  "orders": [
    {"id": "a1", "total": 12.5, "tags": ["gift"], "customer": {"age": 34}},
    {"id": "b2", "total": 80, "tags": [], "customer": {"age": 17}},
    {"id": "c3", "total": 7, "tags": ["gift", "rush"]}
  ]
}`

func decode(t *testing.T, raw string) any {
	t.Helper()
	doc, err := document.DecodeJSON([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestEngine_Eval(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	tests := []struct {
		name  string
		expr  string
		value any
		want  bool
	}{
		{name: "integer comparison", expr: "value > 18", value: int64(34), want: true},
		{name: "mixed numeric comparison", expr: "value > 10", value: 12.5, want: true},
		{name: "string function", expr: "value.startsWith('ab')", value: "abc", want: true},
		{name: "list size", expr: "size(value) == 2", value: []any{"x", "y"}, want: true},
		{name: "ordered mapping field", expr: "value.age < 18", value: decode(t, `{"age": 17}`), want: true},
		{name: "json number", expr: "value == 80", value: decode(t, `80`), want: true},
		{name: "false result", expr: "value == 'x'", value: "y", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Eval(tt.expr, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_EvalErrors(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, err = e.Eval("value >", 1)
	require.ErrorIs(t, err, ErrCompile)

	_, err = e.Eval("value + 1", int64(1))
	require.ErrorIs(t, err, ErrNotBool)

	_, err = e.Eval("value.missing == 1", map[string]any{})
	require.Error(t, err)
}

func TestEngine_CompileCaches(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	first, err := e.Compile("value > 1")
	require.NoError(t, err)
	second, err := e.Compile("value > 1")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestOperator(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	op := e.Operator()

	assert.Equal(t, Name, op.Name)
	assert.False(t, op.Unary)
	assert.True(t, op.Fn(int64(3), "value == 3"))
	assert.False(t, op.Fn(dotpath.Missing, "true"))
	assert.False(t, op.Fn(int64(3), int64(3)))
	assert.False(t, op.Fn(int64(3), "value >"))
}

func TestRegister_Query(t *testing.T) {
	reg := dotpath.NewRegistry()
	_, err := Register(reg)
	require.NoError(t, err)

	doc := decode(t, ordersJSON)
	ev := dotpath.NewEvaluator(reg)

	tests := []struct {
		query string
		want  bool
	}{
		{query: "orders[0].total cel 'value > 10'", want: true},
		{query: "all orders.*.total cel 'value > 5'", want: true},
		{query: "any orders.* (customer.age cel 'value < 18')", want: true},
		{query: "all orders.* (tags cel 'size(value) > 0')", want: false},
		{query: "orders[9].total cel 'true'", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			n, err := reg.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ev.Match(n, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegister_Filter(t *testing.T) {
	reg := dotpath.NewRegistry()
	_, err := Register(reg)
	require.NoError(t, err)

	p, err := reg.Parse("orders[?(@.total cel 'value >= 10')].id")
	require.NoError(t, err)

	got, err := dotpath.NewEvaluator(reg).GetAll(p, decode(t, ordersJSON))
	require.NoError(t, err)
	assert.Equal(t, []any{"a1", "b2"}, got)

	// the default registry does not know the operator
	_, err = dotpath.Parse("orders[?(@.total cel 'value >= 10')]")
	require.ErrorIs(t, err, dotpath.ErrUnknownOperator)
}
