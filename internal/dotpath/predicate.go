package dotpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/dq/internal/document"
)

type missing struct{}

func (missing) String() string { return "<missing>" }

// Missing stands in for an operand whose path matched nothing.
var Missing any = missing{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	return v == Missing
}

// Node is a predicate tree node.
type Node interface {
	String() string
	node()
}

// Operand is one side of a Comparison.
type Operand interface {
	String() string
	operand()
}

// Literal is a constant operand.
type Literal struct {
	Value any
}

func (Literal) operand() {}

func (o Literal) String() string {
	switch v := o.Value.(type) {
	case nil:
		return "null"
	case string:
		return quoteString(v)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}
	if data, err := document.MarshalJSON(o.Value); err == nil {
		return string(data)
	}
	return fmt.Sprint(o.Value)
}

// Ref is an operand read from the document: relative to the node under test,
// or to the document root when the path is absolute.
type Ref struct {
	Path Path
}

func (Ref) operand() {}

func (o Ref) String() string {
	if o.Path.Absolute {
		return o.Path.String()
	}
	s := o.Path.String()
	if s == "" {
		return "@"
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		return "@" + s
	}
	return "@." + s
}

// Comparison applies a registered operator to two operands. Right is nil for
// unary operators such as exists. When Left references a path that can
// select several values, the comparison holds if it holds for any of them.
// Operand references otherwise resolve to their first value.
type Comparison struct {
	Op    string
	Left  Operand
	Right Operand
}

func (Comparison) node() {}

func (n Comparison) String() string {
	var b strings.Builder
	if n.Left == nil {
		b.WriteString("@")
	} else {
		b.WriteString(n.Left.String())
	}
	b.WriteByte(' ')
	b.WriteString(n.Op)
	if n.Right != nil {
		b.WriteByte(' ')
		b.WriteString(n.Right.String())
	}
	return b.String()
}

// And holds when every child holds. An empty And holds.
type And struct {
	Children []Node
}

func (And) node() {}

func (n And) String() string { return joinNodes(n.Children, " and ", "true") }

// Or holds when any child holds. An empty Or does not hold.
type Or struct {
	Children []Node
}

func (Or) node() {}

func (n Or) String() string { return joinNodes(n.Children, " or ", "false") }

// Not negates its child.
type Not struct {
	Child Node
}

func (Not) node() {}

func (n Not) String() string {
	if n.Child == nil {
		return "not ()"
	}
	return "not " + n.Child.String()
}

// QuantifierKind selects how a Quantifier combines the values of its path.
type QuantifierKind string

const (
	QuantifierAny QuantifierKind = "any"
	QuantifierAll QuantifierKind = "all"
)

// Quantifier evaluates Inner against every value selected by Path, with the
// current node bound to each value in turn. ANY over no values is false and
// ALL over no values is true.
type Quantifier struct {
	Kind  QuantifierKind
	Path  Path
	Inner Node
}

func (Quantifier) node() {}

func (n Quantifier) String() string {
	path := Ref{Path: n.Path}.String()
	inner := ""
	if n.Inner != nil {
		inner = n.Inner.String()
	}
	return string(n.Kind) + " " + path + " (" + inner + ")"
}

func joinNodes(nodes []Node, sep, empty string) string {
	if len(nodes) == 0 {
		return empty
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		if n == nil {
			parts[i] = "()"
			continue
		}
		parts[i] = n.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
