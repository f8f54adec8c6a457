package dotpath

// Builder assembles predicates in code:
//
//	dotpath.Q("users.*.age").All().Greater(18)
//	dotpath.AllOf(dotpath.Q("active").Equals(true), dotpath.Q("tags").Contains("go"))
type Builder struct {
	path Path
	kind QuantifierKind
}

// Q starts a predicate on the values selected by path. Without Any or All
// a path selecting several values behaves as Any. It panics when path does
// not parse, like regexp.MustCompile.
func Q(path string) Builder {
	return Builder{path: MustParse(path)}
}

// On starts a predicate on an already parsed path.
func On(path Path) Builder {
	return Builder{path: path}
}

// Any makes the predicate hold when at least one selected value satisfies it.
func (b Builder) Any() Builder {
	b.kind = QuantifierAny
	return b
}

// All makes the predicate hold when every selected value satisfies it.
func (b Builder) All() Builder {
	b.kind = QuantifierAll
	return b
}

// Equals holds when a selected value equals v.
func (b Builder) Equals(v any) Node { return b.Op(OpEquals, v) }

// NotEquals holds when a selected value differs from v.
func (b Builder) NotEquals(v any) Node { return b.Op(OpNotEquals, v) }

// Greater holds when a selected value is greater than v.
func (b Builder) Greater(v any) Node { return b.Op(OpGreater, v) }

// GreaterEqual holds when a selected value is greater than or equal to v.
func (b Builder) GreaterEqual(v any) Node { return b.Op(OpGreaterEqual, v) }

// Less holds when a selected value is less than v.
func (b Builder) Less(v any) Node { return b.Op(OpLess, v) }

// LessEqual holds when a selected value is less than or equal to v.
func (b Builder) LessEqual(v any) Node { return b.Op(OpLessEqual, v) }

// Contains holds when a selected string, sequence or mapping contains v.
func (b Builder) Contains(v any) Node { return b.Op(OpContains, v) }

// Matches holds when a selected scalar matches pattern from its start.
func (b Builder) Matches(pattern string) Node { return b.Op(OpMatches, pattern) }

// StartsWith holds when a selected string starts with prefix.
func (b Builder) StartsWith(prefix string) Node { return b.Op(OpStartsWith, prefix) }

// EndsWith holds when a selected string ends with suffix.
func (b Builder) EndsWith(suffix string) Node { return b.Op(OpEndsWith, suffix) }

// TypeIs holds when a selected value has the named JSON type.
func (b Builder) TypeIs(name string) Node { return b.Op(OpTypeIs, name) }

// Exists holds when the path selects anything.
func (b Builder) Exists() Node {
	return b.comparison(Comparison{Op: OpExists})
}

// Op applies any registered operator to the selected values and v. A v of
// type Path or Ref compares against another part of the document.
func (b Builder) Op(name string, v any) Node {
	var right Operand
	switch v := v.(type) {
	case Ref:
		right = v
	case Path:
		right = Ref{Path: v}
	default:
		right = Literal{Value: v}
	}
	return b.comparison(Comparison{Op: name, Right: right})
}

func (b Builder) comparison(cmp Comparison) Node {
	if b.kind == "" {
		cmp.Left = Ref{Path: b.path}
		return cmp
	}
	cmp.Left = Ref{}
	return Quantifier{Kind: b.kind, Path: b.path, Inner: cmp}
}

// Where quantifies an arbitrary predicate over the selected values. Without
// Any or All it behaves as Any.
func (b Builder) Where(inner Node) Node {
	kind := b.kind
	if kind == "" {
		kind = QuantifierAny
	}
	return Quantifier{Kind: kind, Path: b.path, Inner: inner}
}

// AllOf holds when every node holds.
func AllOf(nodes ...Node) Node { return And{Children: nodes} }

// AnyOf holds when at least one node holds.
func AnyOf(nodes ...Node) Node { return Or{Children: nodes} }

// Negate inverts n.
func Negate(n Node) Node { return Not{Child: n} }
