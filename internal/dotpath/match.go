package dotpath

import "fmt"

// Match reports whether n holds for doc, with doc as both the current node
// and the root.
func (e *Evaluator) Match(n Node, doc any) (bool, error) {
	return e.scoped(doc).MatchAt(n, doc)
}

// MatchAt reports whether n holds with current bound to the node under test.
// An evaluator not bound to a document treats current as the root.
func (e *Evaluator) MatchAt(n Node, current any) (bool, error) {
	if !e.bound {
		return e.scoped(current).MatchAt(n, current)
	}

	switch n := n.(type) {
	case Comparison:
		return e.compare(n, current)
	case And:
		for _, child := range n.Children {
			ok, err := e.MatchAt(child, current)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, child := range n.Children {
			ok, err := e.MatchAt(child, current)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case Not:
		ok, err := e.MatchAt(n.Child, current)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case Quantifier:
		return e.quantify(n, current)
	case nil:
		return false, fmt.Errorf("%w: nil node", ErrInvalidNode)
	default:
		return false, fmt.Errorf("%w: %T", ErrInvalidNode, n)
	}
}

func (e *Evaluator) compare(n Comparison, current any) (bool, error) {
	op, ok := e.reg.Operator(n.Op)
	if !ok {
		return false, &UnknownOperatorError{Name: n.Op, Pos: -1}
	}

	right, err := e.resolve(n.Right, current)
	if err != nil {
		return false, err
	}
	lefts, err := e.leftValues(n.Left, current)
	if err != nil {
		return false, err
	}

	for _, left := range lefts {
		if op.Fn(left, right) {
			return true, nil
		}
	}
	return false, nil
}

// leftValues returns the values the left operand is tested with. A reference
// whose path can select several values holds when any of them does; when it
// selects nothing it is tested once as Missing.
func (e *Evaluator) leftValues(o Operand, current any) ([]any, error) {
	ref, ok := o.(Ref)
	if !ok || ref.Path.IsExact() {
		v, err := e.resolve(o, current)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}

	results, err := e.SelectAt(ref.Path, current)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []any{Missing}, nil
	}
	return results.Values(), nil
}

// resolve turns an operand into a value: a literal's value, or the first
// value a reference selects. Anything absent becomes Missing.
func (e *Evaluator) resolve(o Operand, current any) (any, error) {
	switch o := o.(type) {
	case Literal:
		return o.Value, nil
	case Ref:
		v, ok, err := e.firstAt(o.Path, current)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Missing, nil
		}
		return v, nil
	case nil:
		return Missing, nil
	default:
		return nil, fmt.Errorf("%w: operand %T", ErrInvalidNode, o)
	}
}

func (e *Evaluator) quantify(n Quantifier, current any) (bool, error) {
	if n.Kind != QuantifierAny && n.Kind != QuantifierAll {
		return false, fmt.Errorf("%w: quantifier %q", ErrInvalidNode, n.Kind)
	}

	results, err := e.SelectAt(n.Path, current)
	if err != nil {
		return false, err
	}

	for _, r := range results {
		ok, err := e.MatchAt(n.Inner, r.Value)
		if err != nil {
			return false, err
		}
		if n.Kind == QuantifierAny && ok {
			return true, nil
		}
		if n.Kind == QuantifierAll && !ok {
			return false, nil
		}
	}
	return n.Kind == QuantifierAll, nil
}
