// Package dotpath addresses and queries nested document trees.
//
// A path such as users[?(@.age > 30)].name is parsed into a Path of
// Segments and evaluated against a document, producing every matching
// value together with its concrete Location. Predicates combine
// comparisons with and, or, not and the any/all quantifiers. Segment kinds,
// their syntax and comparison operators live in a Registry, so callers can
// add their own.
//
// Evaluation is total: a path that does not exist in a document selects
// nothing, and a comparison between values of incompatible types is false.
package dotpath

// Select evaluates p against doc with the default registry.
func Select(p Path, doc any) (Results, error) {
	return NewEvaluator(nil).Select(p, doc)
}

// Match evaluates n against doc with the default registry.
func Match(n Node, doc any) (bool, error) {
	return NewEvaluator(nil).Match(n, doc)
}

// Find parses path and returns every match in doc.
func Find(path string, doc any) (Results, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return Select(p, doc)
}

// FindAll parses path and returns every matched value in doc.
func FindAll(path string, doc any) ([]any, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return NewEvaluator(nil).GetAll(p, doc)
}

// Get parses path and returns the first matched value in doc.
func Get(path string, doc any) (any, bool, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, false, err
	}
	return NewEvaluator(nil).GetFirst(p, doc)
}
