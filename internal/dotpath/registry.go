package dotpath

import (
	"slices"
	"sync"
)

// SegmentFunc maps the frontier of results produced so far to the results of
// applying seg to each of them, preserving frontier order.
type SegmentFunc func(ev *Evaluator, seg Segment, frontier Results) (Results, error)

// SyntaxFunc recognizes a segment starting at byte offset pos of the text
// being parsed. It returns a nil Segment when the text at pos is not its
// syntax, so the next recognizer can try.
type SyntaxFunc func(p *Parser, pos int) (seg Segment, next int, err error)

// OperatorFunc compares a resolved left operand with a resolved right
// operand. Either side may be Missing.
type OperatorFunc func(left, right any) bool

// Operator is a named comparison usable in predicates.
type Operator struct {
	Name string
	// Unary operators take no right operand in the query language.
	Unary bool
	Fn    OperatorFunc
}

type syntax struct {
	name string
	fn   SyntaxFunc
}

// Registry holds the segment evaluators, segment syntaxes and operators used
// to parse and evaluate paths and predicates. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	segments map[string]SegmentFunc
	// overridden marks kinds whose built-in evaluator was replaced.
	overridden map[string]bool
	syntaxes   []syntax // in registration order; the last one has priority
	operators  map[string]Operator
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level helpers.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry returns an isolated registry populated with the core segment
// kinds, their syntax and the built-in operators.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	registerCoreSegments(r)
	registerCoreSyntax(r)
	registerBuiltinOperators(r)
	return r
}

// NewEmptyRegistry returns a registry with nothing registered.
func NewEmptyRegistry() *Registry {
	return &Registry{
		segments:   make(map[string]SegmentFunc),
		overridden: make(map[string]bool),
		operators:  make(map[string]Operator),
	}
}

// RegisterSegment binds kind to fn, replacing any previous evaluator.
func (r *Registry) RegisterSegment(kind string, fn SegmentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segments[kind] = fn
	r.overridden[kind] = true
}

// RegisterSyntax adds a segment recognizer that is tried before every
// recognizer registered earlier. Registering an existing name replaces it
// and gives it the highest priority.
func (r *Registry) RegisterSyntax(name string, fn SyntaxFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syntaxes = slices.DeleteFunc(r.syntaxes, func(s syntax) bool { return s.name == name })
	r.syntaxes = append(r.syntaxes, syntax{name: name, fn: fn})
}

// RegisterOperator binds op under its name and every alias, replacing any
// operator previously bound to those names.
func (r *Registry) RegisterOperator(op Operator, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[op.Name] = op
	for _, alias := range aliases {
		r.operators[alias] = op
	}
}

// Segment returns the evaluator bound to kind.
func (r *Registry) Segment(kind string) (SegmentFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.segments[kind]
	return fn, ok
}

// Operator returns the operator bound to name or alias.
func (r *Registry) Operator(name string) (Operator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operators[name]
	return op, ok
}

// Operators returns the sorted names and aliases of every registered operator.
func (r *Registry) Operators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.operators))
	for name := range r.operators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewEmptyRegistry()
	for k, v := range r.segments {
		c.segments[k] = v
	}
	for k, v := range r.overridden {
		c.overridden[k] = v
	}
	for k, v := range r.operators {
		c.operators[k] = v
	}
	c.syntaxes = slices.Clone(r.syntaxes)
	return c
}

// recognizers returns the syntax recognizers in the order they are tried.
func (r *Registry) recognizers() []SyntaxFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fns := make([]SyntaxFunc, 0, len(r.syntaxes))
	for i := len(r.syntaxes) - 1; i >= 0; i-- {
		fns = append(fns, r.syntaxes[i].fn)
	}
	return fns
}
