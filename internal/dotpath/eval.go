package dotpath

import (
	"fmt"
	"strconv"

	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/stack"
)

// Evaluator runs paths and predicates against documents using the segment
// evaluators and operators of a Registry. Evaluation never fails because a
// path is absent or a value has the wrong type; errors only report kinds or
// operators missing from the registry.
type Evaluator struct {
	reg   *Registry
	root  any
	bound bool
}

// NewEvaluator returns an evaluator bound to reg, or to the default registry when reg is nil.
func NewEvaluator(reg *Registry) *Evaluator {
	if reg == nil {
		reg = Default()
	}
	return &Evaluator{reg: reg}
}

// Registry returns the registry the evaluator resolves kinds and operators with.
func (e *Evaluator) Registry() *Registry { return e.reg }

// Root returns the document currently being evaluated, for segment
// evaluators that need it.
func (e *Evaluator) Root() any { return e.root }

func (e *Evaluator) scoped(doc any) *Evaluator {
	return &Evaluator{reg: e.reg, root: doc, bound: true}
}

// Select evaluates p against doc and returns every match in traversal order.
func (e *Evaluator) Select(p Path, doc any) (Results, error) {
	return e.scoped(doc).SelectAt(p, doc)
}

// SelectAt evaluates p starting at current. Absolute paths start at the root
// of the document the evaluator is bound to, or at current when the
// evaluator is not bound to a document.
func (e *Evaluator) SelectAt(p Path, current any) (Results, error) {
	if !e.bound {
		return e.scoped(current).SelectAt(p, current)
	}

	start := current
	if p.Absolute {
		start = e.root
	}

	frontier := Results{{Location: Location{}, Value: start}}
	for _, seg := range p.Segments {
		if seg == nil {
			return nil, &UnknownSegmentKindError{}
		}
		fn, ok := e.reg.Segment(seg.Kind())
		if !ok {
			return nil, &UnknownSegmentKindError{Kind: seg.Kind()}
		}
		if len(frontier) == 0 {
			continue
		}

		var err error
		if frontier, err = fn(e, seg, frontier); err != nil {
			return nil, err
		}
	}
	return frontier, nil
}

// GetFirst returns the first value selected by p.
func (e *Evaluator) GetFirst(p Path, doc any) (any, bool, error) {
	return e.scoped(doc).firstAt(p, doc)
}

func (e *Evaluator) firstAt(p Path, current any) (any, bool, error) {
	if p.IsExact() && e.exactKinds() {
		start := current
		if p.Absolute {
			start = e.root
		}
		v, ok := walkExact(p, start)
		return v, ok, nil
	}

	results, err := e.SelectAt(p, current)
	if err != nil || len(results) == 0 {
		return nil, false, err
	}
	return results[0].Value, true, nil
}

// exactKinds reports whether key and index still use the built-in evaluators,
// which is what walkExact reproduces.
func (e *Evaluator) exactKinds() bool {
	e.reg.mu.RLock()
	defer e.reg.mu.RUnlock()
	return !e.reg.overridden[KindKey] && !e.reg.overridden[KindIndex]
}

// GetAll returns every value selected by p.
func (e *Evaluator) GetAll(p Path, doc any) ([]any, error) {
	results, err := e.Select(p, doc)
	if err != nil {
		return nil, err
	}
	return results.Values(), nil
}

// Exists reports whether p selects at least one value.
func (e *Evaluator) Exists(p Path, doc any) (bool, error) {
	_, ok, err := e.GetFirst(p, doc)
	return ok, err
}

func walkExact(p Path, v any) (any, bool) {
	for _, seg := range p.Segments {
		var ok bool
		switch s := seg.(type) {
		case Key:
			v, _, ok = lookupKey(v, s.Name)
		case Index:
			v, _, ok = lookupIndex(v, s.N)
		}
		if !ok {
			return nil, false
		}
	}
	return v, true
}

func registerCoreSegments(r *Registry) {
	r.segments[KindKey] = evalKey
	r.segments[KindIndex] = evalIndex
	r.segments[KindWildcard] = evalWildcard
	r.segments[KindSlice] = evalSlice
	r.segments[KindDescent] = evalDescent
	r.segments[KindFilter] = evalFilter
	r.segments[KindRegexKey] = evalRegexKey
	r.segments[KindJSONPath] = evalJSONPath
}

func segmentMismatch(kind string, seg Segment) error {
	return fmt.Errorf("dotpath: %s evaluator cannot handle %T", kind, seg)
}

func evalKey(_ *Evaluator, seg Segment, frontier Results) (Results, error) {
	s, ok := seg.(Key)
	if !ok {
		return nil, segmentMismatch(KindKey, seg)
	}

	out := make(Results, 0, len(frontier))
	for _, r := range frontier {
		if v, elem, ok := lookupKey(r.Value, s.Name); ok {
			out = append(out, Result{Location: r.Location.with(elem), Value: v})
		}
	}
	return out, nil
}

// lookupKey reads name from a mapping, or from a sequence when name is an integer.
func lookupKey(v any, name string) (any, Elem, bool) {
	if value, ok := document.Lookup(v, name); ok {
		return value, NameElem(name), true
	}
	if _, isSeq := v.([]any); isSeq {
		if i, ok := numericName(name); ok {
			return lookupIndex(v, i)
		}
	}
	return nil, Elem{}, false
}

func lookupIndex(v any, i int) (any, Elem, bool) {
	seq, ok := v.([]any)
	if !ok {
		return nil, Elem{}, false
	}
	idx, ok := resolveIndex(i, len(seq))
	if !ok {
		return nil, Elem{}, false
	}
	return seq[idx], IndexElem(idx), true
}

func numericName(name string) (int, bool) {
	digits := name
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(name)
	return i, err == nil
}

func resolveIndex(i, n int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

func evalIndex(_ *Evaluator, seg Segment, frontier Results) (Results, error) {
	s, ok := seg.(Index)
	if !ok {
		return nil, segmentMismatch(KindIndex, seg)
	}

	out := make(Results, 0, len(frontier))
	for _, r := range frontier {
		if v, elem, ok := lookupIndex(r.Value, s.N); ok {
			out = append(out, Result{Location: r.Location.with(elem), Value: v})
		}
	}
	return out, nil
}

func evalWildcard(_ *Evaluator, _ Segment, frontier Results) (Results, error) {
	var out Results
	for _, r := range frontier {
		out = append(out, children(r)...)
	}
	return out, nil
}

// children lists the direct children of a container result in traversal order.
func children(r Result) Results {
	if seq, ok := r.Value.([]any); ok {
		out := make(Results, len(seq))
		for i, v := range seq {
			out[i] = Result{Location: r.Location.with(IndexElem(i)), Value: v}
		}
		return out
	}

	entries, ok := document.Entries(r.Value)
	if !ok {
		return nil
	}
	out := make(Results, len(entries))
	for i, entry := range entries {
		out[i] = Result{Location: r.Location.with(NameElem(entry.Key)), Value: entry.Value}
	}
	return out
}

func evalSlice(_ *Evaluator, seg Segment, frontier Results) (Results, error) {
	s, ok := seg.(Slice)
	if !ok {
		return nil, segmentMismatch(KindSlice, seg)
	}

	var out Results
	for _, r := range frontier {
		seq, ok := r.Value.([]any)
		if !ok {
			continue
		}
		for _, i := range sliceIndices(s, len(seq)) {
			out = append(out, Result{Location: r.Location.with(IndexElem(i)), Value: seq[i]})
		}
	}
	return out, nil
}

// sliceIndices applies Python slicing: negative bounds count from the end and
// out-of-range bounds are clipped.
func sliceIndices(s Slice, n int) []int {
	step := 1
	if s.Step != nil {
		step = *s.Step
	}

	var indices []int
	switch {
	case step > 0:
		start := clampBound(s.Start, n, 0, 0, n)
		stop := clampBound(s.Stop, n, n, 0, n)
		for i := start; i < stop; i += step {
			indices = append(indices, i)
		}
	case step < 0:
		start := clampBound(s.Start, n, n-1, -1, n-1)
		stop := clampBound(s.Stop, n, -1, -1, n-1)
		for i := start; i > stop; i += step {
			indices = append(indices, i)
		}
	}
	return indices
}

func clampBound(bound *int, n, def, lo, hi int) int {
	if bound == nil {
		return def
	}
	v := *bound
	if v < 0 {
		v += n
	}
	return min(max(v, lo), hi)
}

// evalDescent emits each frontier node followed by all its descendants,
// parents before children, siblings in document order.
func evalDescent(_ *Evaluator, _ Segment, frontier Results) (Results, error) {
	var out Results
	pending := stack.New[Result]()
	for _, r := range frontier {
		pending.Push(r)
		for !pending.IsEmpty() {
			current, _ := pending.Pop()
			out = append(out, current)
			pending.PushReversed(children(current)...)
		}
	}
	return out, nil
}

func evalFilter(ev *Evaluator, seg Segment, frontier Results) (Results, error) {
	s, ok := seg.(Filter)
	if !ok {
		return nil, segmentMismatch(KindFilter, seg)
	}

	var out Results
	for _, r := range frontier {
		for _, child := range children(r) {
			matched, err := ev.MatchAt(s.Predicate, child.Value)
			if err != nil {
				return nil, err
			}
			if matched {
				out = append(out, child)
			}
		}
	}
	return out, nil
}

func evalRegexKey(_ *Evaluator, seg Segment, frontier Results) (Results, error) {
	s, ok := seg.(RegexKey)
	if !ok {
		return nil, segmentMismatch(KindRegexKey, seg)
	}
	re, err := s.compiled()
	if err != nil {
		// an invalid pattern built outside the parser matches nothing
		return nil, nil
	}

	var out Results
	for _, r := range frontier {
		entries, ok := document.Entries(r.Value)
		if !ok {
			continue
		}
		for _, entry := range entries {
			if re.MatchString(entry.Key) {
				out = append(out, Result{Location: r.Location.with(NameElem(entry.Key)), Value: entry.Value})
			}
		}
	}
	return out, nil
}
