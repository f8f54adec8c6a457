// Package collection filters streams of documents with dotpath predicates,
// keeping their original order.
package collection

import (
	"iter"
	"slices"

	"github.com/jacoelho/dq/internal/dotpath"
)

type step struct {
	node dotpath.Node
	keep bool
}

// QuerySet is a lazily evaluated view over a document stream. Filter and
// Exclude return new sets; the receiver is never modified.
type QuerySet struct {
	ev    *dotpath.Evaluator
	docs  iter.Seq2[any, error]
	steps []step
}

// New wraps a stream such as the one returned by document.Decode. A nil
// evaluator uses the default registry.
func New(docs iter.Seq2[any, error], ev *dotpath.Evaluator) *QuerySet {
	if ev == nil {
		ev = dotpath.NewEvaluator(nil)
	}
	return &QuerySet{ev: ev, docs: docs}
}

// FromSlice wraps docs.
func FromSlice(docs []any, ev *dotpath.Evaluator) *QuerySet {
	return New(func(yield func(any, error) bool) {
		for _, doc := range docs {
			if !yield(doc, nil) {
				return
			}
		}
	}, ev)
}

// Filter keeps the documents matching n.
func (q *QuerySet) Filter(n dotpath.Node) *QuerySet {
	return q.with(step{node: n, keep: true})
}

// Exclude drops the documents matching n.
func (q *QuerySet) Exclude(n dotpath.Node) *QuerySet {
	return q.with(step{node: n, keep: false})
}

func (q *QuerySet) with(s step) *QuerySet {
	steps := append(slices.Clip(q.steps), s)
	return &QuerySet{ev: q.ev, docs: q.docs, steps: steps}
}

// All yields the selected documents. Iteration stops after the first error.
func (q *QuerySet) All() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for doc, err := range q.docs {
			if err != nil {
				yield(nil, err)
				return
			}

			ok, err := q.selected(doc)
			if err != nil {
				yield(nil, err)
				return
			}
			if ok && !yield(doc, nil) {
				return
			}
		}
	}
}

func (q *QuerySet) selected(doc any) (bool, error) {
	for _, s := range q.steps {
		matched, err := q.ev.Match(s.node, doc)
		if err != nil {
			return false, err
		}
		if matched != s.keep {
			return false, nil
		}
	}
	return true, nil
}

// Collect returns every selected document.
func (q *QuerySet) Collect() ([]any, error) {
	var out []any
	for doc, err := range q.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// Count returns the number of selected documents.
func (q *QuerySet) Count() (int, error) {
	n := 0
	for _, err := range q.All() {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// First returns the first selected document without reading further.
func (q *QuerySet) First() (any, bool, error) {
	for doc, err := range q.All() {
		if err != nil {
			return nil, false, err
		}
		return doc, true, nil
	}
	return nil, false, nil
}
