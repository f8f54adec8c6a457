package dotpath

import (
	"encoding/json"
	"fmt"

	"github.com/jacoelho/dq/internal/document"
)

// Paths and predicates have a JSON form so they can be stored or exchanged
// without their textual syntax. Segments carry a "$type" discriminator
// naming their kind; predicate nodes carry "type".

type pathWire struct {
	Absolute bool           `json:"absolute,omitempty"`
	Segments []*segmentWire `json:"segments"`
}

type segmentWire struct {
	Type      string    `json:"$type"`
	Name      *string   `json:"name,omitempty"`
	Value     *int      `json:"value,omitempty"`
	Start     *int      `json:"start,omitempty"`
	Stop      *int      `json:"stop,omitempty"`
	Step      *int      `json:"step,omitempty"`
	Predicate *nodeWire `json:"predicate,omitempty"`
	Pattern   *string   `json:"pattern,omitempty"`
	Flags     string    `json:"flags,omitempty"`
	Query     string    `json:"query,omitempty"`
}

type nodeWire struct {
	Type     string       `json:"type"`
	Op       string       `json:"op,omitempty"`
	Left     *operandWire `json:"left,omitempty"`
	Right    *operandWire `json:"right,omitempty"`
	Children []*nodeWire  `json:"children,omitempty"`
	Child    *nodeWire    `json:"child,omitempty"`
	Kind     string       `json:"kind,omitempty"`
	Path     *pathWire    `json:"path,omitempty"`
	Inner    *nodeWire    `json:"inner,omitempty"`
}

type operandWire struct {
	Value json.RawMessage `json:"value,omitempty"`
	Path  *pathWire       `json:"path,omitempty"`
}

const (
	nodeComparison = "comparison"
	nodeAnd        = "and"
	nodeOr         = "or"
	nodeNot        = "not"
	nodeQuantifier = "quantifier"
)

// MarshalPath encodes p as JSON.
func MarshalPath(p Path) ([]byte, error) {
	w, err := encodePath(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalPath decodes a path produced by MarshalPath.
func UnmarshalPath(data []byte) (Path, error) {
	var w pathWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Path{}, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	return decodePath(&w)
}

// MarshalNode encodes a predicate tree as JSON.
func MarshalNode(n Node) ([]byte, error) {
	w, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalNode decodes a predicate tree produced by MarshalNode.
func UnmarshalNode(data []byte) (Node, error) {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	return decodeNode(&w)
}

func encodePath(p Path) (*pathWire, error) {
	w := &pathWire{Absolute: p.Absolute, Segments: make([]*segmentWire, 0, len(p.Segments))}
	for _, seg := range p.Segments {
		sw, err := encodeSegment(seg)
		if err != nil {
			return nil, err
		}
		w.Segments = append(w.Segments, sw)
	}
	return w, nil
}

func encodeSegment(seg Segment) (*segmentWire, error) {
	switch s := seg.(type) {
	case Key:
		return &segmentWire{Type: KindKey, Name: &s.Name}, nil
	case Index:
		return &segmentWire{Type: KindIndex, Value: &s.N}, nil
	case Wildcard:
		return &segmentWire{Type: KindWildcard}, nil
	case Descent:
		return &segmentWire{Type: KindDescent}, nil
	case Slice:
		return &segmentWire{Type: KindSlice, Start: s.Start, Stop: s.Stop, Step: s.Step}, nil
	case Filter:
		pred, err := encodeNode(s.Predicate)
		if err != nil {
			return nil, err
		}
		return &segmentWire{Type: KindFilter, Predicate: pred}, nil
	case RegexKey:
		return &segmentWire{Type: KindRegexKey, Pattern: &s.Pattern, Flags: s.Flags}, nil
	case JSONPath:
		return &segmentWire{Type: KindJSONPath, Query: s.Query}, nil
	case nil:
		return nil, &UnknownSegmentKindError{}
	default:
		return nil, &UnknownSegmentKindError{Kind: seg.Kind()}
	}
}

func encodeNode(n Node) (*nodeWire, error) {
	switch n := n.(type) {
	case Comparison:
		left, err := encodeOperand(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := encodeOperand(n.Right)
		if err != nil {
			return nil, err
		}
		return &nodeWire{Type: nodeComparison, Op: n.Op, Left: left, Right: right}, nil
	case And:
		children, err := encodeNodes(n.Children)
		return &nodeWire{Type: nodeAnd, Children: children}, err
	case Or:
		children, err := encodeNodes(n.Children)
		return &nodeWire{Type: nodeOr, Children: children}, err
	case Not:
		child, err := encodeNode(n.Child)
		if err != nil {
			return nil, err
		}
		return &nodeWire{Type: nodeNot, Child: child}, nil
	case Quantifier:
		path, err := encodePath(n.Path)
		if err != nil {
			return nil, err
		}
		inner, err := encodeNode(n.Inner)
		if err != nil {
			return nil, err
		}
		return &nodeWire{Type: nodeQuantifier, Kind: string(n.Kind), Path: path, Inner: inner}, nil
	case nil:
		return nil, fmt.Errorf("%w: nil node", ErrInvalidNode)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidNode, n)
	}
}

func encodeNodes(nodes []Node) ([]*nodeWire, error) {
	out := make([]*nodeWire, 0, len(nodes))
	for _, n := range nodes {
		w, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func encodeOperand(o Operand) (*operandWire, error) {
	switch o := o.(type) {
	case nil:
		return nil, nil
	case Literal:
		data, err := document.MarshalJSON(o.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: literal: %v", ErrInvalidNode, err)
		}
		return &operandWire{Value: data}, nil
	case Ref:
		path, err := encodePath(o.Path)
		if err != nil {
			return nil, err
		}
		return &operandWire{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: operand %T", ErrInvalidNode, o)
	}
}

func decodePath(w *pathWire) (Path, error) {
	p := Path{Absolute: w.Absolute}
	for _, sw := range w.Segments {
		seg, err := decodeSegment(sw)
		if err != nil {
			return Path{}, err
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}

func decodeSegment(w *segmentWire) (Segment, error) {
	if w == nil {
		return nil, &UnknownSegmentKindError{}
	}

	switch w.Type {
	case KindKey:
		if w.Name == nil {
			return nil, fmt.Errorf("%w: key segment without name", ErrInvalidNode)
		}
		return Key{Name: *w.Name}, nil
	case KindIndex:
		if w.Value == nil {
			return nil, fmt.Errorf("%w: index segment without value", ErrInvalidNode)
		}
		return Index{N: *w.Value}, nil
	case KindWildcard:
		return Wildcard{}, nil
	case KindDescent:
		return Descent{}, nil
	case KindSlice:
		if w.Step != nil && *w.Step == 0 {
			return nil, fmt.Errorf("%w: slice step cannot be zero", ErrInvalidNode)
		}
		return Slice{Start: w.Start, Stop: w.Stop, Step: w.Step}, nil
	case KindFilter:
		if w.Predicate == nil {
			return nil, fmt.Errorf("%w: filter segment without predicate", ErrInvalidNode)
		}
		pred, err := decodeNode(w.Predicate)
		if err != nil {
			return nil, err
		}
		return Filter{Predicate: pred}, nil
	case KindRegexKey:
		if w.Pattern == nil {
			return nil, fmt.Errorf("%w: regex_key segment without pattern", ErrInvalidNode)
		}
		seg, err := NewRegexKey(*w.Pattern, w.Flags)
		if err != nil {
			return nil, fmt.Errorf("%w: regex_key: %v", ErrInvalidNode, err)
		}
		return seg, nil
	case KindJSONPath:
		seg, err := NewJSONPath(w.Query)
		if err != nil {
			return nil, fmt.Errorf("%w: jsonpath: %v", ErrInvalidNode, err)
		}
		return seg, nil
	default:
		return nil, &UnknownSegmentKindError{Kind: w.Type}
	}
}

func decodeNode(w *nodeWire) (Node, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: missing node", ErrInvalidNode)
	}

	switch w.Type {
	case nodeComparison:
		if w.Op == "" || w.Left == nil {
			return nil, fmt.Errorf("%w: comparison needs op and left", ErrInvalidNode)
		}
		left, err := decodeOperand(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeOperand(w.Right)
		if err != nil {
			return nil, err
		}
		return Comparison{Op: w.Op, Left: left, Right: right}, nil
	case nodeAnd:
		children, err := decodeNodes(w.Children)
		return And{Children: children}, err
	case nodeOr:
		children, err := decodeNodes(w.Children)
		return Or{Children: children}, err
	case nodeNot:
		child, err := decodeNode(w.Child)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	case nodeQuantifier:
		kind := QuantifierKind(w.Kind)
		if kind != QuantifierAny && kind != QuantifierAll {
			return nil, fmt.Errorf("%w: quantifier %q", ErrInvalidNode, w.Kind)
		}
		var path Path
		if w.Path != nil {
			var err error
			if path, err = decodePath(w.Path); err != nil {
				return nil, err
			}
		}
		inner, err := decodeNode(w.Inner)
		if err != nil {
			return nil, err
		}
		return Quantifier{Kind: kind, Path: path, Inner: inner}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalidNode, w.Type)
	}
}

func decodeNodes(ws []*nodeWire) ([]Node, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	out := make([]Node, 0, len(ws))
	for _, w := range ws {
		n, err := decodeNode(w)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeOperand(w *operandWire) (Operand, error) {
	if w == nil {
		return nil, nil
	}
	if w.Path != nil {
		path, err := decodePath(w.Path)
		if err != nil {
			return nil, err
		}
		return Ref{Path: path}, nil
	}
	if len(w.Value) == 0 {
		return Literal{}, nil
	}
	v, err := document.DecodeJSON(w.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: literal: %v", ErrInvalidNode, err)
	}
	return Literal{Value: v}, nil
}
