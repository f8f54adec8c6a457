package dotpath

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates a malformed path expression.
	ErrParse = errors.New("dotpath: parse error")

	// ErrDSL indicates a malformed or unrecognised textual query.
	ErrDSL = errors.New("dotpath: query error")

	// ErrUnknownSegmentKind indicates a segment kind with no registered evaluator.
	ErrUnknownSegmentKind = errors.New("dotpath: unknown segment kind")

	// ErrUnknownOperator indicates an operator name with no registered implementation.
	ErrUnknownOperator = errors.New("dotpath: unknown operator")

	// ErrInvalidNode indicates a predicate tree that cannot be evaluated or decoded.
	ErrInvalidNode = errors.New("dotpath: invalid predicate node")
)

// ParseError reports a path expression that violates the grammar.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
	Err   error // underlying cause, e.g. a query error inside a filter
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("dotpath: parse error at position %d in %q: %s", e.Pos, e.Input, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// SyntaxError reports a query whose structure is malformed.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
	Err   error
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("dotpath: query syntax error at position %d in %q: %s", e.Pos, e.Input, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDSL}
	}
	return []error{ErrDSL, e.Err}
}

// UnknownOperatorError reports an operator name missing from the registry.
// Pos is the offset in the query text, or -1 when the operator was met while
// evaluating a tree built directly in code.
type UnknownOperatorError struct {
	Name string
	Pos  int
}

func (e *UnknownOperatorError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("dotpath: unknown operator %q", e.Name)
	}
	return fmt.Sprintf("dotpath: unknown operator %q at position %d", e.Name, e.Pos)
}

// Is matches ErrUnknownOperator always, and ErrDSL when the operator came from query text.
func (e *UnknownOperatorError) Is(target error) bool {
	return target == ErrUnknownOperator || (target == ErrDSL && e.Pos >= 0)
}

// UnknownSegmentKindError reports a segment whose kind has no registered evaluator.
type UnknownSegmentKindError struct {
	Kind string
}

func (e *UnknownSegmentKindError) Error() string {
	return fmt.Sprintf("dotpath: unknown segment kind %q", e.Kind)
}

func (e *UnknownSegmentKindError) Is(target error) bool {
	return target == ErrUnknownSegmentKind
}
