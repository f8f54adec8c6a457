// Package celop adds a "cel" comparison operator whose right operand is a
// CEL expression evaluated with the left operand bound to value.
//
//	items[?(@.price cel 'value > 10.0 && value < 20.0')]
package celop

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/dotpath"
)

// Name is the operator name registered by Register.
const Name = "cel"

var (
	// ErrCompile indicates an expression that does not compile.
	ErrCompile = errors.New("cel: compile error")

	// ErrNotBool indicates an expression that did not produce a boolean.
	ErrNotBool = errors.New("cel: expression result is not a boolean")
)

// Engine compiles and caches CEL programs.
type Engine struct {
	env      *cel.Env
	programs sync.Map // expression -> cel.Program
}

// New creates an engine whose expressions see the operand as value.
func New() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("value", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("cel: create environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// Compile returns the cached program for expr, compiling it on first use.
func (e *Engine) Compile(expr string) (cel.Program, error) {
	if cached, ok := e.programs.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}

	actual, _ := e.programs.LoadOrStore(expr, prg)
	return actual.(cel.Program), nil
}

// Eval evaluates expr with value bound to the plain form of v.
func (e *Engine) Eval(expr string, v any) (bool, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{"value": document.Plain(v)})
	if err != nil {
		return false, fmt.Errorf("cel: evaluate %q: %w", expr, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotBool, expr)
	}
	return result, nil
}

// Operator returns the "cel" operator backed by e. A missing left operand,
// a non-string right operand and any evaluation error compare false.
func (e *Engine) Operator() dotpath.Operator {
	return dotpath.Operator{
		Name: Name,
		Fn: func(left, right any) bool {
			expr, ok := right.(string)
			if !ok || dotpath.IsMissing(left) {
				return false
			}
			result, err := e.Eval(expr, left)
			return err == nil && result
		},
	}
}

// Register creates an engine and adds its operator to reg.
func Register(reg *dotpath.Registry) (*Engine, error) {
	e, err := New()
	if err != nil {
		return nil, err
	}
	reg.RegisterOperator(e.Operator())
	return e, nil
}
