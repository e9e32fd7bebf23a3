package trace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/macropower/pql/pkg/expr"
)

// ErrInvalidFilter is returned when a filter expression cannot be compiled.
var ErrInvalidFilter = errors.New("invalid filter")

var filterEnv = expr.MustNewEnvironment(
	cel.Variable("kind", cel.StringType),
	cel.Variable("message", cel.StringType),
	cel.Variable("depth", cel.IntType),
)

// Filter selects events with a CEL expression.
//
// Expressions have access to variables:
//   - `kind` (string): one of eval, info, fail, backtrack, success, other
//   - `message` (string): the event message
//   - `depth` (int): the recursion depth
//
// Examples:
//   - isFailure(kind)
//   - kind in ["success", "fail"] && depth == 0
//   - message.contains("flies")
//
// Filters only affect what is shown; they never change a [Log].
type Filter struct {
	program    cel.Program
	Expression string
}

// NewFilter compiles expression. An empty expression matches everything.
func NewFilter(expression string) (*Filter, error) {
	f := &Filter{Expression: strings.TrimSpace(expression)}
	if f.Expression == "" {
		return f, nil
	}

	program, err := filterEnv.Compile(f.Expression)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidFilter, f.Expression, err)
	}

	f.program = program

	return f, nil
}

// MustNewFilter is like [NewFilter] but panics on error.
func MustNewFilter(expression string) *Filter {
	f, err := NewFilter(expression)
	if err != nil {
		panic(err)
	}

	return f
}

// Match reports whether e is selected. A nil filter matches everything.
func (f *Filter) Match(e Event) bool {
	if f == nil || f.program == nil {
		return true
	}

	return expr.EvalBool(f.program, map[string]any{
		"kind":    string(e.Kind),
		"message": e.Message,
		"depth":   int64(e.Depth),
	})
}

// Apply returns the selected events in their original order.
func (f *Filter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}

	return out
}
