package expr_test

import (
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pql/pkg/expr"
)

func TestClauseFunctions(t *testing.T) {
	t.Parallel()

	env, err := expr.NewEnvironment(
		cel.Variable("kind", cel.StringType),
		cel.Variable("message", cel.StringType),
	)
	require.NoError(t, err)

	tests := []struct {
		name       string
		expression string
		kind       string
		message    string
		want       bool
	}{
		{
			name:       "isFailure fail",
			expression: `isFailure(kind)`,
			kind:       "fail",
			want:       true,
		},
		{
			name:       "isFailure backtrack",
			expression: `isFailure(kind)`,
			kind:       "backtrack",
			want:       true,
		},
		{
			name:       "isFailure success",
			expression: `isFailure(kind)`,
			kind:       "success",
			want:       false,
		},
		{
			name:       "isRule",
			expression: `isRule(message)`,
			message:    "flies(X) :- bird(X)",
			want:       true,
		},
		{
			name:       "clauseHead of rule",
			expression: `clauseHead(message) == "flies(X)"`,
			message:    "flies(X) :- bird(X), small(X).",
			want:       true,
		},
		{
			name:       "clauseHead of fact",
			expression: `clauseHead(message) == "bird(tweety)"`,
			message:    " bird(tweety). ",
			want:       true,
		},
		{
			name:       "clauseBody contains cut",
			expression: `clauseBody(message).contains("!")`,
			message:    "p :- q, !, r",
			want:       true,
		},
		{
			name:       "clauseBody of fact is empty",
			expression: `clauseBody(message) == ""`,
			message:    "bird(tweety)",
			want:       true,
		},
		{
			name:       "strings extension",
			expression: `message.lowerAscii().startsWith("eval")`,
			message:    "EVAL bird(tweety)",
			want:       true,
		},
		{
			name:       "non-boolean result is false",
			expression: `message`,
			message:    "true",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			program, err := env.Compile(tt.expression)
			require.NoError(t, err)

			got := expr.EvalBool(program, map[string]any{
				"kind":    tt.kind,
				"message": tt.message,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	env := expr.MustNewEnvironment(cel.Variable("kind", cel.StringType))

	_, err := env.Compile(`unknownVar == "x"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile expression")

	_, err = env.Compile(`isFailure(1)`)
	require.Error(t, err)

	_, err = env.Compile("")
	require.Error(t, err)
}
