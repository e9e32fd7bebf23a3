package expr

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/pql/pkg/clause"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),
		ext.Lists(),

		// `isFailure` matches the kinds rendered as failures.
		// Example: isFailure(kind).
		cel.Function("isFailure",
			cel.Overload("is_failure_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(kind ref.Val) ref.Val {
					k, ok := kind.(types.String).Value().(string)
					if !ok {
						return types.NewErr("isFailure: invalid string value")
					}

					return types.Bool(k == "fail" || k == "backtrack")
				}),
			),
		),

		// `isRule` reports whether the text contains a rule separator.
		// Example: isRule(message).
		cel.Function("isRule",
			cel.Overload("is_rule_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(text ref.Val) ref.Val {
					s, ok := text.(types.String).Value().(string)
					if !ok {
						return types.NewErr("isRule: invalid string value")
					}

					return types.Bool(clause.IsRule(s))
				}),
			),
		),

		// `clauseHead` returns the head of a rule, or the whole text for a fact.
		// Example: clauseHead(message).startsWith("flies").
		cel.Function("clauseHead",
			cel.Overload("clause_head_string", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(text ref.Val) ref.Val {
					s, ok := text.(types.String).Value().(string)
					if !ok {
						return types.NewErr("clauseHead: invalid string value")
					}

					head, _, isRule := clause.Split(s)
					if !isRule {
						return types.String(clause.Normalize(s))
					}

					return types.String(head)
				}),
			),
		),

		// `clauseBody` returns the body of a rule, or "" for a fact.
		// Example: clauseBody(message).contains("!").
		cel.Function("clauseBody",
			cel.Overload("clause_body_string", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(text ref.Val) ref.Val {
					s, ok := text.(types.String).Value().(string)
					if !ok {
						return types.NewErr("clauseBody: invalid string value")
					}

					_, body, _ := clause.Split(s)

					return types.String(body)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
