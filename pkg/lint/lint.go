// Package lint reports clauses that are accepted by the knowledge base but are
// probably not what their author meant. Issues are advisory: evaluation
// treats every clause as plain text regardless.
package lint

import (
	"fmt"
	"strings"

	"github.com/macropower/pql/pkg/clause"
	"github.com/macropower/pql/pkg/kb"
)

// Kind classifies an [Issue].
type Kind string

const (
	KindSyntax             Kind = "syntax"
	KindEmptyHead          Kind = "empty-head"
	KindEmptyBody          Kind = "empty-body"
	KindEmptyGoal          Kind = "empty-goal"
	KindMultipleSeparators Kind = "multiple-separators"
	KindSplitArguments     Kind = "split-arguments"
	KindStrayCut           Kind = "stray-cut"
	KindReserved           Kind = "reserved"
	KindDuplicate          Kind = "duplicate"
	KindNotPersistable     Kind = "not-persistable"
)

// Issue is a problem found in a clause.
type Issue struct {
	Clause  string `json:"clause"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Clause, i.Message, i.Kind)
}

// Check returns the issues of every clause in k, facts first. A repeated
// clause is checked once and reported as a duplicate once.
func Check(k *kb.KnowledgeBase) []Issue {
	var issues []Issue

	seen := make(map[string]int)
	for _, c := range k.Clauses() {
		seen[c]++

		switch seen[c] {
		case 1:
			issues = append(issues, Clause(c)...)
		case 2:
			issues = append(issues, Issue{
				Clause:  c,
				Kind:    KindDuplicate,
				Message: "clause is defined more than once",
			})
		}
	}

	return issues
}

// Clause returns the issues of a single normalized clause.
func Clause(c string) []Issue {
	issue := func(kind Kind, format string, args ...any) Issue {
		return Issue{Clause: c, Kind: kind, Message: fmt.Sprintf(format, args...)}
	}

	var issues []Issue

	if !kb.Persistable(c) {
		issues = append(issues, issue(KindNotPersistable,
			"clause starts with %q or spans lines, so it is lost or split when saved and loaded", kb.Comment))
	}

	if !clause.IsRule(c) {
		if c == clause.Fail {
			return append(issues, issue(KindReserved, "%q always fails, so this fact is never used", clause.Fail))
		}

		if len(issues) > 0 {
			return issues
		}

		return syntax(c)
	}

	if n := strings.Count(c, clause.Separator); n > 1 {
		issues = append(issues, issue(KindMultipleSeparators,
			"%d %q separators; the body starts after the first", n, clause.Separator))
	}

	head, body, _ := clause.Split(c)

	switch head {
	case "":
		issues = append(issues, issue(KindEmptyHead, "rule has no head and can never be queried"))
	case clause.Fail:
		issues = append(issues, issue(KindReserved, "%q always fails, so this rule is never used", clause.Fail))
	}

	if body == "" {
		return append(issues, issue(KindEmptyBody, "rule has no body and never succeeds"))
	}

	cut := false

	for i, g := range clause.Goals(body) {
		switch {
		case g == "":
			issues = append(issues, issue(KindEmptyGoal, "goal %d is empty and never succeeds", i+1))
		case g == clause.Cut:
			cut = true
		case strings.Count(g, "(") > strings.Count(g, ")"):
			issues = append(issues, issue(KindSplitArguments,
				"goal %q is cut at a comma inside parentheses; goals are split at every comma", g))
		}
	}

	if !cut && clause.HasCut(body) {
		issues = append(issues, issue(KindStrayCut,
			"body mentions %q outside a cut goal, which still commits to this rule", clause.Cut))
	}

	if len(issues) > 0 {
		return issues
	}

	return syntax(c)
}

func syntax(c string) []Issue {
	node := &clauseNode{}

	err := parser.ParseString("", c, node)
	if err != nil {
		return []Issue{{Clause: c, Kind: KindSyntax, Message: err.Error()}}
	}

	return nil
}
