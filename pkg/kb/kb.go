package kb

import (
	"regexp"
	"slices"
	"strings"

	"github.com/macropower/pql/pkg/clause"
)

var lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)

// KnowledgeBase stores facts and rules in insertion order. Duplicates are
// kept. It is not safe for concurrent use.
type KnowledgeBase struct {
	facts []string
	rules []string
}

// New creates an empty [KnowledgeBase].
func New() *KnowledgeBase {
	return &KnowledgeBase{}
}

// Clear removes all facts and rules.
func (k *KnowledgeBase) Clear() {
	k.facts = nil
	k.rules = nil
}

// AddClause normalizes raw and appends it to the rules if it contains a rule
// separator, or to the facts otherwise. No other validation is done.
func (k *KnowledgeBase) AddClause(raw string) clause.Kind {
	c := clause.Normalize(raw)

	kind := clause.KindOf(c)
	switch kind {
	case clause.KindRule:
		k.rules = append(k.rules, c)
	case clause.KindFact:
		k.facts = append(k.facts, c)
	}

	return kind
}

// AddText adds one clause per non-blank line of text. Each line is trimmed and
// loses one trailing terminator before [KnowledgeBase.AddClause]. It returns
// the number of clauses added.
func (k *KnowledgeBase) AddText(text string) int {
	n := 0

	for _, line := range lineBreaks.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = strings.TrimSuffix(line, string(clause.Terminator))
		k.AddClause(line)
		n++
	}

	return n
}

// Consult replaces the contents with the clauses in text.
func (k *KnowledgeBase) Consult(text string) int {
	k.Clear()

	return k.AddText(text)
}

// Facts returns a copy of the facts in insertion order.
func (k *KnowledgeBase) Facts() []string {
	return slices.Clone(k.facts)
}

// Rules returns a copy of the rules in insertion order.
func (k *KnowledgeBase) Rules() []string {
	return slices.Clone(k.rules)
}

// Len returns the total number of clauses.
func (k *KnowledgeBase) Len() int {
	return len(k.facts) + len(k.rules)
}

// Empty reports whether there are no clauses.
func (k *KnowledgeBase) Empty() bool {
	return k.Len() == 0
}

// Clauses returns every clause, facts first, in insertion order.
func (k *KnowledgeBase) Clauses() []string {
	return slices.Concat(k.facts, k.rules)
}
