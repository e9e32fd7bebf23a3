package clause

import (
	"strings"
	"unicode"
)

const (
	// Separator splits a rule into its head and body.
	Separator = ":-"
	// GoalSeparator splits a rule body into goals.
	GoalSeparator = ","
	// Cut is the cut marker goal.
	Cut = "!"
	// Fail is the reserved atom that never succeeds.
	Fail = "fail"
	// QueryPrefix is the optional prompt prefix of a query.
	QueryPrefix = "?-"
	// Terminator ends a clause in source text.
	Terminator = '.'
)

// Kind classifies a clause.
type Kind int

const (
	// KindFact is a clause without a [Separator].
	KindFact Kind = iota
	// KindRule is a clause containing a [Separator].
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindFact:
		return "fact"
	case KindRule:
		return "rule"
	}

	return "unknown"
}

// Normalize strips leading whitespace, and any trailing run of whitespace and
// [Terminator] characters. Input that is entirely whitespace (or terminators)
// normalizes to the empty string.
func Normalize(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == Terminator || unicode.IsSpace(r)
	})
}

// IsRule reports whether c contains the rule [Separator].
func IsRule(c string) bool {
	return strings.Contains(c, Separator)
}

// KindOf classifies c.
func KindOf(c string) Kind {
	if IsRule(c) {
		return KindRule
	}

	return KindFact
}

// Split splits a rule at the first [Separator]. Head and body are normalized.
// The ok result is false when c has no separator.
func Split(c string) (head, body string, ok bool) {
	head, body, ok = strings.Cut(c, Separator)
	if !ok {
		return "", "", false
	}

	return Normalize(head), Normalize(body), true
}

// Goals splits a rule body on [GoalSeparator] and normalizes every goal.
// Empty goals are kept; they never match anything.
func Goals(body string) []string {
	parts := strings.Split(body, GoalSeparator)
	for i, p := range parts {
		parts[i] = Normalize(p)
	}

	return parts
}

// HasCut reports whether the raw body text contains the [Cut] marker anywhere.
func HasCut(body string) bool {
	return strings.Contains(body, Cut)
}

// ParseQuery cleans up a query typed at a prompt: surrounding whitespace, an
// optional leading [QueryPrefix] and trailing terminators are removed.
func ParseQuery(raw string) string {
	q := strings.TrimSpace(raw)
	q = strings.TrimPrefix(q, QueryPrefix)

	return Normalize(q)
}
