package kb

import (
	"cmp"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/macropower/pql/pkg/clause"
)

// Suggest returns up to limit facts and rule heads that look like query,
// best first. Clauses equal to query are never suggested. Suggestions are
// hints for a person at a prompt and play no part in evaluation.
func (k *KnowledgeBase) Suggest(query string, limit int) []string {
	query = clause.Normalize(query)
	if query == "" || limit <= 0 {
		return nil
	}

	candidates := k.heads()
	scores := make(map[string]int, len(candidates))

	// Candidates containing the query's characters in order.
	for _, m := range fuzzy.Find(query, candidates) {
		scores[m.Str] = m.Score
	}

	// Candidates whose characters appear in order in the query, e.g. the
	// query has extra whitespace.
	for _, c := range candidates {
		if _, ok := scores[c]; ok {
			continue
		}

		if ms := fuzzy.Find(c, []string{query}); len(ms) > 0 {
			scores[c] = ms[0].Score
		}
	}

	matched := make([]string, 0, len(scores))
	for _, c := range candidates {
		if _, ok := scores[c]; ok && c != query {
			matched = append(matched, c)
		}
	}

	slices.SortStableFunc(matched, func(a, b string) int {
		return cmp.Compare(scores[b], scores[a])
	})

	return matched[:min(limit, len(matched))]
}

// heads returns the distinct facts and rule heads in insertion order.
func (k *KnowledgeBase) heads() []string {
	seen := make(map[string]bool, k.Len())
	out := make([]string, 0, k.Len())

	add := func(s string) {
		if s == "" || seen[s] {
			return
		}

		seen[s] = true
		out = append(out, s)
	}

	for _, f := range k.facts {
		add(f)
	}

	for _, r := range k.rules {
		head, _, _ := clause.Split(r)
		add(head)
	}

	return out
}
