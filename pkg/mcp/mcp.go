// Package mcp exposes a knowledge base session as a Model Context Protocol
// server, so that agents can add clauses and run traced queries.
package mcp

import (
	"fmt"

	xstrings "github.com/charmbracelet/x/exp/strings"
)

const (
	name         = "pql"
	instructions = `MCP Server 'pql' holds a knowledge base of facts and rules and answers yes/no queries against it.

Clauses are plain text, one per line, for example:
  parent(tom, bob).
  ancestor(X, Y) :- parent(X, Y).

Queries match clause text exactly. Variables are NOT unified, and goals in a rule body are split at every comma.

Workflow:
1. Use 'consult' to load clauses (set append to keep existing ones).
2. Use 'list_clauses' to see the knowledge base exactly as stored.
3. Use 'query' to evaluate a query. Set trace to see how the result was reached.
4. Use 'clear' to start over.
`

	// maxTraceLines limits the trace returned by a single query.
	maxTraceLines = 500
)

// truncateLines keeps at most maxLen lines, noting how many were dropped.
func truncateLines(lines []string, maxLen int) []string {
	if len(lines) <= maxLen {
		return lines
	}

	out := make([]string, 0, maxLen+1)
	out = append(out, lines[:maxLen]...)

	return append(out, fmt.Sprintf("[TRACE TRUNCATED: %d more events]", len(lines)-maxLen))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}

	return fmt.Sprintf("%d %ss", n, word)
}

// joinNonEmpty joins the non-empty parts as an English list.
func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return xstrings.EnglishJoin(out, true)
}

// countOf is like plural but returns "" for zero.
func countOf(n int, word string) string {
	if n == 0 {
		return ""
	}

	return plural(n, word)
}
