// Package render turns pql values into terminal output: trace lines colored by
// event kind, boolean results, syntax-highlighted knowledge base listings and
// machine-readable query results.
package render
