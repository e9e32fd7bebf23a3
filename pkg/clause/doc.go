// Package clause normalizes and dissects the plain-text clauses that make up
// a knowledge base.
//
// A clause is a fact (no `:-` separator) or a rule (`head :- goal, goal`).
// Clauses are compared as strings after [Normalize], never structurally.
package clause
