// Package kb holds a knowledge base: two ordered sequences of normalized
// clauses, facts and rules, plus their plain-text file format.
//
// The file format is line oriented:
//
//	% Facts:
//	bird(tweety).
//
//	% Rules:
//	flies(X) :- bird(X), small(X).
//
// Lines starting with `%` and empty lines are skipped when reading. A clause
// added directly that starts with `%` or contains a line break is kept in
// memory but does not round-trip through a file; see [Persistable].
package kb
