// Package engine evaluates queries against a knowledge base.
//
// Matching is exact string equality after [clause.Normalize]; there are no
// variables and no unification, so `flies(X)` only matches the text
// `flies(X)`. A query is proven by an identical fact, or by a rule with an
// identical head whose body goals are all proven in turn.
//
// Rules whose body contains the cut marker `!` commit: if any of their other
// goals fails, the whole query fails and later rules with the same head are
// not tried. Rules without a cut fall through to the next matching rule.
//
// Evaluation recurses without bound. Rules that (directly or indirectly)
// require their own head never terminate.
package engine
