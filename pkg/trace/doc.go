// Package trace records the steps of an evaluation as categorized events.
//
// A [Log] is append-only. Every emitted [Event] is stored for batch retrieval
// and, in the same call, forwarded to the registered [Reporter]. Reporters can
// be built from either callback shape a shell may offer: a single formatted
// line ([LineFunc]) or a (kind, message) pair ([EventFunc]).
package trace
