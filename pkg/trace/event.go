package trace

import (
	"fmt"
	"strings"
)

// Kind categorizes an [Event].
type Kind string

const (
	KindEval      Kind = "eval"
	KindInfo      Kind = "info"
	KindFail      Kind = "fail"
	KindBacktrack Kind = "backtrack"
	KindSuccess   Kind = "success"
	// KindOther is used for unclassified messages.
	KindOther Kind = "other"
)

// AllKinds lists every [Kind] in rendering order.
var AllKinds = []Kind{KindEval, KindInfo, KindFail, KindBacktrack, KindSuccess, KindOther}

// ParseKind maps a string to a [Kind]. Unknown values map to [KindOther].
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindEval, KindInfo, KindFail, KindBacktrack, KindSuccess:
		return k
	}

	return KindOther
}

// IsFailure reports whether k is rendered as a failure.
func (k Kind) IsFailure() bool {
	return k == KindFail || k == KindBacktrack
}

// Event is one step of an evaluation. Events are values and are never
// modified after they are emitted.
type Event struct {
	Kind    Kind   `json:"kind"    yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	// Depth is the recursion depth of the query that produced the event.
	Depth int `json:"depth" yaml:"depth"`
}

// NewEvent creates an [Event] with a formatted message.
func NewEvent(kind Kind, depth int, format string, args ...any) Event {
	return Event{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Depth:   depth,
	}
}

// String renders the event as a single line without indentation.
func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Indented renders the event as a single line indented by depth.
func (e Event) Indented() string {
	return strings.Repeat("  ", max(0, e.Depth)) + e.String()
}
