package trace

// Reporter receives events as they are emitted.
type Reporter interface {
	Report(e Event)
}

// ReporterFunc adapts a function to a [Reporter].
type ReporterFunc func(e Event)

func (f ReporterFunc) Report(e Event) {
	f(e)
}

// LineFunc is a single-argument callback receiving one formatted line per
// event, e.g. to append to a text area.
type LineFunc func(line string)

func (f LineFunc) Report(e Event) {
	f(e.Indented())
}

// EventFunc is a two-argument callback receiving the kind and message of each
// event, e.g. to colorize output by kind.
type EventFunc func(kind Kind, message string)

func (f EventFunc) Report(e Event) {
	f(e.Kind, e.Message)
}

// MultiReporter forwards each event to every non-nil reporter, in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(e Event) {
	for _, r := range m {
		if r != nil {
			r.Report(e)
		}
	}
}

// Discard is a [Reporter] that drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})
