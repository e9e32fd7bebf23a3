package trace

import "slices"

// Log is an append-only event log. It is not safe for concurrent use; a Log
// belongs to a single evaluation session.
type Log struct {
	reporter Reporter
	events   []Event
}

// NewLog creates a [Log] that forwards events to r. A nil r is allowed.
func NewLog(r Reporter) *Log {
	return &Log{reporter: r}
}

// SetReporter replaces the reporter. Events already emitted are not replayed.
func (l *Log) SetReporter(r Reporter) {
	l.reporter = r
}

// Emit appends e and forwards it to the reporter before returning.
func (l *Log) Emit(e Event) {
	l.events = append(l.events, e)
	if l.reporter != nil {
		l.reporter.Report(e)
	}
}

// Events returns a copy of all emitted events in emission order.
func (l *Log) Events() []Event {
	return slices.Clone(l.events)
}

// Lines returns every emitted event rendered with [Event.Indented].
func (l *Log) Lines() []string {
	lines := make([]string, 0, len(l.events))
	for _, e := range l.events {
		lines = append(lines, e.Indented())
	}

	return lines
}

// Len returns the number of emitted events.
func (l *Log) Len() int {
	return len(l.events)
}

// Reset drops all stored events. The reporter is kept.
func (l *Log) Reset() {
	l.events = nil
}

// Count returns the number of events per kind.
func Count(events []Event) map[Kind]int {
	counts := make(map[Kind]int, len(AllKinds))
	for _, e := range events {
		counts[e.Kind]++
	}

	return counts
}
