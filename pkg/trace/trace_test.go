package trace_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pql/pkg/trace"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, trace.KindEval, trace.ParseKind("eval"))
	assert.Equal(t, trace.KindBacktrack, trace.ParseKind(" Backtrack "))
	assert.Equal(t, trace.KindOther, trace.ParseKind("debug"))
	assert.Equal(t, trace.KindOther, trace.ParseKind(""))
	assert.True(t, trace.KindFail.IsFailure())
	assert.True(t, trace.KindBacktrack.IsFailure())
	assert.False(t, trace.KindSuccess.IsFailure())
}

func TestEvent_Render(t *testing.T) {
	t.Parallel()

	e := trace.NewEvent(trace.KindSuccess, 2, "fact matched: %s", "bird(tweety)")
	assert.Equal(t, "[success] fact matched: bird(tweety)", e.String())
	assert.Equal(t, "    [success] fact matched: bird(tweety)", e.Indented())
}

func TestLog_BothModesSeeSameStream(t *testing.T) {
	t.Parallel()

	var (
		lines  []string
		kinds  []trace.Kind
		pushed []trace.Event
	)

	l := trace.NewLog(trace.MultiReporter{
		trace.LineFunc(func(line string) { lines = append(lines, line) }),
		trace.EventFunc(func(k trace.Kind, _ string) { kinds = append(kinds, k) }),
		trace.ReporterFunc(func(e trace.Event) { pushed = append(pushed, e) }),
		nil,
	})

	events := []trace.Event{
		trace.NewEvent(trace.KindEval, 0, "evaluating: a"),
		trace.NewEvent(trace.KindInfo, 0, "trying rule: a :- b"),
		trace.NewEvent(trace.KindEval, 1, "evaluating: b"),
		trace.NewEvent(trace.KindFail, 1, "no proof: b"),
	}
	for i, e := range events {
		l.Emit(e)
		// Pushed synchronously, before Emit returns.
		require.Len(t, pushed, i+1)
	}

	if diff := cmp.Diff(events, l.Events()); diff != "" {
		t.Errorf("batch events mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(events, pushed); diff != "" {
		t.Errorf("pushed events mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, l.Lines(), lines)
	assert.Equal(t, []trace.Kind{trace.KindEval, trace.KindInfo, trace.KindEval, trace.KindFail}, kinds)
	assert.Equal(t, 4, l.Len())
}

func TestLog_SetReporterAndReset(t *testing.T) {
	t.Parallel()

	var first, second int

	l := trace.NewLog(trace.ReporterFunc(func(trace.Event) { first++ }))
	l.Emit(trace.NewEvent(trace.KindEval, 0, "a"))

	l.SetReporter(trace.ReporterFunc(func(trace.Event) { second++ }))
	l.Emit(trace.NewEvent(trace.KindEval, 0, "b"))

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, l.Len())

	events := l.Events()
	events[0].Message = "mutated"
	assert.Equal(t, "a", l.Events()[0].Message)

	l.Reset()
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Lines())

	l.Emit(trace.NewEvent(trace.KindEval, 0, "c"))
	assert.Equal(t, 2, second)
}

func TestLog_NilReporter(t *testing.T) {
	t.Parallel()

	l := trace.NewLog(nil)
	l.Emit(trace.NewEvent(trace.KindOther, 0, "x"))
	assert.Equal(t, 1, l.Len())

	trace.Discard.Report(trace.NewEvent(trace.KindOther, 0, "dropped"))
}

func TestCount(t *testing.T) {
	t.Parallel()

	counts := trace.Count([]trace.Event{
		{Kind: trace.KindEval},
		{Kind: trace.KindEval},
		{Kind: trace.KindSuccess},
	})
	assert.Equal(t, 2, counts[trace.KindEval])
	assert.Equal(t, 1, counts[trace.KindSuccess])
	assert.Zero(t, counts[trace.KindFail])
}

func TestFilter(t *testing.T) {
	t.Parallel()

	events := []trace.Event{
		trace.NewEvent(trace.KindEval, 0, "evaluating: flies(X)"),
		trace.NewEvent(trace.KindEval, 1, "evaluating: bird(X)"),
		trace.NewEvent(trace.KindFail, 1, "no proof: bird(X)"),
		trace.NewEvent(trace.KindBacktrack, 0, "backtracking from: flies(X) :- bird(X)"),
		trace.NewEvent(trace.KindSuccess, 0, "rule succeeded: flies(X) :- small(X)"),
	}

	tests := []struct {
		name       string
		expression string
		want       []int
	}{
		{name: "empty matches all", expression: "", want: []int{0, 1, 2, 3, 4}},
		{name: "failures", expression: "isFailure(kind)", want: []int{2, 3}},
		{name: "top level", expression: "depth == 0", want: []int{0, 3, 4}},
		{name: "message", expression: `message.contains("bird")`, want: []int{1, 2, 3}},
		{name: "kind list", expression: `kind in ["success", "eval"] && depth < 1`, want: []int{0, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := trace.NewFilter(tt.expression)
			require.NoError(t, err)

			want := make([]trace.Event, 0, len(tt.want))
			for _, i := range tt.want {
				want = append(want, events[i])
			}

			if diff := cmp.Diff(want, f.Apply(events)); diff != "" {
				t.Errorf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_Invalid(t *testing.T) {
	t.Parallel()

	_, err := trace.NewFilter("kind ==")
	require.ErrorIs(t, err, trace.ErrInvalidFilter)

	assert.Panics(t, func() {
		trace.MustNewFilter("nope(")
	})

	var nilFilter *trace.Filter
	assert.True(t, nilFilter.Match(trace.Event{}))
}
