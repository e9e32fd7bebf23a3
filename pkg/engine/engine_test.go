package engine_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pql/pkg/engine"
	"github.com/macropower/pql/pkg/kb"
	"github.com/macropower/pql/pkg/trace"
)

func newKB(t *testing.T, text string) *kb.KnowledgeBase {
	t.Helper()

	k := kb.New()
	k.AddText(text)

	return k
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kb    string
		query string
		want  bool
	}{
		{
			name:  "exact fact",
			kb:    "likes(tom,jerry).",
			query: "likes(tom,jerry)",
			want:  true,
		},
		{
			name:  "fact differs by whitespace",
			kb:    "likes(tom,jerry).",
			query: "likes(tom, jerry)",
			want:  false,
		},
		{
			name:  "query is normalized",
			kb:    "likes(tom,jerry).",
			query: "  likes(tom,jerry).  ",
			want:  true,
		},
		{
			name:  "empty knowledge base",
			query: "anything",
			want:  false,
		},
		{
			name:  "conjunctive rule with literal X",
			kb:    "bird(X).\nsmall(X).\nflies(X) :- bird(X), small(X).",
			query: "flies(X)",
			want:  true,
		},
		{
			name:  "X is not a variable",
			kb:    "bird(tweety).\nsmall(tweety).\nflies(X) :- bird(X), small(X).",
			query: "flies(X)",
			want:  false,
		},
		{
			name:  "X is not a variable in the query either",
			kb:    "bird(tweety).\nsmall(tweety).\nflies(X) :- bird(X), small(X).",
			query: "flies(tweety)",
			want:  false,
		},
		{
			name:  "ground rule",
			kb:    "bird(tweety).\nsmall(tweety).\nflies(tweety) :- bird(tweety), small(tweety).",
			query: "flies(tweety)",
			want:  true,
		},
		{
			name:  "second goal fails",
			kb:    "bird(tweety).\nflies(tweety) :- bird(tweety), small(tweety).",
			query: "flies(tweety)",
			want:  false,
		},
		{
			name:  "nested rules",
			kb:    "a.\nb :- a.\nc :- b, a.\nd :- c.",
			query: "d",
			want:  true,
		},
		{
			name:  "goals with incidental whitespace",
			kb:    "a.\nb.\nc :-    a  ,   b   .",
			query: "c",
			want:  true,
		},
		{
			name:  "non-cut fallthrough",
			kb:    "b.\na :- missing.\na :- b.",
			query: "a",
			want:  true,
		},
		{
			name:  "cut commits to failure",
			kb:    "b.\na :- !, missing.\na :- b.",
			query: "a",
			want:  false,
		},
		{
			name:  "cut after failing goal still commits",
			kb:    "b.\na :- missing, !.\na :- b.",
			query: "a",
			want:  false,
		},
		{
			name:  "cut rule succeeds",
			kb:    "b.\nc.\na :- b, !, c.",
			query: "a",
			want:  true,
		},
		{
			name:  "cut rule only goal",
			kb:    "a :- !.",
			query: "a",
			want:  true,
		},
		{
			name:  "cut anywhere in body text",
			kb:    "ok!.\nb.\na :- ok!, missing.\na :- b.",
			query: "a",
			want:  false,
		},
		{
			name:  "earlier non-matching cut rule is ignored",
			kb:    "b.\nz :- !, missing.\na :- b.",
			query: "a",
			want:  true,
		},
		{
			name:  "facts are checked before rules",
			kb:    "a :- fail.\na.",
			query: "a",
			want:  true,
		},
		{
			name:  "fail is reserved",
			kb:    "fail.\nfail :- true.\ntrue.",
			query: "fail",
			want:  false,
		},
		{
			name:  "fail as a goal",
			kb:    "a :- fail.",
			query: "a",
			want:  false,
		},
		{
			name:  "fail in cut rule",
			kb:    "b.\na :- !, fail.\na :- b.",
			query: "a",
			want:  false,
		},
		{
			name:  "multiple separators never match",
			kb:    "b.\nc.\na :- b :- c.",
			query: "a",
			want:  false,
		},
		{
			name:  "empty body goal never matches",
			kb:    "b.\na :- b,.",
			query: "a",
			want:  false,
		},
		{
			name:  "commas inside arguments split goals",
			kb:    "likes(tom,jerry).\nhappy :- likes(tom,jerry).",
			query: "happy",
			want:  false,
		},
		{
			name:  "duplicates are harmless",
			kb:    "a.\na.\nb :- a.\nb :- a.",
			query: "b",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := engine.New(newKB(t, tt.kb))
			assert.Equal(t, tt.want, e.Evaluate(tt.query))
		})
	}
}

func TestEvaluate_FailIgnoresKnowledgeBase(t *testing.T) {
	t.Parallel()

	e := engine.New(newKB(t, "fail.\nfail :- !."))
	assert.False(t, e.Evaluate("fail"))
	assert.False(t, e.Evaluate("fail."))

	events := e.Log().Events()
	require.NotEmpty(t, events)
	assert.Equal(t, trace.KindFail, events[1].Kind)

	for _, ev := range events {
		assert.NotEqual(t, trace.KindSuccess, ev.Kind)
		assert.NotEqual(t, trace.KindInfo, ev.Kind, "no rule is tried")
	}
}

func TestEvaluate_Clear(t *testing.T) {
	t.Parallel()

	k := newKB(t, "a.\nb :- a.")
	e := engine.New(k)
	require.True(t, e.Evaluate("a"))
	require.True(t, e.Evaluate("b"))

	k.Clear()
	assert.False(t, e.Evaluate("a"))
	assert.False(t, e.Evaluate("b"))
}

func TestEvaluate_SeesAddedClauses(t *testing.T) {
	t.Parallel()

	k := kb.New()
	e := engine.New(k)
	assert.False(t, e.Evaluate("a"))

	k.AddClause("a")
	assert.True(t, e.Evaluate("a"))
}

func TestEvaluate_DoesNotModifyKnowledgeBase(t *testing.T) {
	t.Parallel()

	k := newKB(t, "a.\nb :- a, !.\nc :- missing.")
	facts, rules := k.Facts(), k.Rules()

	e := engine.New(k)
	e.Evaluate("b")
	e.Evaluate("c")

	assert.Equal(t, facts, k.Facts())
	assert.Equal(t, rules, k.Rules())
}

func kinds(events []trace.Event) []trace.Kind {
	out := make([]trace.Kind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}

	return out
}

func TestTrace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kb    string
		query string
		want  []trace.Event
	}{
		{
			name:  "fact",
			kb:    "a.",
			query: "a",
			want: []trace.Event{
				{Kind: trace.KindEval, Message: "evaluating: a"},
				{Kind: trace.KindSuccess, Message: "fact matched: a"},
			},
		},
		{
			name:  "no proof",
			query: "a",
			want: []trace.Event{
				{Kind: trace.KindEval, Message: "evaluating: a"},
				{Kind: trace.KindFail, Message: "no fact or rule proves: a"},
			},
		},
		{
			name:  "fallthrough",
			kb:    "b.\na :- c.\na :- b.",
			query: "a",
			want: []trace.Event{
				{Kind: trace.KindEval, Message: "evaluating: a"},
				{Kind: trace.KindInfo, Message: "trying rule: a :- c"},
				{Kind: trace.KindEval, Message: "evaluating: c", Depth: 1},
				{Kind: trace.KindFail, Message: "no fact or rule proves: c", Depth: 1},
				{Kind: trace.KindFail, Message: "goal failed: c"},
				{Kind: trace.KindBacktrack, Message: "backtracking from rule: a :- c"},
				{Kind: trace.KindInfo, Message: "trying rule: a :- b"},
				{Kind: trace.KindEval, Message: "evaluating: b", Depth: 1},
				{Kind: trace.KindSuccess, Message: "fact matched: b", Depth: 1},
				{Kind: trace.KindSuccess, Message: "goal succeeded: b"},
				{Kind: trace.KindSuccess, Message: "rule succeeded: a :- b"},
			},
		},
		{
			name:  "cut",
			kb:    "b.\na :- !, c.\na :- b.",
			query: "a",
			want: []trace.Event{
				{Kind: trace.KindEval, Message: "evaluating: a"},
				{Kind: trace.KindInfo, Message: "trying rule: a :- !, c"},
				{Kind: trace.KindInfo, Message: "cut found, committed to rule: a :- !, c"},
				{Kind: trace.KindEval, Message: "evaluating: c", Depth: 1},
				{Kind: trace.KindFail, Message: "no fact or rule proves: c", Depth: 1},
				{Kind: trace.KindFail, Message: "goal failed after cut, a fails: c"},
			},
		},
		{
			name:  "reserved fail",
			query: "fail",
			want: []trace.Event{
				{Kind: trace.KindEval, Message: "evaluating: fail"},
				{Kind: trace.KindFail, Message: "fail always fails"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var pushed []trace.Event

			e := engine.New(newKB(t, tt.kb), engine.WithReporter(trace.ReporterFunc(func(ev trace.Event) {
				pushed = append(pushed, ev)
			})))
			e.Evaluate(tt.query)

			if diff := cmp.Diff(tt.want, e.Log().Events()); diff != "" {
				t.Errorf("trace mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, e.Log().Events(), pushed)
		})
	}
}

func TestTrace_DoesNotAffectResult(t *testing.T) {
	t.Parallel()

	text := "b.\nc.\na :- b, c.\nd :- !, missing.\nd :- b."

	quiet := engine.New(newKB(t, text))

	var lines []string

	loud := engine.New(newKB(t, text), engine.WithReporter(trace.MultiReporter{
		trace.LineFunc(func(l string) { lines = append(lines, l) }),
		trace.EventFunc(func(trace.Kind, string) {}),
	}))

	for _, q := range []string{"a", "d", "b", "missing", "fail"} {
		assert.Equal(t, quiet.Evaluate(q), loud.Evaluate(q), "query %q", q)
	}

	assert.NotEmpty(t, lines)
	assert.Equal(t, quiet.Log().Lines(), loud.Log().Lines())
}

func TestWithLogAndSetReporter(t *testing.T) {
	t.Parallel()

	l := trace.NewLog(nil)
	e := engine.New(newKB(t, "a."), engine.WithLog(l))

	var got []trace.Kind

	e.SetReporter(trace.EventFunc(func(k trace.Kind, _ string) { got = append(got, k) }))
	e.Evaluate("a")

	assert.Same(t, l, e.Log())
	assert.Equal(t, []trace.Kind{trace.KindEval, trace.KindSuccess}, got)
	assert.Equal(t, got, kinds(l.Events()))
}

func TestWithLogAndReporter_OptionOrder(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts func(l *trace.Log, r trace.Reporter) []engine.Option
	}{
		"reporter first": {
			opts: func(l *trace.Log, r trace.Reporter) []engine.Option {
				return []engine.Option{engine.WithReporter(r), engine.WithLog(l)}
			},
		},
		"log first": {
			opts: func(l *trace.Log, r trace.Reporter) []engine.Option {
				return []engine.Option{engine.WithLog(l), engine.WithReporter(r)}
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var got []trace.Kind

			l := trace.NewLog(nil)
			r := trace.EventFunc(func(k trace.Kind, _ string) { got = append(got, k) })

			e := engine.New(newKB(t, "a."), tc.opts(l, r)...)
			require.True(t, e.Evaluate("a"))

			assert.Same(t, l, e.Log())
			assert.Equal(t, []trace.Kind{trace.KindEval, trace.KindSuccess}, got)
			assert.Equal(t, got, kinds(l.Events()))
		})
	}
}

func TestTrace_Categories(t *testing.T) {
	t.Parallel()

	e := engine.New(newKB(t, "b.\na :- c.\na :- b."))
	require.True(t, e.Evaluate("a"))

	counts := trace.Count(e.Log().Events())
	assert.Equal(t, 3, counts[trace.KindEval])
	assert.Equal(t, 2, counts[trace.KindInfo])
	assert.Equal(t, 1, counts[trace.KindBacktrack])
	assert.Equal(t, 2, counts[trace.KindFail])
	assert.Equal(t, 3, counts[trace.KindSuccess])
}
