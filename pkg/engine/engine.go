package engine

import (
	"github.com/macropower/pql/pkg/clause"
	"github.com/macropower/pql/pkg/trace"
)

// Source provides the clauses to evaluate against, in insertion order.
// A kb.KnowledgeBase implements it.
type Source interface {
	Facts() []string
	Rules() []string
}

// Evaluator proves queries against a [Source] and records each step in a
// [trace.Log]. It is not safe for concurrent use.
type Evaluator struct {
	src      Source
	log      *trace.Log
	reporter trace.Reporter
	facts    []string
	rules []rule
}

type rule struct {
	text  string
	head  string
	goals []string
	cut   bool
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithReporter forwards events to r as they are emitted. It applies to the
// log chosen by [WithLog] regardless of option order.
func WithReporter(r trace.Reporter) Option {
	return func(e *Evaluator) {
		e.reporter = r
	}
}

// WithLog records events into l instead of a private log.
func WithLog(l *trace.Log) Option {
	return func(e *Evaluator) {
		e.log = l
	}
}

// New creates an [Evaluator] reading from src.
func New(src Source, opts ...Option) *Evaluator {
	e := &Evaluator{
		src: src,
		log: trace.NewLog(nil),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.reporter != nil {
		e.log.SetReporter(e.reporter)
	}

	return e
}

// SetReporter replaces the reporter of the evaluator's log.
func (e *Evaluator) SetReporter(r trace.Reporter) {
	e.reporter = r
	e.log.SetReporter(r)
}

// Log returns the log events are recorded into.
func (e *Evaluator) Log() *trace.Log {
	return e.log
}

// Evaluate reports whether query is provable. The source is read once, at the
// start of the call, and is never modified.
func (e *Evaluator) Evaluate(query string) bool {
	e.snapshot()
	defer func() {
		e.facts, e.rules = nil, nil
	}()

	return e.solve(clause.Normalize(query), 0)
}

func (e *Evaluator) snapshot() {
	e.facts = e.src.Facts()

	texts := e.src.Rules()
	e.rules = make([]rule, 0, len(texts))

	for _, text := range texts {
		head, body, ok := clause.Split(text)
		if !ok {
			continue
		}

		e.rules = append(e.rules, rule{
			text:  text,
			head:  head,
			goals: clause.Goals(body),
			cut:   clause.HasCut(body),
		})
	}
}

func (e *Evaluator) solve(q string, depth int) bool {
	e.emit(trace.KindEval, depth, "evaluating: %s", q)

	if q == clause.Fail {
		e.emit(trace.KindFail, depth, "%s always fails", q)

		return false
	}

	for _, f := range e.facts {
		if f == q {
			e.emit(trace.KindSuccess, depth, "fact matched: %s", f)

			return true
		}
	}

	for _, r := range e.rules {
		if r.head != q {
			continue
		}

		e.emit(trace.KindInfo, depth, "trying rule: %s", r.text)

		if r.cut {
			return e.solveCommitted(q, r, depth)
		}

		if e.solveBody(r, depth) {
			e.emit(trace.KindSuccess, depth, "rule succeeded: %s", r.text)

			return true
		}

		e.emit(trace.KindBacktrack, depth, "backtracking from rule: %s", r.text)
	}

	e.emit(trace.KindFail, depth, "no fact or rule proves: %s", q)

	return false
}

// solveBody proves goals left to right and stops at the first failure.
func (e *Evaluator) solveBody(r rule, depth int) bool {
	for _, g := range r.goals {
		if !e.solve(g, depth+1) {
			e.emit(trace.KindFail, depth, "goal failed: %s", g)

			return false
		}

		e.emit(trace.KindSuccess, depth, "goal succeeded: %s", g)
	}

	return true
}

// solveCommitted proves every goal except the cut marker. Its result is the
// result of the whole query: no further rules are tried.
func (e *Evaluator) solveCommitted(q string, r rule, depth int) bool {
	e.emit(trace.KindInfo, depth, "cut found, committed to rule: %s", r.text)

	for _, g := range r.goals {
		if g == clause.Cut {
			continue
		}

		if !e.solve(g, depth+1) {
			e.emit(trace.KindFail, depth, "goal failed after cut, %s fails: %s", q, g)

			return false
		}

		e.emit(trace.KindSuccess, depth, "goal succeeded: %s", g)
	}

	e.emit(trace.KindSuccess, depth, "rule succeeded: %s", r.text)

	return true
}

func (e *Evaluator) emit(kind trace.Kind, depth int, format string, args ...any) {
	e.log.Emit(trace.NewEvent(kind, depth, format, args...))
}
