package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/macropower/pql/pkg/clause"
	"github.com/macropower/pql/pkg/engine"
	"github.com/macropower/pql/pkg/kb"
	"github.com/macropower/pql/pkg/log"
	"github.com/macropower/pql/pkg/trace"
)

// DefaultSuggestions is the number of suggestions attached to a false result.
const DefaultSuggestions = 3

// Result is the outcome of a single query.
type Result struct {
	ID          string        `json:"id"                    yaml:"id"`
	Query       string        `json:"query"                 yaml:"query"`
	Events      []trace.Event `json:"events"                yaml:"events"`
	Suggestions []string      `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Duration    time.Duration `json:"duration"              yaml:"duration"`
	Value       bool          `json:"value"                 yaml:"value"`
}

// Session holds a knowledge base and evaluates queries against it. All methods
// are safe for concurrent use.
type Session struct {
	reporter    trace.Reporter
	tracer      oteltrace.Tracer
	kb          *kb.KnowledgeBase
	metrics     *metrics
	suggestions int
	mu          sync.Mutex
}

// Option configures a [Session].
type Option func(*Session)

// WithRegisterer registers the session's metrics with reg. Without it, metrics
// go to a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Session) {
		s.metrics = newMetrics(reg)
	}
}

// WithTracer sets the OpenTelemetry tracer used for query spans.
func WithTracer(t oteltrace.Tracer) Option {
	return func(s *Session) {
		s.tracer = t
	}
}

// WithReporter forwards trace events to r while a query runs. Events are
// delivered synchronously on the querying goroutine.
func WithReporter(r trace.Reporter) Option {
	return func(s *Session) {
		s.reporter = r
	}
}

// WithSuggestions sets how many suggestions a false result carries. Zero
// disables suggestions.
func WithSuggestions(n int) Option {
	return func(s *Session) {
		s.suggestions = n
	}
}

// New creates a [Session] with an empty knowledge base.
func New(opts ...Option) *Session {
	s := &Session{
		kb:          kb.New(),
		tracer:      otel.Tracer("session"),
		suggestions: DefaultSuggestions,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.NewRegistry())
	}

	s.metrics.observeKB(s.kb)

	return s
}

// SetReporter replaces the reporter used by subsequent queries. See
// [WithReporter].
func (s *Session) SetReporter(r trace.Reporter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reporter = r
}

// KnowledgeBase returns a copy of the current knowledge base.
func (s *Session) KnowledgeBase() *kb.KnowledgeBase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyKB()
}

// copyKB must be called with s.mu held.
func (s *Session) copyKB() *kb.KnowledgeBase {
	c := kb.New()
	for _, f := range s.kb.Facts() {
		c.AddClause(f)
	}

	for _, r := range s.kb.Rules() {
		c.AddClause(r)
	}

	return c
}

// Tell adds a single clause and returns its kind.
func (s *Session) Tell(raw string) clause.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := s.kb.AddClause(raw)
	s.metrics.observeKB(s.kb)

	slog.Debug("clause added", slog.String("kind", kind.String()), slog.String("clause", clause.Normalize(raw)))

	return kind
}

// Add adds one clause per non-blank line of text, keeping existing clauses.
func (s *Session) Add(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.kb.AddText(text)
	s.metrics.observeKB(s.kb)

	return n
}

// Consult replaces the knowledge base with the clauses in text.
func (s *Session) Consult(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.kb.Consult(text)
	s.metrics.observeKB(s.kb)

	slog.Debug("knowledge base consulted", slog.Int("clauses", n))

	return n
}

// Clear empties the knowledge base.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kb.Clear()
	s.metrics.observeKB(s.kb)

	slog.Debug("knowledge base cleared")
}

// Load replaces the knowledge base with the contents of the file at path. On
// error the knowledge base may be empty.
func (s *Session) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.kb.LoadFile(path)
	s.metrics.observeKB(s.kb)

	if err != nil {
		return fmt.Errorf("load %q: %w", path, err)
	}

	slog.Debug("knowledge base loaded",
		slog.String("path", path),
		slog.Int("facts", len(s.kb.Facts())),
		slog.Int("rules", len(s.kb.Rules())),
	)

	return nil
}

// Save writes the knowledge base to the file at path.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kb.SaveFile(path); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}

	slog.Debug("knowledge base saved", slog.String("path", path))

	return nil
}

// Query parses raw (an optional "?-" prefix and trailing "." are accepted)
// and evaluates it with a fresh trace log. The query sees the knowledge base
// as it was when the call started. The session is not locked while the query
// runs, so the reporter may call back into it; clauses it adds are seen by
// later queries only.
func (s *Session) Query(ctx context.Context, raw string) Result {
	s.mu.Lock()
	k := s.copyKB()
	reporter := s.reporter
	s.mu.Unlock()

	q := clause.ParseQuery(raw)

	ctx, span := s.tracer.Start(ctx, "query", oteltrace.WithAttributes(
		attribute.String("pql.query", q),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	e := engine.New(k, engine.WithReporter(reporter))

	start := time.Now()
	value := e.Evaluate(q)
	elapsed := time.Since(start)

	res := Result{
		ID:       uuid.NewString(),
		Query:    q,
		Value:    value,
		Events:   e.Log().Events(),
		Duration: elapsed,
	}

	if !value && s.suggestions > 0 {
		res.Suggestions = k.Suggest(q, s.suggestions)
	}

	s.metrics.observeQuery(value, elapsed.Seconds(), res.Events)

	span.SetAttributes(
		attribute.Bool("pql.result", value),
		attribute.Int("pql.events", len(res.Events)),
	)

	logger.DebugContext(ctx, "query evaluated",
		slog.String("id", res.ID),
		slog.String("query", q),
		slog.Bool("result", value),
		slog.Int("events", len(res.Events)),
		slog.Duration("duration", elapsed),
	)

	return res
}
