package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/macropower/pql/pkg/clause"
	"github.com/macropower/pql/pkg/kb"
	"github.com/macropower/pql/pkg/trace"
)

const namespace = "pql"

type metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
	events   *prometheus.CounterVec
	clauses  *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	return &metrics{
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Evaluated queries by result.",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent evaluating a query.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trace_events_total",
			Help:      "Emitted trace events by kind.",
		}, []string{"kind"}),
		clauses: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clauses",
			Help:      "Clauses in the knowledge base by kind.",
		}, []string{"kind"}),
	}
}

func (m *metrics) observeQuery(value bool, seconds float64, events []trace.Event) {
	result := "false"
	if value {
		result = "true"
	}

	m.queries.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)

	for kind, n := range trace.Count(events) {
		m.events.WithLabelValues(string(kind)).Add(float64(n))
	}
}

func (m *metrics) observeKB(k *kb.KnowledgeBase) {
	m.clauses.WithLabelValues(clause.KindFact.String()).Set(float64(len(k.Facts())))
	m.clauses.WithLabelValues(clause.KindRule.String()).Set(float64(len(k.Rules())))
}
