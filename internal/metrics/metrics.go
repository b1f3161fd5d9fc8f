// Package metrics exposes Prometheus counters for call parsing.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

// Document outcomes.
const (
	OutcomeParsed  = "parsed"
	OutcomeNoTable = "no_table"
	OutcomeFailed  = "failed"
)

// ParseMetrics holds the metrics recorded per parsed document.
type ParseMetrics struct {
	DocumentsTotal *prometheus.CounterVec
	RowsTotal      *prometheus.CounterVec
	TurnsTotal     *prometheus.CounterVec
	ParseSeconds   *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *ParseMetrics
)

// Default returns the metrics registered with the default Prometheus
// registry. Registration happens once per process.
func Default() *ParseMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *ParseMetrics {
	factory := promauto.With(reg)

	return &ParseMetrics{
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_documents_total",
				Help: "Call documents processed by outcome",
			},
			[]string{"surface", "outcome"},
		),
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_rows_total",
				Help: "Table rows seen by classification",
			},
			[]string{"surface", "kind"},
		),
		TurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_turns_total",
				Help: "Dialogue turns extracted by role",
			},
			[]string{"surface", "role"},
		),
		ParseSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mango_parse_seconds",
				Help:    "Time to decode and parse one document",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"surface"},
		),
	}
}

// RecordParsed records a successfully parsed document.
func (m *ParseMetrics) RecordParsed(surface string, res *callparse.Result, seconds float64) {
	if m == nil {
		return
	}
	m.DocumentsTotal.WithLabelValues(surface, OutcomeParsed).Inc()
	m.ParseSeconds.WithLabelValues(surface).Observe(seconds)

	m.RowsTotal.WithLabelValues(surface, callparse.RowBanner.String()).Add(float64(res.Stats.BannerRows))
	m.RowsTotal.WithLabelValues(surface, callparse.RowLabelValue.String()).Add(float64(res.Stats.LabelValueRows))
	m.RowsTotal.WithLabelValues(surface, callparse.RowDialogue.String()).Add(float64(res.Stats.DialogueRows))
	m.RowsTotal.WithLabelValues(surface, callparse.RowIgnored.String()).Add(float64(res.Stats.IgnoredRows))

	for _, t := range res.Turns {
		m.TurnsTotal.WithLabelValues(surface, string(t.RoleEN)).Inc()
	}
}

// RecordFailure records a document that produced no records.
func (m *ParseMetrics) RecordFailure(surface, outcome string) {
	if m == nil {
		return
	}
	m.DocumentsTotal.WithLabelValues(surface, outcome).Inc()
}
