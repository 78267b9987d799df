package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeOK labels a run that produced an attestation. Failed runs are
// labelled with their domain error code.
const OutcomeOK = "ok"

// Metrics holds the Prometheus collectors for proof runs.
type Metrics struct {
	Runs                *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	PredicatesEvaluated prometheus.Counter
	BatchSize           prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vcproof_runs_total",
			Help: "Total number of verification runs, labeled by flow and outcome",
		}, []string{"flow", "outcome"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vcproof_run_duration_seconds",
			Help:    "Duration of verification runs in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"flow"}),
		PredicatesEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "vcproof_predicates_evaluated_total",
			Help: "Total number of predicates submitted for evaluation",
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vcproof_batch_size",
			Help:    "Number of requests per batch",
			Buckets: []float64{1, 2, 4, 8, 16, 32},
		}),
	}
}

// ObserveRun counts a run and records its duration.
func (m *Metrics) ObserveRun(flow, outcome string, durationSeconds float64) {
	m.Runs.WithLabelValues(flow, outcome).Inc()
	m.RunDuration.WithLabelValues(flow).Observe(durationSeconds)
}

func (m *Metrics) AddPredicates(n int) {
	m.PredicatesEvaluated.Add(float64(n))
}

func (m *Metrics) ObserveBatchSize(n int) {
	m.BatchSize.Observe(float64(n))
}
