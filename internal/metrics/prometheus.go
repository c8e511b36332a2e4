// Package metrics exposes Prometheus counters for assessments, backtests and bot usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the application collectors.
type Recorder struct {
	assessments   *prometheus.CounterVec
	simulations   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	commands      *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	simDuration   prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		assessments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_assessments_total",
				Help: "Completed questionnaires by resulting tier",
			},
			[]string{"tier"},
		),
		simulations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_simulations_total",
				Help: "Portfolio backtests by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_errors_total",
				Help: "Errors by kind",
			},
			[]string{"kind"},
		),
		commands: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_bot_commands_total",
				Help: "Telegram commands received",
			},
			[]string{"command"},
		),
		fetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_price_fetch_duration_seconds",
			Help:    "Time spent fetching price history",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		simDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_simulation_duration_seconds",
			Help:    "Time spent in a full backtest including fetches",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) RecordAssessment(tier string) {
	if r == nil {
		return
	}
	r.assessments.WithLabelValues(tier).Inc()
}

// RecordSimulation counts a backtest outcome ("ok", "insufficient_data", "unavailable", "invalid").
func (r *Recorder) RecordSimulation(outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.simulations.WithLabelValues(outcome).Inc()
	r.simDuration.Observe(seconds)
}

func (r *Recorder) RecordFetch(seconds float64) {
	if r == nil {
		return
	}
	r.fetchDuration.Observe(seconds)
}

func (r *Recorder) RecordError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordCommand(command string) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command).Inc()
}
