// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the collectors for one process. A CLI run is short-lived,
// so the registry is gathered once at exit instead of being scraped.
var Registry = prometheus.NewRegistry()

var (
	UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_upstream_calls_total",
			Help: "Total number of calls to the hosted parse/reasoning API",
		},
		[]string{"capability", "outcome"},
	)

	UpstreamCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navigator_upstream_call_duration_seconds",
			Help:    "Duration of calls to the hosted parse/reasoning API",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"capability"},
	)

	StateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_state_transitions_total",
			Help: "Orchestrator state transitions",
		},
		[]string{"from", "to"},
	)

	ClarifyingQuestions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "navigator_clarifying_questions",
			Help: "Number of clarifying questions asked in the current run",
		},
	)

	RunsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_runs_total",
			Help: "Runs by terminal state and error code",
		},
		[]string{"state", "error_code"},
	)
)

func init() {
	Registry.MustRegister(UpstreamCalls, UpstreamCallDuration, StateTransitions, ClarifyingQuestions, RunsFinished)
}

// ObserveCall records one upstream call.
func ObserveCall(capability string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamCalls.WithLabelValues(capability, outcome).Inc()
	UpstreamCallDuration.WithLabelValues(capability).Observe(time.Since(started).Seconds())
}

// WriteTextfile dumps the registry, plus any extra gatherers, in the
// node-exporter textfile format. Nil gatherers are skipped.
func WriteTextfile(path string, extra ...prometheus.Gatherer) error {
	gatherers := prometheus.Gatherers{Registry}
	for _, g := range extra {
		if g != nil {
			gatherers = append(gatherers, g)
		}
	}
	return prometheus.WriteToTextfile(path, gatherers)
}
