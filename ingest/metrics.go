package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ingest activity. Register one instance per process and
// share it across inputs.
type Metrics struct {
	// Runs counts completed runs by sync outcome.
	Runs *prometheus.CounterVec

	// Events counts records emitted to the event stream.
	Events prometheus.Counter

	// Errors counts failed runs.
	Errors prometheus.Counter
}

// NewMetrics creates and registers ingest metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panw",
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Completed ingest runs by sync outcome.",
		}, []string{"outcome"}),
		Events: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "panw",
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Records emitted to the event stream.",
		}),
		Errors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "panw",
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Ingest runs that failed.",
		}),
	}
}
