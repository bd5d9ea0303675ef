package metrics

import (
	"clubvote/contexts/club-elections/ballot-engine/ports"

	"github.com/prometheus/client_golang/prometheus"
)

// Telemetry exports ballot outcomes and transaction retries as Prometheus
// counters.
type Telemetry struct {
	outcomes *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

func NewTelemetry(registerer prometheus.Registerer) (*Telemetry, error) {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clubvote",
		Subsystem: "ballot",
		Name:      "operations_total",
		Help:      "Ballot engine write operations by outcome.",
	}, []string{"operation", "outcome"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clubvote",
		Subsystem: "ballot",
		Name:      "tx_retries_total",
		Help:      "Ledger transactions retried after a transient conflict.",
	}, []string{"operation"})

	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	for _, collector := range []prometheus.Collector{outcomes, retries} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return &Telemetry{outcomes: outcomes, retries: retries}, nil
}

func (t *Telemetry) RecordOutcome(operation string, outcome string) {
	t.outcomes.WithLabelValues(operation, outcome).Inc()
}

func (t *Telemetry) RecordRetry(operation string) {
	t.retries.WithLabelValues(operation).Inc()
}

var _ ports.Telemetry = (*Telemetry)(nil)
