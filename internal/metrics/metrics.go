// Package metrics holds the domain-level prometheus collectors. A nil *Metrics
// is valid and records nothing, which keeps unit tests free of registries.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Filter reasons reported by the retrieval coordinator.
const (
	ReasonPolicy          = "policy"
	ReasonMissingMetadata = "missing_metadata"
)

// Metrics groups the collectors registered for the service.
type Metrics struct {
	retrievalRounds    prometheus.Histogram
	retrievalFiltered  *prometheus.CounterVec
	auditWriteFailures prometheus.Counter
	quorumViolations   prometheus.Counter
}

// New creates and registers the domain collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		retrievalRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docrag_retrieval_rounds",
			Help:    "Number of over-fetch rounds needed per policy-filtered search.",
			Buckets: []float64{1, 2, 3, 4, 5, 6},
		}),
		retrievalFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docrag_retrieval_filtered_total",
			Help: "Candidates removed before generation, by reason.",
		}, []string{"reason"}),
		auditWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docrag_audit_write_failures_total",
			Help: "Audit events that could not be persisted.",
		}),
		quorumViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docrag_quorum_violations_total",
			Help: "Membership mutations rejected because they would remove the last admin.",
		}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{m.retrievalRounds, m.retrievalFiltered, m.auditWriteFailures, m.quorumViolations} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) ObserveRetrievalRounds(n int) {
	if m == nil {
		return
	}
	m.retrievalRounds.Observe(float64(n))
}

func (m *Metrics) AddFiltered(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.retrievalFiltered.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) AuditWriteFailed() {
	if m == nil {
		return
	}
	m.auditWriteFailures.Inc()
}

func (m *Metrics) QuorumViolation() {
	if m == nil {
		return
	}
	m.quorumViolations.Inc()
}
