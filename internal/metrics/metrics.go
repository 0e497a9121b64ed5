// Package metrics exposes Prometheus instruments for the lookup path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeTransport   = "transport_error"
	OutcomeMalformed   = "malformed_response"
	OutcomePersistence = "persistence_error"
)

type Metrics struct {
	lookups         *prometheus.CounterVec
	registryLatency prometheus.Histogram
	eventFailures   prometheus.Counter
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brreg",
			Name:      "lookups_total",
			Help:      "Organization lookups by outcome.",
		}, []string{"outcome"}),
		registryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brreg",
			Name:      "registry_request_duration_seconds",
			Help:      "Latency of registry requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		eventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brreg",
			Name:      "event_publish_failures_total",
			Help:      "Upsert events that could not be published.",
		}),
	}
	for _, c := range []prometheus.Collector{m.lookups, m.registryLatency, m.eventFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordLookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRegistry(d time.Duration) {
	if m == nil {
		return
	}
	m.registryLatency.Observe(d.Seconds())
}

func (m *Metrics) RecordEventFailure() {
	if m == nil {
		return
	}
	m.eventFailures.Inc()
}
