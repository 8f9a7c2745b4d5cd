package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters of a polling session.
type Metrics struct {
	Samples             prometheus.Counter // Completed sampling passes
	CommunicationErrors prometheus.Counter // Transport failures seen
	Connects            prometheus.Counter // Connection attempts
	RetryAttempt        prometheus.Gauge   // Current consecutive failure count
}

// NewMetrics creates the session metrics and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jmxstat_samples_total",
			Help: "Total sampling passes written to the output.",
		}),
		CommunicationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jmxstat_communication_errors_total",
			Help: "Total transport failures while connecting or sampling.",
		}),
		Connects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jmxstat_connects_total",
			Help: "Total connection attempts to the endpoint.",
		}),
		RetryAttempt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jmxstat_retry_attempt",
			Help: "Consecutive failures since the last successful sample.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Samples, m.CommunicationErrors, m.Connects, m.RetryAttempt)
	}
	return m
}
