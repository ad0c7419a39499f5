package memory

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests *prometheus.CounterVec
}

// newMetrics builds the store collectors and registers them when reg is not nil.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dom",
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Requests handled by the in-memory object store, by kind and entity type.",
		}, []string{"kind", "entity"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests)
	}
	return m
}
