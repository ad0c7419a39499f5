package cache

import "github.com/prometheus/client_golang/prometheus"

// Index names used as metric label values and log attributes.
const (
	indexByID         = "id"
	indexByName       = "name"
	indexByDefinition = "definition"
	indexFilter       = "filter"
)

const (
	resultHit  = "hit"
	resultMiss = "miss"
)

type metrics struct {
	lookups *prometheus.CounterVec
	fetches *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dom",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by entity type, index and result.",
		}, []string{"entity", "index", "result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dom",
			Subsystem: "cache",
			Name:      "fetches_total",
			Help:      "Round-trips to the object store issued by the cache.",
		}, []string{"entity", "index"}),
	}
	if reg != nil {
		reg.MustRegister(m.lookups, m.fetches)
	}
	return m
}

func (m *metrics) lookup(entity, index string, hit bool) {
	result := resultMiss
	if hit {
		result = resultHit
	}
	m.lookups.WithLabelValues(entity, index, result).Inc()
}

func (m *metrics) fetch(entity, index string) {
	m.fetches.WithLabelValues(entity, index).Inc()
}
