package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics covers the results API beyond the generic HTTP middleware: how often a
// table is served from cache and how long a file load takes.
type APIMetrics struct {
	loads   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	f := promauto.With(reg)
	return &APIMetrics{
		loads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finmerge",
				Subsystem: "api",
				Name:      "table_loads_total",
				Help:      "Table reads by table and result (hit, miss, error)",
			},
			[]string{"table", "result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finmerge",
				Subsystem: "api",
				Name:      "table_load_seconds",
				Help:      "Time spent reading a table from disk",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"table"},
		),
	}
}

func (m *APIMetrics) Hit(table string)   { m.loads.WithLabelValues(table, "hit").Inc() }
func (m *APIMetrics) Error(table string) { m.loads.WithLabelValues(table, "error").Inc() }

func (m *APIMetrics) Miss(table string, seconds float64) {
	m.loads.WithLabelValues(table, "miss").Inc()
	m.latency.WithLabelValues(table).Observe(seconds)
}
