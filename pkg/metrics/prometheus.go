package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	items       *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	sinkWrites  *prometheus.CounterVec
	rows        *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder whose collectors are registered with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		items: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmerge_items_total",
				Help: "Processed items by pipeline and outcome (ok, failed, empty)",
			},
			[]string{"pipeline", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmerge_errors_total",
				Help: "Total number of errors encountered by kind",
			},
			[]string{"pipeline", "kind"},
		),
		sinkWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmerge_sink_writes_total",
				Help: "Optional sink writes by sink and outcome",
			},
			[]string{"sink", "outcome"},
		),
		rows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmerge_rows_written_total",
				Help: "Rows written to output files",
			},
			[]string{"pipeline"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finmerge_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordItem records the outcome of one processed item.
func (r *Recorder) RecordItem(pipeline, outcome string) {
	r.items.WithLabelValues(pipeline, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(pipeline, kind string) {
	r.errorsTotal.WithLabelValues(pipeline, kind).Inc()
}

// RecordSinkWrite records an optional sink write.
func (r *Recorder) RecordSinkWrite(sink string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	r.sinkWrites.WithLabelValues(sink, outcome).Inc()
}

// RecordRows adds n written rows.
func (r *Recorder) RecordRows(pipeline string, n int) {
	r.rows.WithLabelValues(pipeline).Add(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
