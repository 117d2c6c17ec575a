package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline holds the counters the batch run and the live API report.
type Pipeline struct {
	BatchRuns         *prometheus.CounterVec
	RequestsProcessed prometheus.Counter
	ArtifactsCreated  *prometheus.CounterVec
	QueueLength       prometheus.Gauge
}

// NewPipeline registers the pipeline metrics on a registerer. Pass
// prometheus.DefaultRegisterer in the binaries; tests use a fresh
// registry to avoid duplicate registration.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	factory := promauto.With(reg)
	return &Pipeline{
		BatchRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sleep_batch_runs_total",
			Help: "Batch runs by result (ok or aborted).",
		}, []string{"result"}),
		RequestsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sleep_batch_requests_processed_total",
			Help: "Queued requests fulfilled by batch runs.",
		}),
		ArtifactsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sleep_artifacts_created_total",
			Help: "Artifacts recorded, by kind (requested or daily).",
		}, []string{"kind"}),
		QueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sleep_pending_queue_length",
			Help: "Pending requests observed at the last queue read.",
		}),
	}
}
