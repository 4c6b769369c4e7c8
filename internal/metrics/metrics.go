// Package metrics records pipeline runs in a private Prometheus registry and
// writes them in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/shaderbuild/internal/pipeline"
)

const namespace = "shaderbuild"

// Recorder holds the run metrics.
type Recorder struct {
	registry *prometheus.Registry

	artifactsCompiled   prometheus.Counter
	objectsDiscovered   prometheus.Gauge
	staleObjectsRemoved prometheus.Counter
	synthesisRuns       *prometheus.CounterVec
	runDuration         *prometheus.HistogramVec
}

// New returns a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		artifactsCompiled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_compiled_total",
			Help:      "Number of shader pairs compiled.",
		}),
		objectsDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "objects_discovered",
			Help:      "Number of shader objects found by the last synthesis.",
		}),
		staleObjectsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_objects_removed_total",
			Help:      "Number of unreferenced object files deleted.",
		}),
		synthesisRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_runs_total",
			Help:      "Number of aggregator rewrites by reason.",
		}, []string{"reason"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"result"}), // "success" or "error"
	}

	r.registry.MustRegister(
		r.artifactsCompiled,
		r.objectsDiscovered,
		r.staleObjectsRemoved,
		r.synthesisRuns,
		r.runDuration,
	)
	return r
}

// Record adds one run. report may be nil when the run failed early.
func (r *Recorder) Record(report *pipeline.Report, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.runDuration.WithLabelValues(result).Observe(elapsed.Seconds())

	if report == nil {
		return
	}
	r.artifactsCompiled.Add(float64(len(report.Compiled)))
	r.staleObjectsRemoved.Add(float64(len(report.Removed)))
	if report.Synthesized {
		r.synthesisRuns.WithLabelValues(report.Reason).Inc()
		r.objectsDiscovered.Set(float64(len(report.Objects)))
	}
}

// WriteFile writes every metric to path. The file is replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
