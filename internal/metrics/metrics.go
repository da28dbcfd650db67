// Package metrics counts what an import run does and exports the counts in
// the Prometheus text format.
//
// A run is a batch job, so nothing is served over HTTP: the collector writes
// a textfile for node_exporter's textfile collector when the run ends.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vvka-141/flrload/pkg/flrload"
)

const namespace = "flrload"

// Collector holds the metrics of one run on its own registry.
type Collector struct {
	registry *prometheus.Registry

	recordsDecoded *prometheus.CounterVec
	batchesFlushed *prometheus.CounterVec
	rowsWritten    *prometheus.CounterVec
	flushSeconds   *prometheus.HistogramVec
	flushFailures  *prometheus.CounterVec
	failures       *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		recordsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decoded_total",
			Help:      "Records decoded from the input file.",
		}, []string{"record_type"}),
		batchesFlushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_flushed_total",
			Help:      "Batches accepted by the sink.",
		}, []string{"target"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows accepted by the sink.",
		}, []string{"target"}),
		flushSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_flush_seconds",
			Help:      "Time spent in one bulk write.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"target"}),
		flushFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_flush_failures_total",
			Help:      "Bulk writes rejected by the sink.",
		}, []string{"target"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_failures_total",
			Help:      "Failed runs by kind of the error that ended them.",
		}, []string{"kind"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	c.registry.MustRegister(c.recordsDecoded, c.batchesFlushed, c.rowsWritten, c.flushSeconds, c.flushFailures, c.failures, c.lastRun)
	return c
}

// Registry exposes the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordDecoded counts one decoded record.
func (c *Collector) RecordDecoded(rt flrload.RecordType) {
	c.recordsDecoded.WithLabelValues(string(rt)).Inc()
}

// BatchFlushed observes one flush attempt. A rejected write is counted per
// target; the run it ends is counted once by RunFailed.
func (c *Collector) BatchFlushed(target string, rows int, elapsed time.Duration, err error) {
	c.flushSeconds.WithLabelValues(target).Observe(elapsed.Seconds())
	if err != nil {
		c.flushFailures.WithLabelValues(target).Inc()
		return
	}
	c.batchesFlushed.WithLabelValues(target).Inc()
	c.rowsWritten.WithLabelValues(target).Add(float64(rows))
}

// RunFailed counts a failed run by the kind of its error.
func (c *Collector) RunFailed(err error) {
	c.failures.WithLabelValues(Kind(err)).Inc()
}

// Finish stamps the end of the run.
func (c *Collector) Finish(at time.Time) {
	c.lastRun.Set(float64(at.Unix()))
}

// WriteFile writes all metrics to path in the text format.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Kind labels an error by its exit code class.
func Kind(err error) string {
	switch flrload.ExitCodeForError(err) {
	case flrload.ExitConfigError:
		return "config"
	case flrload.ExitConnectionError:
		return "connection"
	case flrload.ExitDecodeError:
		return "decode"
	case flrload.ExitImportFailed:
		return "batch"
	case flrload.ExitInterrupted:
		return "interrupted"
	default:
		return "other"
	}
}
