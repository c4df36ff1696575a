// Package observability exports recorder metrics to Prometheus.
package observability

import (
	"time"

	"codeberg.org/mutker/cpumon/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cpumon"

// StoreMetrics implements telemetry.Observer on Prometheus collectors.
type StoreMetrics struct {
	ingested      prometheus.Counter
	flushedRows   prometheus.Counter
	flushFailures prometheus.Counter
	rotations     prometheus.Counter
	recreations   prometheus.Counter
	archiveErrors prometheus.Counter
	windowLen     prometheus.Gauge
	flushLatency  prometheus.Histogram

	temperature *prometheus.GaugeVec
	usage       prometheus.Gauge
	powerDraw   prometheus.Gauge
}

var _ telemetry.Observer = (*StoreMetrics)(nil)

// NewStoreMetrics creates the collectors and registers them with reg.
func NewStoreMetrics(reg prometheus.Registerer) (*StoreMetrics, error) {
	m := &StoreMetrics{
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_ingested_total",
			Help:      "Samples handed to the telemetry store.",
		}),
		flushedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_flushed_total",
			Help:      "Rows durably written to day logs.",
		}),
		flushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_failures_total",
			Help:      "Failed attempts to write buffered rows.",
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_rotations_total",
			Help:      "Day log rotations.",
		}),
		recreations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_recreations_total",
			Help:      "Active day logs recreated after being removed.",
		}),
		archiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_errors_total",
			Help:      "Samples that could not be mirrored to the archive.",
		}),
		windowLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_length",
			Help:      "Samples held in the visualization window.",
		}),
		flushLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_latency_seconds",
			Help:      "Time to write and sync buffered rows.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature",
			Help:      "Last ingested CPU temperature.",
		}, []string{"unit"}),
		usage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usage_percent",
			Help:      "Last ingested CPU usage.",
		}),
		powerDraw: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_draw_watts",
			Help:      "Last ingested CPU power draw.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.ingested, m.flushedRows, m.flushFailures, m.rotations, m.recreations,
		m.archiveErrors, m.windowLen, m.flushLatency, m.temperature, m.usage, m.powerDraw,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *StoreMetrics) SampleIngested(windowLen int) {
	m.ingested.Inc()
	m.windowLen.Set(float64(windowLen))
}

func (m *StoreMetrics) Flushed(rows int, elapsed time.Duration) {
	m.flushedRows.Add(float64(rows))
	m.flushLatency.Observe(elapsed.Seconds())
}

func (m *StoreMetrics) FlushFailed(error) {
	m.flushFailures.Inc()
}

func (m *StoreMetrics) Rotated(string) {
	m.rotations.Inc()
}

func (m *StoreMetrics) FileRecreated(string) {
	m.recreations.Inc()
}

// ObserveSample publishes the latest readings.
func (m *StoreMetrics) ObserveSample(rec telemetry.SampleRecord) {
	m.temperature.Reset()
	m.temperature.WithLabelValues(rec.Unit).Set(float64(rec.Temperature))
	m.usage.Set(float64(rec.Usage))
	m.powerDraw.Set(float64(rec.PowerDraw))
}

func (m *StoreMetrics) ArchiveFailed() {
	m.archiveErrors.Inc()
}
