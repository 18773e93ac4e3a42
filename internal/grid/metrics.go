package grid

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dispatcher activity in a private registry that is dumped
// to a node_exporter textfile at the end of a run. A nil *Metrics is a
// no-op.
type Metrics struct {
	reg      *prometheus.Registry
	grids    prometheus.Counter
	bytes    prometheus.Counter
	failures prometheus.Counter
	requests prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		grids: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdutils",
			Subsystem: "xyzgrid",
			Name:      "grids_total",
			Help:      "Grid images written.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdutils",
			Subsystem: "xyzgrid",
			Name:      "image_bytes_total",
			Help:      "Bytes of grid images written.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdutils",
			Subsystem: "xyzgrid",
			Name:      "failures_total",
			Help:      "Requests that aborted the run.",
		}),
		requests: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sdutils",
			Subsystem: "xyzgrid",
			Name:      "request_seconds",
			Help:      "txt2img request latency.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	m.reg.MustRegister(m.grids, m.bytes, m.failures, m.requests)
	return m
}

func (m *Metrics) observeRequest(seconds float64) {
	if m != nil {
		m.requests.Observe(seconds)
	}
}

func (m *Metrics) saved(n int) {
	if m != nil {
		m.grids.Inc()
		m.bytes.Add(float64(n))
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.failures.Inc()
	}
}

// WriteFile writes the metrics in text exposition format, atomically.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
