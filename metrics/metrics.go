// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DaemonMetrics bundles the Prometheus collectors instrumenting a single
// background daemon: how many operations were submitted, executed, discarded
// unexecuted, or failed, the current queue depth, and the execution duration
// distribution.
//
// All methods are nil-safe, so daemons can be run entirely without metrics by
// simply not passing any.
type DaemonMetrics struct {
	submitted prometheus.Counter
	executed  prometheus.Counter
	discarded prometheus.Counter
	failed    prometheus.Counter
	depth     prometheus.Gauge
	duration  prometheus.Histogram
}

// NewDaemonMetrics returns daemon metrics collectors named after the
// specified subsystem (such as "dns"). The collectors still need to be
// registered with a Prometheus registry, see [DaemonMetrics.Register].
func NewDaemonMetrics(subsystem string) *DaemonMetrics {
	return &DaemonMetrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netherd", Subsystem: subsystem,
			Name: "operations_submitted_total",
			Help: "Total number of operations submitted to the daemon queue.",
		}),
		executed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netherd", Subsystem: subsystem,
			Name: "operations_executed_total",
			Help: "Total number of operations the daemon executed.",
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netherd", Subsystem: subsystem,
			Name: "operations_discarded_total",
			Help: "Total number of operations discarded unexecuted, either abandoned by their producers or dropped at shutdown.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netherd", Subsystem: subsystem,
			Name: "operations_failed_total",
			Help: "Total number of executed operations that reported failure.",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netherd", Subsystem: subsystem,
			Name: "queue_depth",
			Help: "Current number of operations waiting in the daemon queue.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "netherd", Subsystem: subsystem,
			Name: "operation_duration_seconds",
			Help: "Distribution of operation execution durations.",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
			},
		}),
	}
}

// Register registers all collectors with the specified registerer.
func (m *DaemonMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.submitted, m.executed, m.discarded, m.failed, m.depth, m.duration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Submitted counts an operation entering the queue.
func (m *DaemonMetrics) Submitted() {
	if m == nil {
		return
	}
	m.submitted.Inc()
}

// Executed counts an executed operation together with its duration.
func (m *DaemonMetrics) Executed(d time.Duration) {
	if m == nil {
		return
	}
	m.executed.Inc()
	m.duration.Observe(d.Seconds())
}

// Discarded counts operations dropped without execution.
func (m *DaemonMetrics) Discarded(n int) {
	if m == nil {
		return
	}
	m.discarded.Add(float64(n))
}

// Failed counts an executed operation that reported failure.
func (m *DaemonMetrics) Failed() {
	if m == nil {
		return
	}
	m.failed.Inc()
}

// QueueDepth records the current queue depth.
func (m *DaemonMetrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.depth.Set(float64(n))
}
