// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package devserver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors updated by the [Handler]. A nil *Metrics
// records nothing.
type Metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	includes   *prometheus.CounterVec
	logEntries prometheus.Counter
}

// NewMetrics creates collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devserve_requests_total",
				Help: "Total HTTP requests by route.",
			},
			[]string{"route"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devserve_request_duration_seconds",
				Help:    "Request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		includes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devserve_includes_total",
				Help: "Include directives processed, by result.",
			},
			[]string{"result"},
		),
		logEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devserve_log_entries_total",
			Help: "Log entries appended through /log.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.includes, m.logEntries)
	return m
}

func (m *Metrics) observeRequest(rt route, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(rt.String()).Inc()
	// Stream durations are not latencies.
	if rt != routeStream {
		m.duration.WithLabelValues(rt.String()).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) observeIncludes(resolved, missing int) {
	if m == nil {
		return
	}
	m.includes.WithLabelValues("resolved").Add(float64(resolved))
	m.includes.WithLabelValues("missing").Add(float64(missing))
}

func (m *Metrics) observeLogEntry() {
	if m == nil {
		return
	}
	m.logEntries.Inc()
}
