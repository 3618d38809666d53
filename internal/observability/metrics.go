package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	handshakes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "syncwire",
			Subsystem: "handshake",
			Name:      "completed_total",
			Help:      "Completed handshake attempts.",
		},
		[]string{"role", "transport", "result"},
	)
	handshakeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "syncwire",
			Subsystem: "handshake",
			Name:      "duration_seconds",
			Help:      "Handshake duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"role", "transport", "result"},
	)
	negotiatedVersions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "syncwire",
			Subsystem: "handshake",
			Name:      "negotiated_version_total",
			Help:      "Sessions by agreed protocol version.",
		},
		[]string{"version"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(handshakes, handshakeDuration, negotiatedVersions)
	})
}

// RecordHandshake tracks one handshake attempt. result is "ok" or an error
// category; version is empty for failed attempts.
func RecordHandshake(role, transport, result, version string, duration time.Duration) {
	RegisterMetrics()
	handshakes.WithLabelValues(role, transport, result).Inc()
	handshakeDuration.WithLabelValues(role, transport, result).Observe(duration.Seconds())
	if result == "ok" && version != "" {
		negotiatedVersions.WithLabelValues(version).Inc()
	}
}
