package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartSyncMetrics records how the client cart store talks to the remote cart service.
type CartSyncMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
	stale    *prometheus.CounterVec
	lines    prometheus.Gauge
}

// NewCartSyncMetrics registers the cart sync metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCartSyncMetrics(reg prometheus.Registerer) *CartSyncMetrics {
	if reg == nil {
		return &CartSyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of remote cart calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure",
		Help: "Remote cart calls that failed.",
	}, []string{"op"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_stale_discarded",
		Help: "Remote cart responses dropped because a newer request or binding superseded them.",
	}, []string{"op"})
	lines := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_lines",
		Help: "Lines currently held by the cart store.",
	})
	reg.MustRegister(duration, failure, stale, lines)
	return &CartSyncMetrics{
		duration: duration,
		failure:  failure,
		stale:    stale,
		lines:    lines,
	}
}

func (c *CartSyncMetrics) ObserveDuration(op string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

func (c *CartSyncMetrics) IncFailure(op string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(op)).Inc()
}

func (c *CartSyncMetrics) IncStale(op string) {
	if c == nil || c.stale == nil {
		return
	}
	c.stale.WithLabelValues(normalizeLabel(op)).Inc()
}

func (c *CartSyncMetrics) SetLines(n int) {
	if c == nil || c.lines == nil {
		return
	}
	c.lines.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
