// Package metrics exposes gameplay counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gussgame/src/core/ports"
)

const namespace = "gussgame"

var _ ports.GameMetrics = (*Prometheus)(nil)

// Prometheus records game metrics into its own registry.
type Prometheus struct {
	registry      *prometheus.Registry
	roundsCreated prometheus.Counter
	taps          *prometheus.CounterVec
	pointsAwarded prometheus.Counter
	tapDuration   prometheus.Histogram
}

func NewPrometheus() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		roundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_created_total",
			Help:      "Rounds created by administrators.",
		}),
		taps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taps_total",
			Help:      "Tap attempts by outcome.",
		}, []string{"outcome", "special"}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points added to round totals.",
		}),
		tapDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tap_transaction_seconds",
			Help:      "Duration of the tap transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.roundsCreated,
		m.taps,
		m.pointsAwarded,
		m.tapDuration,
	)
	return m
}

func (m *Prometheus) RoundCreated() {
	m.roundsCreated.Inc()
}

func (m *Prometheus) TapRecorded(outcome ports.TapOutcome, special bool, points int64, elapsed time.Duration) {
	m.taps.WithLabelValues(string(outcome), strconv.FormatBool(special)).Inc()
	if points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
	m.tapDuration.Observe(elapsed.Seconds())
}

// Registry returns the registry every game and runtime collector is on.
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Prometheus) Handler() http.Handler {
	reg := m.Registry()
	return promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
