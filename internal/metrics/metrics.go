// Package metrics exposes prometheus collectors for booking operations and
// persistence.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	saves      prometheus.Histogram
	bookings   prometheus.Gauge
	events     *prometheus.CounterVec
}

// New registers the collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "operations_total",
			Help:      "Booking service operations by name and result.",
		}, []string{"operation", "result"}),
		saves: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cinema",
			Name:      "snapshot_save_seconds",
			Help:      "Time spent persisting a full snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		bookings: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cinema",
			Name:      "active_bookings",
			Help:      "Bookings currently held in the ledger.",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "events_published_total",
			Help:      "Booking events handed to the publisher by result.",
		}, []string{"result"}),
	}
}

// Operation counts one finished operation. result is "ok" or an error kind.
func (m *Metrics) Operation(name, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(name, result).Inc()
}

// ObserveSave records how long a snapshot save took.
func (m *Metrics) ObserveSave(d time.Duration) {
	if m == nil {
		return
	}
	m.saves.Observe(d.Seconds())
}

// SetActiveBookings updates the ledger size gauge.
func (m *Metrics) SetActiveBookings(n int) {
	if m == nil {
		return
	}
	m.bookings.Set(float64(n))
}

// EventPublished counts publish attempts by outcome.
func (m *Metrics) EventPublished(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.events.WithLabelValues(result).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
