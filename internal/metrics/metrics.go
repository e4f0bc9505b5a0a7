// Package metrics defines the Prometheus collectors exported by habmon.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/habmon/habmon/internal/models"
)

// Tick results.
const (
	ResultOK      = "ok"
	ResultPartial = "partial"
	ResultError   = "error"
)

// Metrics holds every habmon collector. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	decayTicks            *prometheus.CounterVec
	decayTickDuration     prometheus.Histogram
	decayResourcesChanged prometheus.Counter

	resourcePercentage *prometheus.GaugeVec
	resourceCritical   *prometheus.GaugeVec

	realtimeSubscribers    prometheus.Gauge
	realtimeEvents         *prometheus.CounterVec
	realtimeDeliveryErrors *prometheus.CounterVec
}

// New creates collectors registered on a fresh registry that also carries
// the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := NewWithRegisterer(reg)
	m.registry = reg
	return m
}

// NewWithRegisterer creates collectors registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.decayTicks = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habmon_decay_ticks_total",
			Help: "decay ticks run, by result",
		},
		[]string{"result"},
	)
	m.decayTickDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "habmon_decay_tick_duration_seconds",
			Help:    "wall time spent applying one decay tick",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
	m.decayResourcesChanged = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "habmon_decay_resources_changed_total",
			Help: "resources whose quantity changed in a decay tick",
		},
	)

	m.resourcePercentage = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "habmon_resource_percentage",
			Help: "current fill percentage of a resource",
		},
		[]string{"code"},
	)
	m.resourceCritical = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "habmon_resource_critical",
			Help: "1 if a resource is critical, else 0",
		},
		[]string{"code"},
	)

	m.realtimeSubscribers = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "habmon_realtime_subscribers",
			Help: "connected realtime subscribers",
		},
	)
	m.realtimeEvents = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habmon_realtime_events_total",
			Help: "realtime events published, by type",
		},
		[]string{"type"},
	)
	m.realtimeDeliveryErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habmon_realtime_delivery_errors_total",
			Help: "realtime events dropped for a subscriber, by type",
		},
		[]string{"type"},
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format. It
// falls back to the default gatherer when the metrics were not built by New.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTick records one decay tick.
func (m *Metrics) ObserveTick(d time.Duration, changed int, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	switch {
	case err != nil && changed > 0:
		result = ResultPartial
	case err != nil:
		result = ResultError
	}
	m.decayTicks.WithLabelValues(result).Inc()
	m.decayTickDuration.Observe(d.Seconds())
	m.decayResourcesChanged.Add(float64(changed))
}

// SetResources sets the per-resource gauges from cards.
func (m *Metrics) SetResources(cards []models.ResourceCard) {
	for _, c := range cards {
		m.setResource(c)
	}
}

// ForgetResource drops the gauges of a deleted resource.
func (m *Metrics) ForgetResource(code string) {
	if m == nil {
		return
	}
	m.resourcePercentage.DeleteLabelValues(code)
	m.resourceCritical.DeleteLabelValues(code)
}

func (m *Metrics) setResource(c models.ResourceCard) {
	if m == nil {
		return
	}
	m.resourcePercentage.WithLabelValues(c.Code).Set(c.CurrentPercentage)
	critical := 0.0
	if c.IsCritical {
		critical = 1
	}
	m.resourceCritical.WithLabelValues(c.Code).Set(critical)
}

// OnResourceChanged updates the resource gauges.
func (m *Metrics) OnResourceChanged(_ context.Context, c models.ResourceCard) error {
	m.setResource(c)
	return nil
}

// OnResourceCritical is a no-op; the critical gauge is set on change.
func (m *Metrics) OnResourceCritical(context.Context, models.ResourceCard) error {
	return nil
}

// OnResourceDeleted drops the gauges of the deleted resource.
func (m *Metrics) OnResourceDeleted(_ context.Context, code string) error {
	m.ForgetResource(code)
	return nil
}

// SubscriberAdded increments the subscriber gauge.
func (m *Metrics) SubscriberAdded() {
	if m != nil {
		m.realtimeSubscribers.Inc()
	}
}

// SubscriberRemoved decrements the subscriber gauge.
func (m *Metrics) SubscriberRemoved() {
	if m != nil {
		m.realtimeSubscribers.Dec()
	}
}

// EventPublished counts a realtime event.
func (m *Metrics) EventPublished(eventType string) {
	if m != nil {
		m.realtimeEvents.WithLabelValues(eventType).Inc()
	}
}

// DeliveryFailed counts an event a subscriber did not receive.
func (m *Metrics) DeliveryFailed(eventType string) {
	if m != nil {
		m.realtimeDeliveryErrors.WithLabelValues(eventType).Inc()
	}
}
