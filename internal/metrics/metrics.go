// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const _namespace = "image_moderation"

// Result labels.
const (
	ResultOK                 = "ok"
	ResultInvalidInput       = "invalid_input"
	ResultNotFound           = "not_found"
	ResultStorageFailure     = "storage_failure"
	ResultPersistenceFailure = "persistence_failure"
	ResultError              = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	viewers        prometheus.Gauge
	broadcasts     *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	viewersDropped prometheus.Counter
	relayBatches   *prometheus.CounterVec
	relayEvents    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "operations_total",
			Help:      "Moderation operations by kind and result.",
		}, []string{"operation", "result"}),
		viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: _namespace,
			Name:      "push_viewers",
			Help:      "Currently connected push viewers.",
		}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "push_broadcasts_total",
			Help:      "Events broadcast to viewers by type.",
		}, []string{"type"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "push_deliveries_total",
			Help:      "Frames queued to viewers by type.",
		}, []string{"type"}),
		viewersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "push_viewers_dropped_total",
			Help:      "Viewers disconnected for falling behind.",
		}),
		relayBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "outbox_relay_batches_total",
			Help:      "Outbox batches sent to the event stream by result.",
		}, []string{"result"}),
		relayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "outbox_relay_events_total",
			Help:      "Outbox events sent to the event stream by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.operations,
		m.viewers,
		m.broadcasts,
		m.deliveries,
		m.viewersDropped,
		m.relayBatches,
		m.relayEvents,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation implements moderation.Observer.
func (m *Metrics) ObserveOperation(op string, err error) {
	m.operations.WithLabelValues(op, Result(err)).Inc()
}

// ViewersChanged, EventBroadcast and ViewerDropped implement push.Observer.
func (m *Metrics) ViewersChanged(n int) {
	m.viewers.Set(float64(n))
}

func (m *Metrics) EventBroadcast(topic string, delivered int) {
	m.broadcasts.WithLabelValues(topic).Inc()
	m.deliveries.WithLabelValues(topic).Add(float64(delivered))
}

func (m *Metrics) ViewerDropped() {
	m.viewersDropped.Inc()
}

// BatchRelayed implements outbox.Observer.
func (m *Metrics) BatchRelayed(sent int, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.relayBatches.WithLabelValues(result).Inc()
	m.relayEvents.WithLabelValues(result).Add(float64(sent))
}

// Result maps an operation error to its label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, errs.ErrInvalidInput):
		return ResultInvalidInput
	case errors.Is(err, errs.ErrRecordNotFound):
		return ResultNotFound
	case errors.Is(err, errs.ErrStorageFailure):
		return ResultStorageFailure
	case errors.Is(err, errs.ErrPersistenceFailure):
		return ResultPersistenceFailure
	default:
		return ResultError
	}
}
