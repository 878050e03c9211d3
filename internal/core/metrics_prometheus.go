package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsRecorder exports operation counters, latency histograms,
// and state gauges to a Prometheus registry.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	contacts   prometheus.Gauge
	undoDepth  prometheus.Gauge
	redoDepth  prometheus.Gauge
}

// NewPrometheusMetricsRecorder registers the contactbook collectors with reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetricsRecorder{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactbook",
			Name:      "operations_total",
			Help:      "Contact book operations by name and outcome.",
		}, []string{"operation", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contactbook",
			Name:      "operation_duration_seconds",
			Help:      "Contact book operation latency.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"operation"}),
		contacts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "contactbook",
			Name:      "contacts",
			Help:      "Number of contacts in the store.",
		}),
		undoDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "contactbook",
			Name:      "undo_depth",
			Help:      "Number of actions that can be undone.",
		}),
		redoDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "contactbook",
			Name:      "redo_depth",
			Help:      "Number of queued redo entries.",
		}),
	}
}

// Observe implements MetricsRecorder.
func (p *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	status := "error"
	if success {
		status = "success"
	}
	p.operations.WithLabelValues(operation, status).Inc()
	p.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetState implements StateGauges.
func (p *PrometheusMetricsRecorder) SetState(contacts, undoDepth, redoDepth int) {
	p.contacts.Set(float64(contacts))
	p.undoDepth.Set(float64(undoDepth))
	p.redoDepth.Set(float64(redoDepth))
}
