package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LocationsRecorded prometheus.Counter
	ZoneEvaluations   *prometheus.CounterVec
	AlertsEmitted     prometheus.Counter
	SafetyReports     prometheus.Counter
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a caller-supplied registry. Tests use this
// to avoid duplicate registration on the global one.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LocationsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "beacon_locations_recorded_total",
			Help: "Total number of location reports persisted",
		}),
		ZoneEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_zone_evaluations_total",
			Help: "Geofence evaluations by outcome (inside/outside/no_zones)",
		}, []string{"outcome"}),
		AlertsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "beacon_alerts_emitted_total",
			Help: "Total number of out-of-zone alerts persisted",
		}),
		SafetyReports: factory.NewCounter(prometheus.CounterOpts{
			Name: "beacon_safety_reports_total",
			Help: "Total number of kid safety self-reports",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beacon_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// The recording methods are nil-safe so services built without metrics can
// call them unconditionally.

// RecordLocation counts one persisted location report.
func (m *Metrics) RecordLocation() {
	if m == nil {
		return
	}
	m.LocationsRecorded.Inc()
}

// ObserveEvaluation records one geofence evaluation outcome.
func (m *Metrics) ObserveEvaluation(outcome string) {
	if m == nil {
		return
	}
	m.ZoneEvaluations.WithLabelValues(outcome).Inc()
}

// RecordAlert counts one persisted out-of-zone alert.
func (m *Metrics) RecordAlert() {
	if m == nil {
		return
	}
	m.AlertsEmitted.Inc()
}

// RecordSafetyReport counts one kid safety self-report.
func (m *Metrics) RecordSafetyReport() {
	if m == nil {
		return
	}
	m.SafetyReports.Inc()
}
