// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "motionsense"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Detection ticks
	FramesReceived prometheus.Counter
	FramesSkipped  *prometheus.CounterVec
	TickDuration   prometheus.Histogram

	// Session sampling
	SessionSamples   prometheus.Counter
	SessionsActive   prometheus.Gauge
	SessionsFinished prometheus.Counter

	// External control
	Applies *prometheus.CounterVec
	Resets  prometheus.Counter

	// Telemetry
	Emissions      *prometheus.CounterVec
	EmissionErrors *prometheus.CounterVec

	// Current signal values
	Movement prometheus.Gauge
	Sliders  *prometheus.GaugeVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg. A nil reg
// creates unregistered metrics, which is useful in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FramesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Total number of detection frames received",
		}),
		FramesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Detection frames not processed",
		}, []string{"reason"}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent processing one detection frame",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		SessionSamples: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_samples_total",
			Help:      "Frames sampled into a session",
		}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "1 while a session is open",
		}),
		SessionsFinished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Sessions ended with a snapshot",
		}),

		Applies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_applies_total",
			Help:      "External slider applies by outcome",
		}, []string{"result"}),
		Resets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Pipeline resets",
		}),

		Emissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_emissions_total",
			Help:      "Telemetry messages emitted by kind",
		}, []string{"kind"}),
		EmissionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_emission_errors_total",
			Help:      "Telemetry sink failures by sink",
		}, []string{"sink"}),

		Movement: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "movement_velocity",
			Help:      "Smoothed normalised movement velocity",
		}),
		Sliders: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slider_value",
			Help:      "Current slider values",
		}, []string{"name"}),
	}
}
