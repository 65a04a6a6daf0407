package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	alertsTotal     *prometheus.CounterVec
	deliveriesTotal *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg. A nil reg
// means the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		alertsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tvrelay_alerts_total",
				Help: "Webhook alerts by outcome (accepted, unauthorized, invalid)",
			},
			[]string{"outcome"},
		),
		deliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tvrelay_deliveries_total",
				Help: "Notification delivery attempts by sink and result",
			},
			[]string{"sink", "result"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tvrelay_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAlert counts one webhook by outcome.
func (r *Recorder) RecordAlert(outcome string) {
	r.alertsTotal.WithLabelValues(outcome).Inc()
}

// RecordDelivery counts one sink result (ok, error, skipped).
func (r *Recorder) RecordDelivery(sink, result string) {
	r.deliveriesTotal.WithLabelValues(sink, result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
