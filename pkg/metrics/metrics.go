// Package metrics exports relay counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_submissions_total",
			Help: "Accepted storefront submissions by kind",
		},
		[]string{"kind"},
	)
	promPrimary = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_line_push_total",
			Help: "LINE push attempts by result",
		},
		[]string{"result"},
	)
	promSecondary = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_secondary_delivery_total",
			Help: "Best-effort secondary deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)
	promPrimaryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_line_push_duration_seconds",
			Help:    "Duration of LINE push calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)

func init() {
	prometheus.MustRegister(
		promSubmissions,
		promPrimary,
		promSecondary,
		promPrimaryDuration,
	)
}

// IncSubmission counts a submission that passed the method and config gates.
func IncSubmission(kind string) {
	promSubmissions.WithLabelValues(kind).Inc()
}

// ObservePrimary records the outcome and duration of one LINE push.
func ObservePrimary(ok bool, seconds float64) {
	promPrimary.WithLabelValues(result(ok)).Inc()
	promPrimaryDuration.Observe(seconds)
}

// IncSecondary records the status of one secondary delivery.
func IncSecondary(channel, status string) {
	promSecondary.WithLabelValues(channel, status).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
