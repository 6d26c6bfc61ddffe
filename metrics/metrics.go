// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route template and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixmyarea_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fixmyarea_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// IssueOperations counts issue accessor calls by operation and result.
	IssueOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixmyarea_issue_operations_total",
		Help: "Issue store operations by operation and result",
	}, []string{"operation", "result"})

	LiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fixmyarea_live_subscriptions",
		Help: "Open live issue query subscriptions",
	})

	OTPMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixmyarea_otp_messages_total",
		Help: "OTP emails by result",
	}, []string{"result"})
)

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
