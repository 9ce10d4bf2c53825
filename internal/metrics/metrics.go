package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "legal_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "legal_llm_request_duration_seconds",
			Help:    "Language model latency by action and outcome",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"action", "outcome"},
	)

	OTPIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_otp_issued_total",
			Help: "OTP codes issued by channel (email, fallback, resend)",
		},
		[]string{"channel"},
	)

	EmailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "legal_email_failures_total",
			Help: "OTP email deliveries that failed",
		},
	)

	PDFGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_pdf_generated_total",
			Help: "Generated PDF documents by archive outcome",
		},
		[]string{"archived"},
	)
)
