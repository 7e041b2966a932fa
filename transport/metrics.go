package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transvoucher_client_requests_total",
		Help: "Requests sent to the TransVoucher API.",
	}, []string{"method", "endpoint", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transvoucher_client_request_duration_seconds",
		Help:    "Latency of TransVoucher API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})
)
