package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sealRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sealchain_records_appended_total",
		Help: "Total ledger records sealed and appended.",
	})

	sealAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sealchain_seal_attempts_total",
		Help: "Total proof-of-work nonce attempts across all appends.",
	})

	sealVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sealchain_verifications_total",
		Help: "Total chain verifications by result.",
	}, []string{"result"})

	sealRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sealchain_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	sealRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sealchain_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request
// metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		sealRequestsTotal.WithLabelValues(method, path, status).Inc()
		sealRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordAppend records one sealed record and the nonce attempts it cost.
func RecordAppend(attempts uint64) {
	sealRecordsTotal.Inc()
	sealAttemptsTotal.Add(float64(attempts))
}

// RecordVerification records a chain verification result.
func RecordVerification(valid bool) {
	if valid {
		sealVerificationsTotal.WithLabelValues("valid").Inc()
	} else {
		sealVerificationsTotal.WithLabelValues("invalid").Inc()
	}
}
