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
	wallabyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallaby_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	wallabyRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallaby_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	wallabySignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallaby_signups_total",
		Help: "Total successful sign-ups.",
	})

	wallabyLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallaby_logins_total",
		Help: "Total login attempts by result.",
	}, []string{"result"})

	wallabyOnboardingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallaby_onboardings_total",
		Help: "Total completed onboardings by path (business or customer).",
	}, []string{"path"})

	wallabyHealthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallaby_health_checks_total",
		Help: "Total readiness probes by result.",
	}, []string{"result"})
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

		wallabyRequestsTotal.WithLabelValues(method, path, status).Inc()
		wallabyRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordSignup records a successful sign-up.
func RecordSignup() { wallabySignupsTotal.Inc() }

// RecordLogin records a login attempt.
func RecordLogin(success bool) {
	if success {
		wallabyLoginsTotal.WithLabelValues("success").Inc()
	} else {
		wallabyLoginsTotal.WithLabelValues("failure").Inc()
	}
}

// RecordOnboarding records a completed onboarding path.
func RecordOnboarding(path string) { wallabyOnboardingsTotal.WithLabelValues(path).Inc() }

// RecordHealthCheck records a readiness probe result.
func RecordHealthCheck(success bool) {
	if success {
		wallabyHealthChecksTotal.WithLabelValues("success").Inc()
	} else {
		wallabyHealthChecksTotal.WithLabelValues("failure").Inc()
	}
}
