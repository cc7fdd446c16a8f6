package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// SubmissionCounter counts assignment submissions by provenance:
	// voluntary, or forced by a security violation / deadline.
	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assignment_submissions_total",
			Help: "Total number of assignment submissions",
		},
		[]string{"kind"},
	)

	// GradingCompletedCounter counts assignments reaching graded state.
	GradingCompletedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assignments_graded_total",
			Help: "Total number of assignments fully graded",
		},
	)

	// ZeroPointAssessmentCounter counts assessments skipped by the subject
	// average because their total possible points is zero.
	ZeroPointAssessmentCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zero_point_assessments_total",
			Help: "Assessments excluded from averaging for having zero total points",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SubmissionCounter)
	prometheus.MustRegister(GradingCompletedCounter)
	prometheus.MustRegister(ZeroPointAssessmentCounter)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
