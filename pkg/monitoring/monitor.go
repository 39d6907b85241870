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

	FeedbackSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marker_feedback_submissions_total",
			Help: "Feedback records written, by policy and outcome (appended/overwritten)",
		},
		[]string{"policy", "outcome"},
	)

	PasswordFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marker_password_failures_total",
			Help: "Rejected gate passwords, locked=true when the attempt budget ran out",
		},
		[]string{"locked"},
	)

	NavigationMoves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marker_navigation_total",
			Help: "Review cursor operations by direction",
		},
		[]string{"direction"},
	)

	SessionsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marker_sessions_completed_total",
			Help: "Review sessions that reached the done state",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(FeedbackSubmissions)
	prometheus.MustRegister(PasswordFailures)
	prometheus.MustRegister(NavigationMoves)
	prometheus.MustRegister(SessionsCompleted)
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
