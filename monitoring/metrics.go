package monitoring

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsCreated tracks created payment intents by variant and outcome.
	PaymentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_created_total",
			Help: "Total payment intents created",
		},
		[]string{"mode", "status"},
	)

	// PaymentAmount observes intent amounts in major units.
	PaymentAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_amount",
			Help:    "Payment intent amounts",
			Buckets: prometheus.ExponentialBuckets(1, 2.5, 10),
		},
	)

	// PaymentsSettled tracks settled payments by method.
	PaymentsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_settled_total",
			Help: "Total settled payments",
		},
		[]string{"method"},
	)

	// CardValidationFailures tracks submit-time validation failures per field.
	CardValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_validation_failures_total",
			Help: "Card form validation failures",
		},
		[]string{"field"},
	)

	// RecognitionRequests tracks card-recognition calls by outcome.
	RecognitionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_recognition_requests_total",
			Help: "Card recognition requests",
		},
		[]string{"status"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// HTTPMiddleware records request counts and latency per route.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			path := c.Request().URL.Path
			method := c.Request().Method

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
