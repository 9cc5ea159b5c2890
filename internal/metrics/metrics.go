package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fruitbox"

// Outcome labels. Mismatch is an expected customer-side result and is kept
// apart from service errors so failed payments never read as outages.
const (
	OutcomeSuccess      = "success"
	OutcomeValidation   = "validation_error"
	OutcomeGatewayError = "gateway_error"
	OutcomeServiceError = "service_error"
	OutcomeVerified     = "verified"
	OutcomeMismatch     = "mismatch"
)

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_orders_created_total",
		Help:      "CreateOrder calls by outcome.",
	}, []string{"outcome"})

	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "VerifyPayment calls by outcome.",
	}, []string{"outcome"})

	GatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of payment gateway calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Order record status changes by target status.",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "code"})
)

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveGateway records one gateway call on the latency histogram.
func (t *Timer) ObserveGateway(operation, status string) {
	GatewayDuration.WithLabelValues(operation, status).Observe(t.Duration().Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
