package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)

	PaymentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_payment_intents_total",
			Help: "Payment intents requested, by result",
		},
		[]string{"result"},
	)

	OrderCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_order_commits_total",
			Help: "Order commit attempts, by result",
		},
		[]string{"result"},
	)

	CommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_order_commit_duration_ms",
			Help:    "Duration of order commits in ms",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3200},
		},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Payment webhook events, by type and result",
		},
		[]string{"type", "result"},
	)
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

// ObserveMs records the elapsed time in milliseconds.
func (t *Timer) ObserveMs(h prometheus.Observer) {
	h.Observe(float64(t.Duration().Milliseconds()))
}
