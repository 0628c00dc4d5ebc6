package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Subscription outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Subscriptions      *prometheus.CounterVec
	SubscribeDuration  prometheus.Histogram
	NotificationsTotal *prometheus.CounterVec
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Subscriptions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_subscriptions_total",
			Help: "Subscription requests by outcome (ok, invalid, error)",
		}, []string{"outcome"}),
		SubscribeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsletter_subscribe_duration_seconds",
			Help:    "Time to handle one subscription request",
			Buckets: prometheus.DefBuckets,
		}),
		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_notifications_total",
			Help: "Email send attempts by provider and outcome",
		}, []string{"provider", "outcome"}),
	}
}

// ObserveSubscription records one handled request.
func (m *Metrics) ObserveSubscription(outcome string, elapsed time.Duration) {
	m.Subscriptions.WithLabelValues(outcome).Inc()
	m.SubscribeDuration.Observe(elapsed.Seconds())
}

// ObserveNotification records one send attempt.
func (m *Metrics) ObserveNotification(provider string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.NotificationsTotal.WithLabelValues(provider, outcome).Inc()
}
