package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(eventsTotal, webhookRequestsTotal) }

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_events_total",
			Help: "Inbound events by interpreted intent (or skipped/ignored).",
		},
		[]string{"intent"},
	)

	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_webhook_requests_total",
			Help: "Webhook deliveries by HTTP status class.",
		},
		[]string{"status"},
	)
)

func IncEvent(intent string) {
	eventsTotal.WithLabelValues(norm(intent)).Inc()
}

func IncWebhook(status string) {
	webhookRequestsTotal.WithLabelValues(norm(status)).Inc()
}

// Events exposes the counter for tests.
func Events(intent string) prometheus.Counter {
	return eventsTotal.WithLabelValues(norm(intent))
}
