package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notificationsTotal, repliesTotal) }

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_notifications_total",
			Help: "Pushed reminder notifications by kind and outcome.",
		},
		[]string{"kind", "outcome"}, // daily|escalation, delivered|failed
	)

	repliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_replies_total",
			Help: "Replies to inbound events by outcome.",
		},
		[]string{"outcome"},
	)
)

func outcome(ok bool) string {
	if ok {
		return "delivered"
	}
	return "failed"
}

// IncNotification counts one push attempt.
func IncNotification(kind string, delivered bool) {
	notificationsTotal.WithLabelValues(norm(kind), outcome(delivered)).Inc()
}

// IncReply counts one reply attempt.
func IncReply(delivered bool) {
	repliesTotal.WithLabelValues(outcome(delivered)).Inc()
}

// Notifications exposes the counter for tests.
func Notifications(kind string, delivered bool) prometheus.Counter {
	return notificationsTotal.WithLabelValues(norm(kind), outcome(delivered))
}
