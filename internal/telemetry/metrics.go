package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	RecomputeCounter     = prometheus.NewCounter(prometheus.CounterOpts{Name: "timeline_recomputes_total", Help: "Timeline rebuilds triggered by mutations"})
	RecomputeFailures    = prometheus.NewCounter(prometheus.CounterOpts{Name: "timeline_recompute_failures_total", Help: "Timeline rebuilds that failed"})
	BroadcastCounter     = prometheus.NewCounter(prometheus.CounterOpts{Name: "timeline_broadcasts_total", Help: "Snapshots fanned out to subscribers"})
	BookingsCreated      = prometheus.NewCounter(prometheus.CounterOpts{Name: "bookings_created_total", Help: "Bookings accepted"})
	ConflictRejects      = prometheus.NewCounter(prometheus.CounterOpts{Name: "bookings_conflict_rejects_total", Help: "Scheduled bookings rejected for overlap"})
	CapacityRejects      = prometheus.NewCounter(prometheus.CounterOpts{Name: "bookings_capacity_rejects_total", Help: "Queue joins rejected at capacity"})
	RateLimitRejects     = prometheus.NewCounter(prometheus.CounterOpts{Name: "http_rate_limit_rejects_total", Help: "Requests rejected by the rate limiter"})
	NotificationsSent    = prometheus.NewCounter(prometheus.CounterOpts{Name: "push_notifications_sent_total", Help: "Web push notifications delivered"})
	NotificationsDeduped = prometheus.NewCounter(prometheus.CounterOpts{Name: "push_notifications_deduped_total", Help: "Notifications suppressed by the dedupe window"})
	NotificationsFailed  = prometheus.NewCounter(prometheus.CounterOpts{Name: "push_notifications_failed_total", Help: "Web push sends that errored"})
	SubscriberGauge      = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ws_subscribers", Help: "Open websocket subscriptions"})
)

// Handler exposes /metrics with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			RecomputeCounter,
			RecomputeFailures,
			BroadcastCounter,
			BookingsCreated,
			ConflictRejects,
			CapacityRejects,
			RateLimitRejects,
			NotificationsSent,
			NotificationsDeduped,
			NotificationsFailed,
			SubscriberGauge,
		)
	})
	return promhttp.Handler()
}
