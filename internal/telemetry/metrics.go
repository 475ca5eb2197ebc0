package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsPosted            = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_jobs_posted_total", Help: "Jobs posted by employers"})
	ApplicationsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_applications_submitted_total", Help: "Job applications submitted"})
	ApplicationsDecided   = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_applications_decided_total", Help: "Applications accepted, rejected, or cancelled"})
	PaymentsInitialized   = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_payments_initialized_total", Help: "Payments created in pending state"})
	PaymentsSettled       = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_payments_settled_total", Help: "Payments that transitioned pending to paid"})
	SettlementReplays     = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_settlement_replays_total", Help: "Settlement triggers that found the payment already paid"})
	WebhookRejects        = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_webhook_rejects_total", Help: "Webhooks rejected for bad signature or non-success status"})
	RateLimitRejects      = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_rate_limit_rejects_total", Help: "Requests rejected by the payment rate limiter"})
	NotificationsWritten  = prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_notifications_written_total", Help: "Notification rows written by the notifier"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsPosted,
			ApplicationsSubmitted,
			ApplicationsDecided,
			PaymentsInitialized,
			PaymentsSettled,
			SettlementReplays,
			WebhookRejects,
			RateLimitRejects,
			NotificationsWritten,
		)
	})
	return promhttp.Handler()
}
