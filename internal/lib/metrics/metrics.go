// Package metrics объявляет метрики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "restaurant_radio"

var (
	// WebhookEventsTotal события провайдера платежей по типу и результату обработки.
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "webhook_events_total",
		Help:      "Payment webhook events by event type and result.",
	}, []string{"event_type", "result"})

	// WebhookDuration длительность обработки вебхука.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Payment webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// SessionsTotal созданные сессии оплаты и портала по результату.
	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "sessions_total",
		Help:      "Checkout and billing portal sessions by kind and result.",
	}, []string{"kind", "result"})

	// ReferralCreditsTotal начисления пригласившим по исходу.
	ReferralCreditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "referral",
		Name:      "credits_total",
		Help:      "Referral credit attempts by outcome.",
	}, []string{"outcome"})

	// ChangeEventsTotal публикации событий изменения учётных записей.
	ChangeEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "changefeed",
		Name:      "events_published_total",
		Help:      "User change events by publish result.",
	}, []string{"result"})

	// AccountsCreatedTotal созданные учётные записи.
	AccountsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "account",
		Name:      "created_total",
		Help:      "Accounts created on first sign-in.",
	})

	// UpstreamRequestsTotal запросы к каталогу станций по эндпоинту и результату.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stations",
		Name:      "upstream_requests_total",
		Help:      "Station directory requests by endpoint and result.",
	}, []string{"endpoint", "result"})
)

// Значения меток результата.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultIgnored = "ignored"
)
