// Package webhook принимает события провайдера платежей.
//
// Handler читает тело запроса как есть, проверяет подпись из заголовка
// Stripe-Signature и зачисляет оплату по событию checkout.session.completed.
// Неверная подпись даёт 400 без изменений в хранилище. Остальные события
// подтверждаются ответом 200 {"received": true}, в том числе когда
// зачисление не удалось: ошибка пишется в лог и в метрики.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/metrics"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/paymentprovider"
)

// MaxBodyBytes предел размера тела вебхука.
const MaxBodyBytes = 1 << 20

// SignatureHeader заголовок с подписью события.
const SignatureHeader = "Stripe-Signature"

// Verifier проверяет подпись и разбирает событие.
type Verifier interface {
	ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

// Service зачисляет оплату.
type Service interface {
	HandleCheckoutCompleted(ctx context.Context, userID, customerRef string, planType models.PlanType) error
}

// Received тело успешного ответа.
type Received struct {
	Received bool `json:"received" example:"true"`
}

// Handler обработчик вебхука.
type Handler struct {
	log      *slog.Logger
	verifier Verifier
	service  Service
}

// New создаёт Handler.
func New(log *slog.Logger, verifier Verifier, service Service) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		service:  service,
	}
}

// ServeHTTP godoc
// @Summary Вебхук провайдера платежей
// @Description Принимает подписанные события Stripe. Зачисляет оплату по checkout.session.completed.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} Received "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	start := time.Now()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "bad_request").Inc()
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}

	event, err := h.verifier.ConstructEvent(payload, r.Header.Get(SignatureHeader))
	if err != nil {
		log.Warn("webhook signature verification failed", sl.Err(err))
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "bad_signature").Inc()
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("webhook signature verification failed"))
		return
	}

	eventType := string(event.Type)
	log = log.With(slog.String("event_id", event.ID), slog.String("event_type", eventType))
	defer func() {
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	if eventType != paymentprovider.EventCheckoutSessionCompleted {
		log.Info("ignored webhook event")
		metrics.WebhookEventsTotal.WithLabelValues(eventType, metrics.ResultIgnored).Inc()
		render.JSON(w, r, Received{Received: true})
		return
	}

	metrics.WebhookEventsTotal.WithLabelValues(eventType, h.checkoutCompleted(r.Context(), log, event)).Inc()
	render.JSON(w, r, Received{Received: true})
}

// checkoutCompleted зачисляет оплату и возвращает значение метки результата.
func (h *Handler) checkoutCompleted(ctx context.Context, log *slog.Logger, event stripe.Event) string {
	var session paymentprovider.CheckoutSessionObject
	if event.Data == nil {
		log.Error("checkout session event has no data")
		return metrics.ResultError
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Error("failed to decode checkout session", sl.Err(err))
		return metrics.ResultError
	}

	userID := session.Metadata["userId"]
	if userID == "" {
		log.Warn("checkout session without userId metadata", slog.String("session_id", session.ID))
		return metrics.ResultIgnored
	}
	planType := models.PlanType(session.Metadata["type"])

	if err := h.service.HandleCheckoutCompleted(ctx, userID, session.Customer, planType); err != nil {
		log.Error("failed to record payment",
			slog.String("uid", userID),
			slog.String("session_id", session.ID),
			sl.Err(err),
		)
		return metrics.ResultError
	}

	log.Info("payment recorded",
		slog.String("uid", userID),
		slog.String("customer", session.Customer),
		slog.String("plan_type", string(planType)),
	)
	return metrics.ResultOK
}
