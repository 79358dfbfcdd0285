// Package portal открывает портал управления подпиской провайдера платежей.
package portal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
)

// Service создаёт сессию портала.
type Service interface {
	CreatePortalSession(ctx context.Context, uid string) (string, error)
}

// SessionURL ответ с адресом перенаправления.
type SessionURL struct {
	URL string `json:"url" example:"https://billing.stripe.com/p/session/bps_1"`
}

// Handler обработчик портала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Открыть портал подписки
// @Description Возвращает адрес портала Stripe для пользователя с сохранённым покупателем.
// @Tags Billing
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} SessionURL
// @Failure 400 {object} response.ErrorResponse "Нет покупателя Stripe"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера платежей"
// @Router /billing/portal [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portal"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity := middlewarectx.IdentityFromContext(r.Context())
	url, err := h.service.CreatePortalSession(r.Context(), identity.UID)
	if err != nil {
		log.Warn("failed to create portal session", slog.String("uid", identity.UID), sl.Err(err))
		render.Status(r, callerr.HTTPStatus(err))
		render.JSON(w, r, response.CallError(err))
		return
	}

	render.JSON(w, r, SessionURL{URL: url})
}
