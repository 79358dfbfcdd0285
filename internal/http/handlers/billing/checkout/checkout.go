// Package checkout создаёт сессию оплаты для текущего пользователя.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/billing"
)

// Service создаёт сессию оплаты.
type Service interface {
	CreateCheckoutSession(ctx context.Context, uid string, req billing.CheckoutRequest) (string, error)
}

// Request тело запроса: тариф каталога либо цена и режим.
type Request struct {
	PriceID string `json:"price_id,omitempty" validate:"required_without=Plan,max=128" example:"price_1Pq"`
	Mode    string `json:"mode,omitempty" validate:"omitempty,oneof=payment subscription" example:"payment"`
	Plan    string `json:"plan,omitempty" validate:"max=64" example:"lifetime"`
}

// SessionURL ответ с адресом перенаправления.
type SessionURL struct {
	URL string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_1"`
}

// Handler обработчик создания сессии оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать сессию оплаты
// @Description Возвращает адрес страницы оплаты Stripe для тарифа или цены.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Тариф или цена"
// @Success 200 {object} SessionURL
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера платежей"
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	identity := middlewarectx.IdentityFromContext(r.Context())
	url, err := h.service.CreateCheckoutSession(r.Context(), identity.UID, billing.CheckoutRequest{
		PriceID: req.PriceID,
		Mode:    req.Mode,
		Plan:    req.Plan,
	})
	if err != nil {
		log.Error("failed to create checkout session", slog.String("uid", identity.UID), sl.Err(err))
		render.Status(r, callerr.HTTPStatus(err))
		render.JSON(w, r, response.CallError(err))
		return
	}

	render.JSON(w, r, SessionURL{URL: url})
}
