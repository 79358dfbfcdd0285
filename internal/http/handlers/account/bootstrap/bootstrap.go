// Package bootstrap создаёт учётную запись при первом входе пользователя.
//
// Handler берёт UID и email из контекста запроса и необязательный
// реферальный код из тела. Повторный вызов не меняет существующую запись.
package bootstrap

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
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

// Service создаёт учётную запись, если её ещё нет.
type Service interface {
	EnsureAccount(ctx context.Context, identity models.Identity, referralCode string) (bool, error)
}

// Request тело запроса. Тело можно не передавать.
type Request struct {
	ReferralCode string `json:"referral_code,omitempty" validate:"max=128" example:"Xk3pQ9"`
}

// Result данные ответа.
type Result struct {
	Created bool `json:"created"`
}

// Handler обработчик первого входа.
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
// @Summary Создать учётную запись
// @Description Создаёт запись пользователя с пробным периодом. Реферальный код учитывается только при создании.
// @Tags Account
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request false "Реферальный код"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /account/bootstrap [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.bootstrap"
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
	created, err := h.service.EnsureAccount(r.Context(), identity, req.ReferralCode)
	if err != nil {
		log.Error("failed to bootstrap account", slog.String("uid", identity.UID), sl.Err(err))
		render.Status(r, callerr.HTTPStatus(err))
		render.JSON(w, r, response.CallError(err))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(Result{Created: created}))
}
