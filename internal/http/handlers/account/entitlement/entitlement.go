// Package entitlement отдаёт текущий статус доступа пользователя.
package entitlement

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/restaurant-radio/internal/entitlement"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
)

// Service вычисляет доступ.
type Service interface {
	Entitlement(ctx context.Context, uid string) (entitlement.Status, error)
}

// Handler обработчик статуса доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус доступа
// @Description Возвращает, есть ли доступ, тариф (paid, trial, expired) и оставшиеся дни пробного периода.
// @Tags Account
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=entitlement.Status}
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /account/entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.entitlement"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity := middlewarectx.IdentityFromContext(r.Context())
	status, err := h.service.Entitlement(r.Context(), identity.UID)
	if err != nil {
		log.Error("failed to evaluate entitlement", slog.String("uid", identity.UID), sl.Err(err))
		render.Status(r, callerr.HTTPStatus(err))
		render.JSON(w, r, response.CallError(err))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(status))
}
