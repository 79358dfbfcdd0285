// Package profile отдаёт профиль заведения текущего пользователя.
package profile

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
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/account"
)

// Service читает профиль.
type Service interface {
	Profile(ctx context.Context, uid string) (models.Profile, error)
}

// Handler обработчик чтения профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль заведения
// @Description Название, тип кухни, страна и город заведения. Индикатор эфира включён, пока пользователь его не отключил.
// @Tags Account
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=account.ProfileView}
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /account/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.profile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity := middlewarectx.IdentityFromContext(r.Context())
	p, err := h.service.Profile(r.Context(), identity.UID)
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		render.Status(r, callerr.HTTPStatus(err))
		render.JSON(w, r, response.CallError(err))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(account.NewProfileView(p)))
}
