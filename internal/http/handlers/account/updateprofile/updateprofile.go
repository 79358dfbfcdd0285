// Package updateprofile частично обновляет профиль заведения.
package updateprofile

import (
	"context"
	"encoding/json"
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
	"github.com/magabrotheeeer/restaurant-radio/internal/services/account"
)

// Service обновляет профиль.
type Service interface {
	UpdateProfile(ctx context.Context, uid string, patch account.ProfilePatch) (models.Profile, error)
}

// Request изменяемые поля. Отсутствующее поле не меняется.
type Request struct {
	RestaurantName *string `json:"restaurant_name,omitempty" validate:"omitempty,max=120"`
	CuisineType    *string `json:"cuisine_type,omitempty" validate:"omitempty,max=64"`
	Country        *string `json:"country,omitempty" validate:"omitempty,max=128"`
	City           *string `json:"city,omitempty" validate:"omitempty,max=128"`
	ShowLivePill   *bool   `json:"show_live_pill,omitempty"`
}

// Handler обработчик обновления профиля.
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
// @Summary Обновить профиль заведения
// @Description Меняет только переданные поля и возвращает профиль целиком. Учётная запись должна быть создана.
// @Tags Account
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response{data=account.ProfileView}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или учётная запись не создана"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /account/profile [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.updateprofile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
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
	p, err := h.service.UpdateProfile(r.Context(), identity.UID, account.ProfilePatch{
		RestaurantName: req.RestaurantName,
		CuisineType:    req.CuisineType,
		Country:        req.Country,
		City:           req.City,
		ShowLivePill:   req.ShowLivePill,
	})
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		render.Status(r, callerr.HTTPStatus(err))
		render.JSON(w, r, response.CallError(err))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(account.NewProfileView(p)))
}
