// Package toggle добавляет станцию в избранное или убирает её оттуда.
package toggle

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
)

// Service переключает станцию в избранном.
type Service interface {
	Toggle(ctx context.Context, uid string, station models.Station) (bool, error)
}

// Request станция, как её прислал клиент.
type Request struct {
	StationUUID string `json:"stationuuid" validate:"required,max=64"`
	Name        string `json:"name" validate:"max=256"`
	URL         string `json:"url,omitempty" validate:"max=2048"`
	URLResolved string `json:"url_resolved" validate:"max=2048"`
	Favicon     string `json:"favicon" validate:"max=2048"`
	Tags        string `json:"tags" validate:"max=1024"`
	Country     string `json:"country" validate:"max=128"`
	Bitrate     int    `json:"bitrate"`
	Color       string `json:"color,omitempty" validate:"max=128"`
	Atmosphere  string `json:"atmosphere,omitempty" validate:"max=128"`
}

// Result данные ответа.
type Result struct {
	Favorite bool `json:"favorite"`
}

// Handler обработчик переключения избранного.
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
// @Summary Переключить избранное
// @Description Добавляет станцию в избранное, а если она уже там, убирает её.
// @Tags Favorites
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Станция"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /favorites/toggle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorites.toggle"
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
	added, err := h.service.Toggle(r.Context(), identity.UID, models.Station{
		StationUUID: req.StationUUID,
		Name:        req.Name,
		URL:         req.URL,
		URLResolved: req.URLResolved,
		Favicon:     req.Favicon,
		Tags:        req.Tags,
		Country:     req.Country,
		Bitrate:     req.Bitrate,
		Color:       req.Color,
		Atmosphere:  req.Atmosphere,
	})
	if err != nil {
		log.Error("failed to toggle favorite", sl.Err(err))
		render.Status(r, callerr.HTTPStatus(err))
		render.JSON(w, r, response.CallError(err))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(Result{Favorite: added}))
}
