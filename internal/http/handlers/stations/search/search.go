// Package search ищет станции по жанру, стране и названию.
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

// Service ищет станции. Сбой каталога возвращается пустым списком.
type Service interface {
	Search(ctx context.Context, q models.StationQuery) []models.Station
}

// Query параметры строки запроса.
type Query struct {
	Tag         string `validate:"max=64"`
	CountryCode string `validate:"omitempty,len=2,alpha"`
	Name        string `validate:"max=128"`
}

// Handler обработчик поиска.
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
// @Summary Поиск станций
// @Description До 20 самых популярных работающих станций по тегу и, при необходимости, стране.
// @Tags Stations
// @Produce  json
// @Security BearerAuth
// @Param tag query string false "Жанр"
// @Param country query string false "Код страны ISO 3166-1"
// @Param name query string false "Название"
// @Success 200 {object} response.Response{data=[]models.Station}
// @Failure 403 {object} response.ErrorResponse "Пробный период закончился"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /stations/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stations.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	params := r.URL.Query()
	q := Query{
		Tag:         params.Get("tag"),
		CountryCode: params.Get("country"),
		Name:        params.Get("name"),
	}
	if err := h.validate.Struct(q); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	list := h.service.Search(r.Context(), models.StationQuery{
		Tag:         q.Tag,
		CountryCode: q.CountryCode,
		Name:        q.Name,
	})
	log.Debug("stations found", slog.String("tag", q.Tag), slog.Int("count", len(list)))
	render.JSON(w, r, response.StatusOKWithData(list))
}
