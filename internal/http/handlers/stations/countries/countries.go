// Package countries отдаёт список стран каталога станций.
package countries

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

// Service возвращает страны.
type Service interface {
	Countries(ctx context.Context) ([]models.Country, error)
}

// Handler обработчик списка стран.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Страны каталога
// @Description Страны, где больше десяти станций, по алфавиту.
// @Tags Stations
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Country}
// @Failure 403 {object} response.ErrorResponse "Пробный период закончился"
// @Failure 502 {object} response.ErrorResponse "Каталог недоступен"
// @Router /stations/countries [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stations.countries"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.Countries(r.Context())
	if err != nil {
		log.Error("failed to load countries", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("station directory unavailable"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(list))
}
