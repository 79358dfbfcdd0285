// Package daily отдаёт подборку дня для типа заведения и времени суток.
package daily

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/stations"
)

// Service подбирает станцию дня.
type Service interface {
	Daily(ctx context.Context, cuisine string, hour int) (stations.DailyPick, error)
}

// ProfileReader читает профиль заведения, из которого берётся тип кухни по умолчанию.
type ProfileReader interface {
	Profile(ctx context.Context, uid string) (models.Profile, error)
}

// Handler обработчик подборки дня.
type Handler struct {
	log      *slog.Logger
	service  Service
	profiles ProfileReader
	now      func() time.Time
}

// New создаёт Handler. profiles может быть nil.
func New(log *slog.Logger, service Service, profiles ProfileReader) *Handler {
	return &Handler{log: log, service: service, profiles: profiles, now: time.Now}
}

// ServeHTTP godoc
// @Summary Подборка дня
// @Description Настроение и случайная популярная станция для типа заведения. Час берётся у клиента, иначе по часам сервера.
// @Tags Stations
// @Produce  json
// @Security BearerAuth
// @Param cuisine query string false "Тип заведения: Cafe, Fine Dining, Casual, Bar, Fast Food, Bakery. По умолчанию из профиля"
// @Param hour query int false "Локальный час клиента, 0-23"
// @Success 200 {object} response.Response{data=stations.DailyPick}
// @Failure 400 {object} response.ErrorResponse "Некорректный час"
// @Failure 403 {object} response.ErrorResponse "Пробный период закончился"
// @Failure 502 {object} response.ErrorResponse "Каталог недоступен"
// @Router /stations/daily [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stations.daily"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	params := r.URL.Query()
	hour := h.now().Hour()
	if raw := params.Get("hour"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 23 {
			log.Warn("invalid hour", slog.String("hour", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("hour must be an integer between 0 and 23"))
			return
		}
		hour = v
	}

	cuisine := params.Get("cuisine")
	if cuisine == "" {
		cuisine = h.profileCuisine(r.Context(), log)
	}

	pick, err := h.service.Daily(r.Context(), cuisine, hour)
	if err != nil {
		log.Error("failed to pick daily station", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("station directory unavailable"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(pick))
}

func (h *Handler) profileCuisine(ctx context.Context, log *slog.Logger) string {
	uid := middlewarectx.IdentityFromContext(ctx).UID
	if h.profiles == nil || uid == "" {
		return ""
	}
	p, err := h.profiles.Profile(ctx, uid)
	if err != nil {
		log.Warn("profile unavailable, default vibe used", sl.Err(err))
		return ""
	}
	return p.CuisineType
}
