// Package favorites управляет избранными станциями пользователя и
// историей недавно прослушанных станций.
package favorites

import (
	"context"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

const (
	DefaultColor      = "from-gray-700 to-gray-900"
	DefaultAtmosphere = "Favorites"
)

// Repository хранилище избранного.
type Repository interface {
	ListFavorites(ctx context.Context, uid string) ([]models.Station, error)
	ToggleFavorite(ctx context.Context, uid string, station models.Station) (bool, error)
	ListHistory(ctx context.Context, uid string) ([]models.Station, error)
	RecordPlay(ctx context.Context, uid string, station models.Station) ([]models.Station, error)
}

// Service сервис избранного.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт сервис.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Sanitize оставляет только сохраняемые поля станции и подставляет значения по умолчанию.
func Sanitize(st models.Station) models.Station {
	out := models.Station{
		StationUUID: strings.TrimSpace(st.StationUUID),
		Name:        st.Name,
		URLResolved: st.URLResolved,
		Favicon:     st.Favicon,
		Tags:        st.Tags,
		Country:     st.Country,
		Bitrate:     st.Bitrate,
		Color:       st.Color,
		Atmosphere:  st.Atmosphere,
	}
	if out.URLResolved == "" {
		out.URLResolved = st.URL
	}
	if out.Color == "" {
		out.Color = DefaultColor
	}
	if out.Atmosphere == "" {
		out.Atmosphere = DefaultAtmosphere
	}
	return out
}

// Toggle добавляет станцию в избранное или убирает её оттуда.
// Возвращает true, если станция теперь в избранном.
func (s *Service) Toggle(ctx context.Context, uid string, station models.Station) (bool, error) {
	const op = "favorites.Toggle"
	log := s.log.With(slog.String("op", op), slog.String("uid", uid))

	if uid == "" {
		return false, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	station = Sanitize(station)
	if station.StationUUID == "" {
		return false, callerr.New(callerr.InvalidArgument, "stationuuid is required")
	}

	added, err := s.repo.ToggleFavorite(ctx, uid, station)
	if err != nil {
		log.Error("failed to toggle favorite", slog.String("station", station.StationUUID), sl.Err(err))
		return false, callerr.Wrap(callerr.Internal, "Unable to update favorites", err)
	}
	log.Info("favorite toggled", slog.String("station", station.StationUUID), slog.Bool("added", added))
	return added, nil
}

// List возвращает избранное пользователя в порядке добавления.
func (s *Service) List(ctx context.Context, uid string) ([]models.Station, error) {
	const op = "favorites.List"

	if uid == "" {
		return nil, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	list, err := s.repo.ListFavorites(ctx, uid)
	if err != nil {
		s.log.Error("failed to list favorites", slog.String("op", op), slog.String("uid", uid), sl.Err(err))
		return nil, callerr.Wrap(callerr.Internal, "Unable to load favorites", err)
	}
	if list == nil {
		list = []models.Station{}
	}
	return list, nil
}

// RecordPlay добавляет станцию в начало истории прослушивания и
// возвращает обновлённую историю.
func (s *Service) RecordPlay(ctx context.Context, uid string, station models.Station) ([]models.Station, error) {
	const op = "favorites.RecordPlay"
	log := s.log.With(slog.String("op", op), slog.String("uid", uid))

	if uid == "" {
		return nil, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	station = Sanitize(station)
	if station.StationUUID == "" {
		return nil, callerr.New(callerr.InvalidArgument, "stationuuid is required")
	}

	history, err := s.repo.RecordPlay(ctx, uid, station)
	if err != nil {
		log.Error("failed to record play", slog.String("station", station.StationUUID), sl.Err(err))
		return nil, callerr.Wrap(callerr.Internal, "Unable to update history", err)
	}
	log.Debug("play recorded", slog.String("station", station.StationUUID), slog.Int("history", len(history)))
	return history, nil
}

// History возвращает недавно прослушанные станции, новые первыми.
func (s *Service) History(ctx context.Context, uid string) ([]models.Station, error) {
	const op = "favorites.History"

	if uid == "" {
		return nil, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	list, err := s.repo.ListHistory(ctx, uid)
	if err != nil {
		s.log.Error("failed to list history", slog.String("op", op), slog.String("uid", uid), sl.Err(err))
		return nil, callerr.Wrap(callerr.Internal, "Unable to load history", err)
	}
	if list == nil {
		list = []models.Station{}
	}
	return list, nil
}
