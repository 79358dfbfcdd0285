package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

// ProfileView профиль в том виде, в котором его получает клиент.
type ProfileView struct {
	RestaurantName string `json:"restaurant_name"`
	CuisineType    string `json:"cuisine_type"`
	Country        string `json:"country"`
	City           string `json:"city"`
	ShowLivePill   bool   `json:"show_live_pill"`
}

// NewProfileView раскрывает значения по умолчанию.
func NewProfileView(p models.Profile) ProfileView {
	return ProfileView{
		RestaurantName: p.RestaurantName,
		CuisineType:    p.CuisineType,
		Country:        p.Country,
		City:           p.City,
		ShowLivePill:   p.LivePillVisible(),
	}
}

// ProfilePatch частичное обновление профиля. Поле nil не изменяется.
type ProfilePatch struct {
	RestaurantName *string
	CuisineType    *string
	Country        *string
	City           *string
	ShowLivePill   *bool
}

func (p ProfilePatch) apply(dst *models.Profile) {
	set := func(field *string, v *string) {
		if v != nil {
			*field = strings.TrimSpace(*v)
		}
	}
	set(&dst.RestaurantName, p.RestaurantName)
	set(&dst.CuisineType, p.CuisineType)
	set(&dst.Country, p.Country)
	set(&dst.City, p.City)
	if p.ShowLivePill != nil {
		b := *p.ShowLivePill
		dst.ShowLivePill = &b
	}
}

// Profile возвращает профиль заведения. Для ещё не созданной записи
// возвращается пустой профиль.
func (s *Service) Profile(ctx context.Context, uid string) (models.Profile, error) {
	const op = "account.Profile"

	if uid == "" {
		return models.Profile{}, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	user, err := s.repo.GetUser(ctx, uid)
	if errors.Is(err, storage.ErrUserNotFound) {
		return models.Profile{}, nil
	}
	if err != nil {
		s.log.Error("failed to load profile", slog.String("op", op), slog.String("uid", uid), sl.Err(err))
		return models.Profile{}, callerr.Wrap(callerr.Internal, "Unable to load profile", fmt.Errorf("%s: %w", op, err))
	}
	return user.Profile, nil
}

// UpdateProfile применяет patch к профилю в транзакции и возвращает результат.
func (s *Service) UpdateProfile(ctx context.Context, uid string, patch ProfilePatch) (models.Profile, error) {
	const op = "account.UpdateProfile"
	log := s.log.With(slog.String("op", op), slog.String("uid", uid))

	if uid == "" {
		return models.Profile{}, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	_, after, err := s.repo.UpdateUserInTx(ctx, uid, func(u *models.User) error {
		patch.apply(&u.Profile)
		return nil
	})
	if errors.Is(err, storage.ErrUserNotFound) {
		return models.Profile{}, callerr.New(callerr.InvalidArgument, "Account is not bootstrapped yet")
	}
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		return models.Profile{}, callerr.Wrap(callerr.Internal, "Unable to update profile", fmt.Errorf("%s: %w", op, err))
	}
	log.Info("profile updated")
	return after.Profile, nil
}
