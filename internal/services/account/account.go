// Package account создаёт учётные записи при первом входе, отдаёт
// текущее право доступа пользователя и хранит профиль заведения.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/restaurant-radio/internal/entitlement"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/metrics"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

const cacheTTL = time.Minute

// UserRepository доступ к учётным записям.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	CreateUserIfAbsent(ctx context.Context, user models.User) (bool, error)
	UpdateUserInTx(ctx context.Context, uid string, fn storage.UpdateFunc) (before, after *models.User, err error)
}

// Cache кэш учётных записей.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service сервис учётных записей.
type Service struct {
	repo  UserRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создаёт сервис.
func New(repo UserRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

func cacheKey(uid string) string {
	return "user:" + uid
}

// EnsureAccount создаёт учётную запись, если её ещё нет. Существующая
// запись не изменяется, повторный вызов безопасен. Код приглашения,
// совпадающий с собственным UID, отбрасывается.
func (s *Service) EnsureAccount(ctx context.Context, identity models.Identity, referralCode string) (bool, error) {
	const op = "account.EnsureAccount"
	log := s.log.With(slog.String("op", op), slog.String("uid", identity.UID))

	if identity.UID == "" {
		return false, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}

	user := models.User{
		UID:          identity.UID,
		Email:        identity.Email,
		ReferralCode: identity.UID,
	}
	code := strings.TrimSpace(referralCode)
	switch {
	case code == "":
	case code == identity.UID:
		log.Info("self referral ignored")
	default:
		user.ReferredByCode = &code
	}

	created, err := s.repo.CreateUserIfAbsent(ctx, user)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		return false, callerr.Wrap(callerr.Internal, "Unable to create account", fmt.Errorf("%s: %w", op, err))
	}
	if created {
		metrics.AccountsCreatedTotal.Inc()
		log.Info("account created", slog.String("referred_by", user.ReferredBy()))
	}
	return created, nil
}

// GetAccount возвращает учётную запись, сначала из кэша. В кэш попадают
// только записи с оплаченным доступом, записи пробного периода читаются
// из хранилища.
func (s *Service) GetAccount(ctx context.Context, uid string) (*models.User, error) {
	const op = "account.GetAccount"
	log := s.log.With(slog.String("op", op), slog.String("uid", uid))

	var cached models.User
	found, err := s.cache.Get(cacheKey(uid), &cached)
	if err != nil {
		log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsPaid && !user.EarnedFreeAccess {
		return user, nil
	}
	if err := s.cache.Set(cacheKey(uid), user, cacheTTL); err != nil {
		log.Warn("cache write failed", sl.Err(err))
	}
	return user, nil
}

// Entitlement вычисляет право доступа. Отсутствующая запись получает
// полный пробный период: клиент ещё не успел её создать.
func (s *Service) Entitlement(ctx context.Context, uid string) (entitlement.Status, error) {
	const op = "account.Entitlement"

	if uid == "" {
		return entitlement.Status{}, callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	user, err := s.GetAccount(ctx, uid)
	if errors.Is(err, storage.ErrUserNotFound) {
		return entitlement.Evaluate(nil, s.now()), nil
	}
	if err != nil {
		return entitlement.Status{}, fmt.Errorf("%s: %w", op, err)
	}
	return entitlement.Evaluate(user, s.now()), nil
}

// InvalidateUser сбрасывает кэш записи. Подписывается на изменения хранилища.
func (s *Service) InvalidateUser(_ context.Context, uid string) {
	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("cache invalidate failed", slog.String("uid", uid), sl.Err(err))
	}
}
