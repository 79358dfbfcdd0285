// Package referral начисляет пригласившему пользователю кредит, когда
// приглашённый впервые становится оплатившим.
package referral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/restaurant-radio/internal/entitlement"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/metrics"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

// Исходы начисления для метрик.
const (
	outcomeCredited        = "credited"
	outcomeRewarded        = "rewarded"
	outcomeMissingReferrer = "missing_referrer"
	outcomeDuplicate       = "duplicate"
	outcomeFailed          = "failed"
)

// UserRepository транзакционное обновление учётной записи.
type UserRepository interface {
	UpdateUserInTx(ctx context.Context, uid string, fn storage.UpdateFunc) (before, after *models.User, err error)
}

// Service обработчик изменения учётной записи.
type Service struct {
	repo UserRepository
	log  *slog.Logger
}

// New создаёт сервис.
func New(repo UserRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// ShouldCredit сообщает, является ли изменение переходом приглашённого
// пользователя из неоплатившего состояния в оплатившее.
func ShouldCredit(before, after *models.User) bool {
	if before == nil || after == nil {
		return false
	}
	if before.IsPaid || !after.IsPaid {
		return false
	}
	code := after.ReferredBy()
	return code != "" && code != after.UID
}

// errAlreadyCredited откатывает транзакцию, если кредит за приглашённого уже начислен.
var errAlreadyCredited = errors.New("referee already credited")

// creditFor запоминает приглашённого в записи пригласившего, увеличивает
// счётчик и по достижении порога выдаёт бессрочный доступ. Отметка о
// приглашённом сохраняется в той же транзакции, что и счётчик.
func creditFor(referee string) storage.UpdateFunc {
	return func(u *models.User) error {
		if u.HasCredited(referee) {
			return errAlreadyCredited
		}
		u.CreditedReferees = append(u.CreditedReferees, referee)
		u.ReferralCount++
		if u.ReferralCount >= entitlement.ReferralRewardThreshold {
			u.EarnedFreeAccess = true
			u.IsPaid = true
		}
		return nil
	}
}

// OnUserUpdated начисляет кредит пригласившему. Отсутствие пригласившего
// и повторная доставка того же события не считаются ошибкой. Ошибка транзакции возвращается вызывающему только
// для журнала, повторной доставки события не происходит.
func (s *Service) OnUserUpdated(ctx context.Context, before, after *models.User) error {
	const op = "referral.OnUserUpdated"

	if !ShouldCredit(before, after) {
		return nil
	}
	referrerID := after.ReferredBy()
	log := s.log.With(
		slog.String("op", op),
		slog.String("uid", after.UID),
		slog.String("referrer", referrerID),
	)

	_, updated, err := s.repo.UpdateUserInTx(ctx, referrerID, creditFor(after.UID))
	switch {
	case errors.Is(err, errAlreadyCredited):
		metrics.ReferralCreditsTotal.WithLabelValues(outcomeDuplicate).Inc()
		log.Info("referee already credited, skipped")
		return nil
	case errors.Is(err, storage.ErrUserNotFound):
		metrics.ReferralCreditsTotal.WithLabelValues(outcomeMissingReferrer).Inc()
		log.Warn("referrer not found, credit skipped")
		return nil
	case err != nil:
		metrics.ReferralCreditsTotal.WithLabelValues(outcomeFailed).Inc()
		log.Error("referral credit failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if updated.EarnedFreeAccess {
		metrics.ReferralCreditsTotal.WithLabelValues(outcomeRewarded).Inc()
	} else {
		metrics.ReferralCreditsTotal.WithLabelValues(outcomeCredited).Inc()
	}
	log.Info("referral credited",
		slog.Int("referral_count", updated.ReferralCount),
		slog.Bool("earned_free_access", updated.EarnedFreeAccess),
	)
	return nil
}
