// Package billing создаёт сессии оплаты и портала провайдера платежей
// и зачисляет оплату по событию о завершённой сессии.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/metrics"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/paymentprovider"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

// Префикс идентификаторов покупателей гостевых оплат. Портал для них не открывается.
const guestCustomerPrefix = "gcus_"

// Provider операции провайдера платежей.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, p paymentprovider.CheckoutParams) (string, error)
	CreatePortalSession(ctx context.Context, customerRef, returnURL string) (string, error)
}

// UserRepository доступ к учётным записям.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	UpdateUserInTx(ctx context.Context, uid string, fn storage.UpdateFunc) (before, after *models.User, err error)
}

// Plan тариф каталога.
type Plan struct {
	PriceID string
	Mode    string
}

// Options адреса возврата и каталог тарифов.
type Options struct {
	SuccessURL string
	CancelURL  string
	ReturnURL  string
	Plans      map[string]Plan
}

// CheckoutRequest запрос сессии оплаты: либо тариф каталога, либо цена и режим.
type CheckoutRequest struct {
	PriceID string
	Mode    string
	Plan    string
}

// Service сервис оплаты.
type Service struct {
	repo     UserRepository
	provider Provider
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт сервис.
func New(repo UserRepository, provider Provider, opts Options, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		opts:     opts,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// resolve определяет цену, режим и тег тарифа для метаданных сессии.
// Для тарифа каталога тегом служит его имя, для произвольной цены режим оплаты.
func (s *Service) resolve(req CheckoutRequest) (priceID, mode, planTag string, err error) {
	if req.Plan != "" {
		plan, ok := s.opts.Plans[req.Plan]
		if !ok {
			return "", "", "", callerr.New(callerr.InvalidArgument, "Unknown plan "+req.Plan)
		}
		return plan.PriceID, plan.Mode, req.Plan, nil
	}
	if req.PriceID == "" {
		return "", "", "", callerr.New(callerr.InvalidArgument, "price_id or plan is required")
	}
	mode = req.Mode
	if mode == "" {
		mode = paymentprovider.ModePayment
	}
	if mode != paymentprovider.ModePayment && mode != paymentprovider.ModeSubscription {
		return "", "", "", callerr.New(callerr.InvalidArgument, "Unknown mode "+mode)
	}
	for name, plan := range s.opts.Plans {
		if plan.PriceID == req.PriceID && plan.Mode == mode {
			return req.PriceID, mode, name, nil
		}
	}
	return req.PriceID, mode, mode, nil
}

// CreateCheckoutSession создаёт сессию оплаты для пользователя uid и возвращает её URL.
// В метаданные сессии записываются userId и тег тарифа, по ним вебхук зачисляет оплату.
func (s *Service) CreateCheckoutSession(ctx context.Context, uid string, req CheckoutRequest) (string, error) {
	const op = "billing.CreateCheckoutSession"
	log := s.log.With(slog.String("op", op), slog.String("uid", uid))

	if uid == "" {
		return "", callerr.New(callerr.Unauthenticated, "User must be signed in")
	}
	priceID, mode, planTag, err := s.resolve(req)
	if err != nil {
		return "", err
	}

	var email string
	user, err := s.repo.GetUser(ctx, uid)
	switch {
	case err == nil:
		email = user.Email
	case errors.Is(err, storage.ErrUserNotFound):
		log.Warn("checkout for user without account record")
	default:
		log.Error("failed to read user", sl.Err(err))
		metrics.SessionsTotal.WithLabelValues("checkout", metrics.ResultError).Inc()
		return "", callerr.Wrap(callerr.Internal, "Unable to create checkout session", fmt.Errorf("%s: %w", op, err))
	}

	url, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutParams{
		PriceID:       priceID,
		Mode:          mode,
		CustomerEmail: email,
		SuccessURL:    s.opts.SuccessURL,
		CancelURL:     s.opts.CancelURL,
		Metadata: map[string]string{
			"userId": uid,
			"type":   planTag,
		},
	})
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		metrics.SessionsTotal.WithLabelValues("checkout", metrics.ResultError).Inc()
		return "", callerr.Wrap(callerr.Internal, "Unable to create checkout session", fmt.Errorf("%s: %w", op, err))
	}

	metrics.SessionsTotal.WithLabelValues("checkout", metrics.ResultOK).Inc()
	log.Info("checkout session created", slog.String("plan", planTag), slog.String("mode", mode))
	return url, nil
}

// CreatePortalSession открывает портал управления подпиской для пользователя uid.
func (s *Service) CreatePortalSession(ctx context.Context, uid string) (string, error) {
	const op = "billing.CreatePortalSession"
	log := s.log.With(slog.String("op", op), slog.String("uid", uid))

	if uid == "" {
		return "", callerr.New(callerr.Unauthenticated, "User must be signed in")
	}

	user, err := s.repo.GetUser(ctx, uid)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to read user", sl.Err(err))
		metrics.SessionsTotal.WithLabelValues("portal", metrics.ResultError).Inc()
		return "", callerr.Wrap(callerr.Internal, "Unable to open billing portal", fmt.Errorf("%s: %w", op, err))
	}
	customerRef := user.CustomerRef()
	if customerRef == "" || strings.HasPrefix(customerRef, guestCustomerPrefix) {
		return "", callerr.New(callerr.InvalidArgument, "No valid Stripe Customer found. Try a new test purchase.")
	}

	url, err := s.provider.CreatePortalSession(ctx, customerRef, s.opts.ReturnURL)
	if err != nil {
		log.Error("failed to create portal session", sl.Err(err))
		metrics.SessionsTotal.WithLabelValues("portal", metrics.ResultError).Inc()
		return "", callerr.Wrap(callerr.Internal, "Unable to open billing portal", fmt.Errorf("%s: %w", op, err))
	}

	metrics.SessionsTotal.WithLabelValues("portal", metrics.ResultOK).Inc()
	return url, nil
}

// HandleCheckoutCompleted отмечает пользователя оплатившим. Повторная
// доставка того же события перезаписывает те же значения.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, userID, customerRef string, planType models.PlanType) error {
	const op = "billing.HandleCheckoutCompleted"

	if userID == "" {
		return fmt.Errorf("%s: %w", op, errors.New("empty user id"))
	}

	_, _, err := s.repo.UpdateUserInTx(ctx, userID, func(u *models.User) error {
		now := s.now()
		u.IsPaid = true
		if customerRef != "" {
			ref := customerRef
			u.PaymentCustomerRef = &ref
		} else {
			u.PaymentCustomerRef = nil
		}
		if planType != "" {
			p := planType
			u.PlanType = &p
		} else {
			u.PlanType = nil
		}
		u.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
