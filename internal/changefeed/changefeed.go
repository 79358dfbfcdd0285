// Package changefeed превращает успешные обновления документа пользователя
// в события UserChanged: декоратор хранилища публикует снимки до и после
// изменения, а подписчики реагируют на них так же, как триггер документа.
package changefeed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/metrics"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

// Publisher доставляет событие подписчикам.
type Publisher interface {
	Publish(ctx context.Context, event models.UserChanged) error
}

// Handler обработчик события изменения учётной записи.
type Handler interface {
	OnUserUpdated(ctx context.Context, before, after *models.User) error
}

// Hook синхронный обработчик, вызывается до публикации.
type Hook func(ctx context.Context, uid string)

// Store оборачивает UserStore и публикует событие после каждого
// зафиксированного UpdateUserInTx. Ошибка публикации не отменяет обновление.
type Store struct {
	storage.UserStore
	publisher Publisher
	log       *slog.Logger

	mu    sync.RWMutex
	hooks []Hook
}

// New создаёт декоратор.
func New(inner storage.UserStore, publisher Publisher, log *slog.Logger) *Store {
	return &Store{
		UserStore: inner,
		publisher: publisher,
		log:       log,
	}
}

// OnChange регистрирует синхронный обработчик изменения.
func (s *Store) OnChange(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// UpdateUserInTx выполняет обновление во внутреннем хранилище и публикует событие.
func (s *Store) UpdateUserInTx(ctx context.Context, uid string, fn storage.UpdateFunc) (*models.User, *models.User, error) {
	const op = "changefeed.UpdateUserInTx"
	log := s.log.With(slog.String("op", op), slog.String("uid", uid))

	before, after, err := s.UserStore.UpdateUserInTx(ctx, uid, fn)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.RUnlock()
	for _, h := range hooks {
		h(ctx, uid)
	}

	event := models.UserChanged{
		ID:         uuid.NewString(),
		UserID:     uid,
		Before:     before.Clone(),
		After:      after.Clone(),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.ChangeEventsTotal.WithLabelValues(metrics.ResultError).Inc()
		log.Error("failed to publish user change", slog.String("event_id", event.ID), sl.Err(err))
		return before, after, nil
	}
	metrics.ChangeEventsTotal.WithLabelValues(metrics.ResultOK).Inc()
	log.Debug("user change published", slog.String("event_id", event.ID))
	return before, after, nil
}
