package changefeed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

// Inline доставляет события обработчикам в том же процессе, каждое событие
// в отдельной горутине. Используется без брокера сообщений.
type Inline struct {
	log *slog.Logger

	mu       sync.RWMutex
	handlers []Handler
	wg       sync.WaitGroup
}

// NewInline создаёт издателя без подписчиков.
func NewInline(log *slog.Logger) *Inline {
	return &Inline{log: log}
}

// Subscribe добавляет обработчик.
func (p *Inline) Subscribe(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

// Publish запускает обработчики асинхронно и сразу возвращает управление.
// Отмена контекста запроса не прерывает обработку.
func (p *Inline) Publish(ctx context.Context, event models.UserChanged) error {
	p.mu.RLock()
	handlers := append([]Handler(nil), p.handlers...)
	p.mu.RUnlock()
	if len(handlers) == 0 {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for _, h := range handlers {
			if err := h.OnUserUpdated(ctx, event.Before, event.After); err != nil {
				p.log.Error("user change handler failed",
					slog.String("event_id", event.ID),
					slog.String("uid", event.UserID),
					sl.Err(err),
				)
			}
		}
	}()
	return nil
}

// Wait блокируется, пока не завершатся все запущенные обработчики,
// включая вызванные ими каскадные события.
func (p *Inline) Wait() {
	p.wg.Wait()
}
