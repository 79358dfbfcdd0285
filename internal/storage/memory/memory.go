// Package memory реализует хранилище документов в памяти процесса.
// Обновления используют оптимистичную блокировку: документ читается вместе
// с версией, изменяется вне блокировки и записывается, только если версия
// не изменилась; иначе попытка повторяется.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

const defaultMaxRetries = 10

type document struct {
	user    *models.User
	version int64
}

// Storage хранилище в памяти. Безопасно для конкурентного использования.
type Storage struct {
	mu         sync.RWMutex
	users      map[string]document
	favorites  map[string][]models.Station
	history    map[string][]models.Station
	maxRetries int
	now        func() time.Time
}

// Option настраивает Storage.
type Option func(*Storage)

// WithMaxRetries задаёт число попыток транзакции.
func WithMaxRetries(n int) Option {
	return func(s *Storage) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithClock подменяет часы, которыми хранилище проставляет CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// New создаёт пустое хранилище.
func New(opts ...Option) *Storage {
	s := &Storage{
		users:      make(map[string]document),
		favorites:  make(map[string][]models.Station),
		history:    make(map[string][]models.Station),
		maxRetries: defaultMaxRetries,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUser возвращает копию документа.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.memory.GetUser"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.users[uid]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return doc.user.Clone(), nil
}

// CreateUserIfAbsent создаёт документ под блокировкой, повторный вызов ничего не меняет.
func (s *Storage) CreateUserIfAbsent(ctx context.Context, user models.User) (bool, error) {
	const op = "storage.memory.CreateUserIfAbsent"
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UID]; ok {
		return false, nil
	}
	u := user.Clone()
	u.CreatedAt = s.now()
	s.users[user.UID] = document{user: u, version: 1}
	return true, nil
}

// UpdateUserInTx применяет fn к свежей копии документа и фиксирует её,
// если за время работы fn документ не изменил другой писатель.
func (s *Storage) UpdateUserInTx(ctx context.Context, uid string, fn storage.UpdateFunc) (*models.User, *models.User, error) {
	const op = "storage.memory.UpdateUserInTx"

	for range s.maxRetries {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		s.mu.RLock()
		doc, ok := s.users[uid]
		s.mu.RUnlock()
		if !ok {
			return nil, nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		before := doc.user.Clone()
		after := doc.user.Clone()
		if err := fn(after); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		// Поля, которые задаются только при создании.
		after.UID = before.UID
		after.CreatedAt = before.CreatedAt

		s.mu.Lock()
		current, ok := s.users[uid]
		if ok && current.version == doc.version {
			s.users[uid] = document{user: after.Clone(), version: doc.version + 1}
			s.mu.Unlock()
			return before, after, nil
		}
		s.mu.Unlock()
	}
	return nil, nil, fmt.Errorf("%s: %w", op, storage.ErrTxRetriesExhausted)
}

// ListFavorites возвращает избранное в порядке добавления.
func (s *Storage) ListFavorites(ctx context.Context, uid string) ([]models.Station, error) {
	const op = "storage.memory.ListFavorites"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favorites[uid]), nil
}

// ToggleFavorite добавляет или удаляет станцию по StationUUID.
func (s *Storage) ToggleFavorite(ctx context.Context, uid string, station models.Station) (bool, error) {
	const op = "storage.memory.ToggleFavorite"
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.favorites[uid]
	idx := slices.IndexFunc(list, func(st models.Station) bool {
		return st.StationUUID == station.StationUUID
	})
	if idx >= 0 {
		s.favorites[uid] = slices.Delete(slices.Clone(list), idx, idx+1)
		return false, nil
	}
	s.favorites[uid] = append(slices.Clone(list), station)
	return true, nil
}

// ListHistory возвращает историю прослушивания, новые станции первыми.
func (s *Storage) ListHistory(ctx context.Context, uid string) ([]models.Station, error) {
	const op = "storage.memory.ListHistory"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history[uid]), nil
}

// RecordPlay добавляет станцию в начало истории.
func (s *Storage) RecordPlay(ctx context.Context, uid string, station models.Station) ([]models.Station, error) {
	const op = "storage.memory.RecordPlay"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := models.PushRecent(s.history[uid], station, models.HistoryLimit)
	s.history[uid] = list
	return slices.Clone(list), nil
}

// Close ничего не освобождает.
func (s *Storage) Close() error {
	return nil
}
