// Package storage описывает границу хранилища документов пользователей:
// чтение по ключу, создание при отсутствии и транзакционное обновление
// одного документа с повтором при конфликте.
package storage

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

var (
	// ErrUserNotFound документ пользователя отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrTxRetriesExhausted транзакция не смогла зафиксироваться за отведённое число попыток.
	ErrTxRetriesExhausted = errors.New("transaction retries exhausted")
)

// UpdateFunc изменяет копию документа внутри транзакции. Функция может
// вызываться несколько раз: при каждом повторе она получает свежую копию.
type UpdateFunc func(u *models.User) error

// UserStore коллекция учётных записей, ключ UID.
type UserStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	// CreateUserIfAbsent атомарно создаёт документ, если его ещё нет.
	// CreatedAt назначает хранилище. Возвращает true, если документ создан.
	CreateUserIfAbsent(ctx context.Context, user models.User) (bool, error)
	// UpdateUserInTx читает документ, применяет fn и фиксирует результат.
	// Возвращает снимки до и после изменения.
	UpdateUserInTx(ctx context.Context, uid string, fn UpdateFunc) (before, after *models.User, err error)
}

// FavoriteStore избранные станции пользователя.
type FavoriteStore interface {
	ListFavorites(ctx context.Context, uid string) ([]models.Station, error)
	// ToggleFavorite удаляет станцию, если она уже в избранном, иначе добавляет.
	// Возвращает true, если станция добавлена.
	ToggleFavorite(ctx context.Context, uid string, station models.Station) (bool, error)
}

// HistoryStore недавно прослушанные станции, новые первыми.
type HistoryStore interface {
	ListHistory(ctx context.Context, uid string) ([]models.Station, error)
	// RecordPlay ставит станцию в начало истории без повторов по StationUUID,
	// обрезает историю до models.HistoryLimit и возвращает её новое состояние.
	RecordPlay(ctx context.Context, uid string, station models.Station) ([]models.Station, error)
}

// Store полный набор операций хранилища.
type Store interface {
	UserStore
	FavoriteStore
	HistoryStore
	Close() error
}
