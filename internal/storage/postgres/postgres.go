// Package postgres реализует хранилище учётных записей и избранного
// на PostgreSQL через database/sql и драйвер pgx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

const defaultTxMaxRetries = 5

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB           *sql.DB
	txMaxRetries int
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, dsn string, txMaxRetries int) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithDB(db, txMaxRetries), nil
}

// NewWithDB оборачивает готовое соединение.
func NewWithDB(db *sql.DB, txMaxRetries int) *Storage {
	if txMaxRetries <= 0 {
		txMaxRetries = defaultTxMaxRetries
	}
	return &Storage{DB: db, txMaxRetries: txMaxRetries}
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	const op = "storage.postgres.CheckDatabaseReady"
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: required table users missing", op)
	}
	return nil
}

// isRetryable сообщает, что транзакцию откатил сервер из-за конфликта и её можно повторить.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
