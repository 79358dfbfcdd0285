// Package infra открывает внешние зависимости по конфигурации: хранилище,
// кэш и брокер событий. Общий код для API и воркера.
package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/restaurant-radio/internal/cache"
	"github.com/magabrotheeeer/restaurant-radio/internal/config"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/health"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/migrations"
	"github.com/magabrotheeeer/restaurant-radio/internal/rabbitmq"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage/memory"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage/postgres"
)

// Cache кэш учётных записей и ответов каталога.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Resources открытые зависимости и их проверки живости.
type Resources struct {
	Store  storage.Store
	Cache  Cache
	Checks map[string]health.Checker

	closers []func() error
}

// Close закрывает зависимости в обратном порядке открытия.
func (r *Resources) Close(log *slog.Logger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Error("failed to close resource", sl.Err(err))
		}
	}
	r.closers = nil
}

// Open открывает хранилище и кэш. Для postgres применяются миграции.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Resources, error) {
	const op = "infra.Open"
	res := &Resources{Checks: map[string]health.Checker{}}

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		res.Store = memory.New(memory.WithMaxRetries(cfg.TxMaxRetries))
	default:
		db, err := postgres.New(ctx, cfg.StorageConnectionString, cfg.TxMaxRetries)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res.closers = append(res.closers, db.Close)
		if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			res.Close(log)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res.Store = db
		res.Checks["postgres"] = db.CheckDatabaseReady
	}

	if cfg.AddressRedis == "" {
		log.Info("redis address is empty, cache disabled")
		res.Cache = cache.Nop{}
		return res, nil
	}
	c, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		res.Close(log)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res.closers = append(res.closers, c.Close)
	res.Cache = c
	res.Checks["redis"] = c.Ping
	return res, nil
}

// Broker соединение с RabbitMQ и канал с объявленной топологией событий.
type Broker struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

// OpenBroker подключается к RabbitMQ и объявляет обменник user-events с очередями.
func OpenBroker(ctx context.Context, cfg config.RabbitMQ) (*Broker, error) {
	const op = "infra.OpenBroker"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQPrefetch, rabbitmq.GetUserEventQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Broker{Conn: conn, Channel: ch}, nil
}

// Close закрывает канал и соединение.
func (b *Broker) Close() error {
	chErr := b.Channel.Close()
	connErr := b.Conn.Close()
	if chErr != nil {
		return chErr
	}
	return connErr
}
