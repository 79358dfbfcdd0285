// Package referralworker потребляет события изменения учётных записей
// из RabbitMQ и начисляет реферальные кредиты.
package referralworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/restaurant-radio/internal/app/infra"
	"github.com/magabrotheeeer/restaurant-radio/internal/changefeed"
	"github.com/magabrotheeeer/restaurant-radio/internal/config"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/rabbitmq"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/account"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/referral"
)

// ErrBrokerNotConfigured воркер запущен без адреса RabbitMQ.
var ErrBrokerNotConfigured = errors.New("rabbitmq url is not configured")

// NewDeliveryHandler разбирает сообщение UserChanged и передаёт снимки обработчику.
// Ошибка обработчика логируется, сообщение всё равно подтверждается.
func NewDeliveryHandler(h changefeed.Handler, log *slog.Logger) func(ctx context.Context, body []byte) error {
	const op = "referralworker.deliver"
	return func(ctx context.Context, body []byte) error {
		var event models.UserChanged
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrMalformed, err)
		}
		if err := h.OnUserUpdated(ctx, event.Before, event.After); err != nil {
			log.Error("referral trigger failed",
				slog.String("op", op),
				slog.String("event_id", event.ID),
				slog.String("uid", event.UserID),
				sl.Err(err),
			)
		}
		return nil
	}
}

// App воркер реферальных начислений.
type App struct {
	res      *infra.Resources
	broker   *infra.Broker
	referral *referral.Service
	prefetch int
	logger   *slog.Logger
}

// New открывает хранилище, кэш и брокер. Обновления пригласившего
// публикуются обратно в user-events, поэтому каскады обрабатываются тем же воркером.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.referralworker.New"
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrBrokerNotConfigured)
	}

	res, err := infra.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	broker, err := infra.OpenBroker(ctx, cfg.RabbitMQ)
	if err != nil {
		res.Close(logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	feed := changefeed.New(res.Store, rabbitmq.NewPublisher(broker.Channel), logger)
	feed.OnChange(account.New(feed, res.Cache, logger).InvalidateUser)

	return &App{
		res:      res,
		broker:   broker,
		referral: referral.New(feed, logger),
		prefetch: cfg.RabbitMQPrefetch,
		logger:   logger,
	}, nil
}

// Run обрабатывает очередь до отмены ctx или потери соединения.
func (a *App) Run(ctx context.Context) error {
	const op = "app.referralworker.Run"
	defer a.close()

	done, err := rabbitmq.ConsumerMessage(ctx, a.broker.Channel, rabbitmq.QueueReferralTrigger,
		a.prefetch, a.logger, NewDeliveryHandler(a.referral, a.logger))
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.QueueReferralTrigger), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	a.logger.Info("referral worker started", slog.String("queue", rabbitmq.QueueReferralTrigger))

	select {
	case <-done:
		if ctx.Err() == nil {
			return fmt.Errorf("%s: delivery channel closed", op)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("stopping referral worker, waiting for in-flight messages")
		<-done
		return nil
	}
}

func (a *App) close() {
	if err := a.broker.Close(); err != nil {
		a.logger.Error("failed to close rabbitmq", sl.Err(err))
	}
	a.res.Close(a.logger)
}
