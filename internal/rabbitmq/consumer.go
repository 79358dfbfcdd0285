package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
)

// ErrMalformed возвращается обработчиком для сообщений, которые нельзя
// разобрать. Такие сообщения отклоняются без возврата в очередь.
var ErrMalformed = errors.New("malformed message")

// DefaultConcurrency число одновременно обрабатываемых сообщений по умолчанию.
const DefaultConcurrency = 10

// ConsumerMessage создает потребителя сообщений из очереди RabbitMQ.
// Сообщение подтверждается после успешной обработки. Возвращённый канал
// закрывается, когда потребитель остановлен и все обработчики завершились.
func ConsumerMessage(
	ctx context.Context,
	ch *amqp.Channel,
	queueName string,
	concurrency int,
	log *slog.Logger,
	handler func(ctx context.Context, body []byte) error,
) (<-chan struct{}, error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	return consume(ctx, delivery, concurrency, log, handler), nil
}

// consume раздаёт доставки обработчикам, не более concurrency одновременно.
// Доставка, для которой не нашлось свободного обработчика до остановки,
// возвращается в очередь.
func consume(
	ctx context.Context,
	delivery <-chan amqp.Delivery,
	concurrency int,
	log *slog.Logger,
	handler func(ctx context.Context, body []byte) error,
) <-chan struct{} {
	done := make(chan struct{})
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	go func() {
		defer close(done)
		defer wg.Wait()
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					log.Info("consumer stopping, requeueing message")
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					defer wg.Done()
					settle(ctx, d, handler, log)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

func settle(ctx context.Context, d amqp.Delivery, handler func(context.Context, []byte) error, log *slog.Logger) {
	err := handler(context.WithoutCancel(ctx), d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, ErrMalformed):
		log.Warn("dropping malformed message", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	default:
		log.Error("handler failed, requeueing message", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
