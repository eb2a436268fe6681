// Package rabbitmq содержит подключение к брокеру, объявление топологии
// событий тренировок, публикацию и потребление сообщений.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

// Dial подключается к брокеру. Между неудачными попытками выдерживается
// cfg.RabbitMQRetryDelay, всего попыток не больше cfg.RabbitMQMaxRetries.
func Dial(ctx context.Context, cfg config.RabbitMQ, log *slog.Logger) (*amqp.Connection, error) {
	const op = "rabbitmq.Dial"
	if cfg.RabbitMQMaxRetries <= 0 {
		return nil, fmt.Errorf("%s: max_retries must be positive", op)
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.RabbitMQMaxRetries; attempt++ {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		log.Warn("rabbitmq is not reachable yet",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", cfg.RabbitMQMaxRetries),
			sl.Err(err))

		if attempt == cfg.RabbitMQMaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, errors.Join(ctx.Err(), lastErr))
		case <-time.After(cfg.RabbitMQRetryDelay):
		}
	}
	return nil, fmt.Errorf("%s: %w", op, lastErr)
}

// Open открывает канал и объявляет на нем топологию.
func Open(conn *amqp.Connection, topo Topology) (*amqp.Channel, error) {
	const op = "rabbitmq.Open"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := topo.declare(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
