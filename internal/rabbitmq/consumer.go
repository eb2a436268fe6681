package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(body []byte) error

// Consume читает очередь в workers горутинах, пока не отменен ctx или брокер
// не закрыл канал. Возвращает управление после завершения всех обработчиков;
// закрытие канала до отмены ctx возвращается как ошибка.
func Consume(ctx context.Context, ch *amqp.Channel, queue string, workers int, log *slog.Logger, handle Handler) error {
	const op = "rabbitmq.Consume"
	if workers <= 0 {
		workers = 1
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queue))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					settle(log, d, handle(d.Body))
				}
			}
		}()
	}
	wg.Wait()
	if ctx.Err() == nil {
		return fmt.Errorf("%s: delivery channel closed by broker", op)
	}
	return nil
}

func settle(log *slog.Logger, d amqp.Delivery, err error) {
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}
	log.Warn("message handling failed, requeueing",
		slog.String("message_id", d.MessageId),
		slog.Bool("redelivered", d.Redelivered),
		sl.Err(err))
	if nackErr := d.Nack(false, true); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
