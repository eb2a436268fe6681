package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gokart-trainings/internal/rabbitmq"
)

// AMQPPublisher публикует события в exchange RabbitMQ с именем события в качестве ключа маршрутизации.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher создает AMQPPublisher.
func NewAMQPPublisher(ch *amqp.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish отправляет конверт события. Вызовы сериализуются: amqp.Channel нельзя делить между горутинами.
func (p *AMQPPublisher) Publish(_ context.Context, event string, payload any) error {
	const op = "notifier.AMQPPublisher.Publish"
	ev, err := NewEvent(event, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishEvent(p.ch, p.exchange, ev); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
