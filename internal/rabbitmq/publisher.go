package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// PublishEvent отправляет конверт события в exchange. Ключ маршрутизации
// совпадает с именем события.
func PublishEvent(ch *amqp.Channel, exchange string, ev models.Event) error {
	const op = "rabbitmq.PublishEvent"
	if ev.Name == "" {
		return fmt.Errorf("%s: event name is empty", op)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         ev.Name,
		Timestamp:    ev.EmittedAt,
		Body:         body,
	}
	if err := ch.Publish(exchange, ev.Name, false, false, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
