package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// SignupCreatedQueue очередь, из которой рассыльщик забирает новые записи.
const SignupCreatedQueue = "signup.created"

// DefaultPrefetch сколько неподтвержденных сообщений брокер отдает одному каналу.
const DefaultPrefetch = 10

// Binding привязка durable-очереди к exchange по имени события.
type Binding struct {
	Queue string
	Event string
}

// Topology exchange событий и привязанные к нему очереди.
type Topology struct {
	Exchange string
	Bindings []Binding
	Prefetch int
}

// SignupTopology топология, нужная рассыльщику напоминаний. Остальные события
// уходят в exchange без очередей и брокером отбрасываются.
func SignupTopology(exchange string) Topology {
	return Topology{
		Exchange: exchange,
		Bindings: []Binding{{Queue: SignupCreatedQueue, Event: models.EventSignupCreated}},
		Prefetch: DefaultPrefetch,
	}
}

func (t Topology) declare(ch *amqp.Channel) error {
	prefetch := t.Prefetch
	if prefetch <= 0 {
		prefetch = DefaultPrefetch
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}
	for _, b := range t.Bindings {
		if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.Queue, err)
		}
		if err := ch.QueueBind(b.Queue, b.Event, t.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.Queue, b.Event, err)
		}
	}
	return nil
}
