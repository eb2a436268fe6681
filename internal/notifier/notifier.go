// Package notifier рассылает события об изменениях тренировок и записей.
//
// Событие публикуется после фиксации транзакции и уходит в конверте
// {"event", "payload", "emittedAt"} в локальный Hub (WebSocket-клиенты), в канал redis
// для других экземпляров API и в RabbitMQ для рассыльщика писем.
// Доставка не гарантируется: клиент, пропустивший событие, перечитывает список тренировок.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/metrics"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Publisher публикует событие с полезной нагрузкой payload.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// NewEvent собирает конверт события.
func NewEvent(name string, payload any) (models.Event, error) {
	const op = "notifier.NewEvent"
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.Event{Name: name, Payload: raw, EmittedAt: time.Now().UTC()}, nil
}

func encodeEvent(name string, payload any) ([]byte, error) {
	ev, err := NewEvent(name, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ev)
}

// Fanout публикует событие во все вложенные Publisher и объединяет ошибки.
type Fanout []Publisher

// Publish вызывает каждый Publisher, даже если предыдущий вернул ошибку.
func (f Fanout) Publish(ctx context.Context, event string, payload any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		metrics.EventsPublished.WithLabelValues(event, "error").Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(event, "ok").Inc()
	return nil
}

// Nop ничего не публикует.
type Nop struct{}

// Publish ничего не делает.
func (Nop) Publish(context.Context, string, any) error { return nil }
