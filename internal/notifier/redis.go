package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

// DefaultRedisChannel канал redis, через который экземпляры обмениваются событиями.
const DefaultRedisChannel = "trainings:events"

// RedisPublisher публикует события в канал redis.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher создает RedisPublisher.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish отправляет конверт события в канал.
func (p *RedisPublisher) Publish(ctx context.Context, event string, payload any) error {
	const op = "notifier.RedisPublisher.Publish"
	raw, err := encodeEvent(event, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.client.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Broadcaster принимает закодированные события.
type Broadcaster interface {
	Broadcast(raw []byte)
}

// RedisRelay пересылает события из канала redis в локальный Hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     Broadcaster
	log     *slog.Logger
}

// NewRedisRelay создает RedisRelay.
func NewRedisRelay(client *redis.Client, channel string, hub Broadcaster, log *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisRelay{client: client, channel: channel, hub: hub, log: log}
}

// Run подписывается на канал и пересылает сообщения, пока не отменен ctx.
func (r *RedisRelay) Run(ctx context.Context) error {
	const op = "notifier.RedisRelay.Run"
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			r.log.Warn("failed to close redis subscription", sl.Err(err))
		}
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	r.log.Info("redis event relay subscribed", slog.String("channel", r.channel))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("%s: subscription closed", op)
			}
			r.hub.Broadcast([]byte(msg.Payload))
		}
	}
}
