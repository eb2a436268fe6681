package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, event string, payload any) error {
	return m.Called(ctx, event, payload).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func decode(t *testing.T, raw []byte) models.Event {
	t.Helper()
	var ev models.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func receive(t *testing.T, s *Subscriber) []byte {
	t.Helper()
	select {
	case raw, ok := <-s.Messages():
		require.True(t, ok, "subscriber channel closed")
		return raw
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return nil
	}
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(models.EventTrainingDeleted, models.TrainingDeletedEvent{TrainingID: "t-1"})
	require.NoError(t, err)
	assert.Equal(t, models.EventTrainingDeleted, ev.Name)
	assert.JSONEq(t, `{"trainingId":"t-1"}`, string(ev.Payload))
	assert.WithinDuration(t, time.Now(), ev.EmittedAt, time.Minute)

	_, err = NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub(4, newNoopLogger())
	a, b := hub.Subscribe(), hub.Subscribe()
	require.Equal(t, 2, hub.Len())

	require.NoError(t, hub.Publish(context.Background(), models.EventSignupDeleted,
		models.SignupRef{ID: "s-1", TrainingID: "t-1"}))

	for _, s := range []*Subscriber{a, b} {
		ev := decode(t, receive(t, s))
		assert.Equal(t, models.EventSignupDeleted, ev.Name)
		assert.JSONEq(t, `{"signupId":"s-1","trainingId":"t-1"}`, string(ev.Payload))
	}
}

func TestHub_LateSubscriberMissesEarlierEvents(t *testing.T) {
	hub := NewHub(4, newNoopLogger())
	hub.Broadcast([]byte("early"))

	s := hub.Subscribe()
	hub.Broadcast([]byte("late"))

	assert.Equal(t, "late", string(receive(t, s)))
	select {
	case raw := <-s.Messages():
		t.Fatalf("unexpected event %q", raw)
	default:
	}
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	hub := NewHub(1, newNoopLogger())
	slow := hub.Subscribe()
	fast := hub.Subscribe()

	hub.Broadcast([]byte("1"))
	assert.Equal(t, "1", string(receive(t, fast)))
	hub.Broadcast([]byte("2"))

	assert.Equal(t, 1, hub.Len())
	assert.Equal(t, "2", string(receive(t, fast)))

	assert.Equal(t, "1", string(<-slow.Messages()))
	_, ok := <-slow.Messages()
	assert.False(t, ok)

	hub.Unsubscribe(slow)
	assert.Equal(t, 1, hub.Len())
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(0, newNoopLogger())
	s := hub.Subscribe()
	hub.Unsubscribe(s)
	hub.Unsubscribe(s)

	_, ok := <-s.Messages()
	assert.False(t, ok)
	assert.Zero(t, hub.Len())
	hub.Broadcast([]byte("nobody"))
}

func TestFanout_JoinsErrors(t *testing.T) {
	ctx := context.Background()
	ok := &PublisherMock{}
	ok.On("Publish", ctx, models.EventNewTraining, "p").Return(nil).Once()
	failing := &PublisherMock{}
	failing.On("Publish", ctx, models.EventNewTraining, "p").Return(errors.New("broker down")).Once()
	last := &PublisherMock{}
	last.On("Publish", ctx, models.EventNewTraining, "p").Return(nil).Once()

	err := Fanout{ok, failing, last}.Publish(ctx, models.EventNewTraining, "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	ok.AssertExpectations(t)
	failing.AssertExpectations(t)
	last.AssertExpectations(t)

	assert.NoError(t, Fanout{Nop{}}.Publish(ctx, models.EventNewTraining, "p"))
}

func TestRedisBridge(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hub := NewHub(4, newNoopLogger())
	sub := hub.Subscribe()
	relay := NewRedisRelay(client, "", hub, newNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels(DefaultRedisChannel)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	pub := NewRedisPublisher(client, DefaultRedisChannel)
	require.NoError(t, pub.Publish(ctx, models.EventSignupCreated, models.SignupEvent{TrainingID: "t-1"}))

	ev := decode(t, receive(t, sub))
	assert.Equal(t, models.EventSignupCreated, ev.Name)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRedisPublisher_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err = NewRedisPublisher(client, "").Publish(context.Background(), models.EventNewTraining, struct{}{})
	assert.Error(t, err)
}
