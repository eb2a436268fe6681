package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
	"github.com/magabrotheeeer/gokart-trainings/internal/notifier"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStream_DeliversEvents(t *testing.T) {
	hub := notifier.NewHub(8, newNoopLogger())
	srv := httptest.NewServer(New(newNoopLogger(), hub))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), models.EventTrainingDeleted,
		models.TrainingDeletedEvent{TrainingID: "t-1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var ev models.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, models.EventTrainingDeleted, ev.Name)
	assert.JSONEq(t, `{"trainingId":"t-1"}`, string(ev.Payload))
	assert.False(t, ev.EmittedAt.IsZero())
}

func TestStream_UnsubscribesOnClose(t *testing.T) {
	hub := notifier.NewHub(8, newNoopLogger())
	srv := httptest.NewServer(New(newNoopLogger(), hub))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_SlowClientIsClosed(t *testing.T) {
	hub := notifier.NewHub(1, newNoopLogger())
	srv := httptest.NewServer(New(newNoopLogger(), hub))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	// Очередь подписчика вмещает одно событие, остальные приводят к отключению.
	for i := 0; i < 1000; i++ {
		hub.Broadcast([]byte(`{"event":"signup-created","payload":{}}`))
	}
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var closeErr error
	for closeErr == nil {
		_, _, closeErr = conn.ReadMessage()
	}
	assert.True(t, websocket.IsCloseError(closeErr, websocket.ClosePolicyViolation))
}

func TestStream_RejectsPlainHTTP(t *testing.T) {
	hub := notifier.NewHub(8, newNoopLogger())
	w := httptest.NewRecorder()
	New(newNoopLogger(), hub).ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, 0, hub.Len())
}
