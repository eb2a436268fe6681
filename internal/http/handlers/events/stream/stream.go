// Package stream реализует WebSocket-поток событий об изменениях тренировок и записей.
//
// Каждое событие уходит клиенту отдельным текстовым кадром в виде JSON-конверта
// {"event", "payload", "emittedAt"}. Клиент, не успевающий читать, отключается
// и должен перечитать состояние после переподключения.
package stream

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/notifier"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Hub источник событий для подписчиков.
type Hub interface {
	Subscribe() *notifier.Subscriber
	Unsubscribe(s *notifier.Subscriber)
}

// Handler обрабатывает подключения к /ws.
type Handler struct {
	log      *slog.Logger
	hub      Hub
	upgrader websocket.Upgrader
}

// New создает Handler.
func New(log *slog.Logger, hub Hub) *Handler {
	return &Handler{
		log: log,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP godoc
// @Summary Поток событий
// @Description WebSocket. События new-training, training-deleted, signup-created, signup-updated, signup-deleted, user-updated.
// @Tags Events
// @Router /ws [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.stream"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Info("websocket upgrade failed", sl.Err(err))
		return
	}

	sub := h.hub.Subscribe()
	log.Debug("stream client connected", slog.String("remote", r.RemoteAddr))

	done := make(chan struct{})
	go h.readLoop(conn, done)
	h.writeLoop(conn, sub, done, log)

	h.hub.Unsubscribe(sub)
	_ = conn.Close()
	log.Debug("stream client disconnected", slog.String("remote", r.RemoteAddr))
}

// readLoop читает кадры клиента, чтобы обрабатывать pong и close. Входящие сообщения игнорируются.
func (h *Handler) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, sub *notifier.Subscriber, done <-chan struct{}, log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("failed to write event", sl.Err(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
