package notifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/metrics"
)

// DefaultSubscriberBuffer размер очереди одного подписчика.
const DefaultSubscriberBuffer = 64

// Subscriber подписчик Hub. Канал Messages закрывается при отписке
// или когда подписчик не успевает читать события.
type Subscriber struct {
	ch chan []byte
}

// Messages возвращает канал закодированных событий.
func (s *Subscriber) Messages() <-chan []byte {
	return s.ch
}

// Hub раздает события подключенным подписчикам внутри процесса.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	buffer int
	log    *slog.Logger
}

// NewHub создает Hub.
func NewHub(buffer int, log *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe регистрирует нового подписчика. События, отправленные раньше, он не получит.
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{ch: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	metrics.StreamSubscribers.Set(float64(n))
	return s
}

// Unsubscribe удаляет подписчика. Повторный вызов безопасен.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	h.removeLocked(s)
	n := len(h.subs)
	h.mu.Unlock()
	metrics.StreamSubscribers.Set(float64(n))
}

func (h *Hub) removeLocked(s *Subscriber) {
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}

// Broadcast отправляет raw всем подписчикам без блокировки.
// Подписчик с заполненной очередью отключается.
func (h *Hub) Broadcast(raw []byte) {
	h.mu.Lock()
	dropped := 0
	for s := range h.subs {
		select {
		case s.ch <- raw:
		default:
			h.removeLocked(s)
			dropped++
		}
	}
	n := len(h.subs)
	h.mu.Unlock()

	if dropped > 0 {
		metrics.StreamSubscribers.Set(float64(n))
		h.log.Warn("slow stream subscribers dropped", slog.Int("count", dropped))
	}
}

// Publish кодирует событие и раздает его подписчикам.
func (h *Hub) Publish(_ context.Context, event string, payload any) error {
	raw, err := encodeEvent(event, payload)
	if err != nil {
		return err
	}
	h.Broadcast(raw)
	return nil
}

// Len возвращает число подписчиков.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
