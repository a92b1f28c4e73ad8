package achievements

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub fans unlock notifications out to live subscribers (the SSE stream).
// Publishing never blocks: a subscriber whose buffer is full misses the message.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan Unlock
	buffer int
	log    *zap.Logger
}

// NewHub creates a hub whose subscriber channels hold buffer pending notifications.
func NewHub(buffer int, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{subs: make(map[string]chan Unlock), buffer: buffer, log: log}
}

// Subscribe registers a listener. The returned cancel func closes the channel and is safe to call twice.
func (h *Hub) Subscribe() (string, <-chan Unlock, func()) {
	id := uuid.NewString()
	ch := make(chan Unlock, h.buffer)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return id, ch, cancel
}

// Publish delivers u to every subscriber without blocking.
func (h *Hub) Publish(u Unlock) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- u:
		default:
			h.log.Warn("dropping unlock notification for slow subscriber",
				zap.String("subscriber", id), zap.Uint("achievement", u.ID))
		}
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
