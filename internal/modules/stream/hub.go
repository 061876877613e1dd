package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transports observers can subscribe over.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

type subscriber struct {
	transport string
	since     time.Time
}

// Hub tracks currently connected observers. It carries no delivery
// responsibility: every observer runs its own loop against the registry,
// so a slow or dead subscriber can never stall another. The hub exists
// for accounting only.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]subscriber)}
}

// Add registers a new observer and returns its subscriber id.
func (h *Hub) Add(transport string) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.subs[id] = subscriber{transport: transport, since: time.Now()}
	h.mu.Unlock()
	return id
}

// Remove drops an observer. Unknown ids are ignored.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// Count returns the number of connected observers, optionally filtered by
// transport ("" counts all).
func (h *Hub) Count(transport string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if transport == "" {
		return len(h.subs)
	}
	n := 0
	for _, s := range h.subs {
		if s.transport == transport {
			n++
		}
	}
	return n
}
