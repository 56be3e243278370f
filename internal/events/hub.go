package events

import (
	"sync"

	"tutelliv/internal/utils"
)

const subscriberBuffer = 200

// Hub is the API-side fan-out point. Publish never blocks: a subscriber
// that cannot keep up loses events, which is harmless because consumers
// reload wholesale on the next one.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Message
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]chan Message)}
}

func (h *Hub) Subscribe() (string, <-chan Message) {
	id := utils.NanoID()
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	if ok {
		close(ch)
	}
}

func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
