package realtime

import (
	"sync"
)

// DefaultHistory is the number of recent events a Hub keeps.
const DefaultHistory = 200

// Hub broadcasts events to subscribers and keeps a ring of recent events.
type Hub struct {
	mu        sync.RWMutex
	listeners map[chan Event]string
	ring      []Event
	next      int
	full      bool
}

// NewHub creates a Hub remembering up to history events.
func NewHub(history int) *Hub {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Hub{
		listeners: make(map[chan Event]string),
		ring:      make([]Event, history),
	}
}

// Subscribe returns a channel receiving events for entity, or every event
// when entity is empty. The caller must Unsubscribe when done.
func (h *Hub) Subscribe(entity string) chan Event {
	ch := make(chan Event, 1)
	h.mu.Lock()
	h.listeners[ch] = entity
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.listeners[ch]; ok {
		delete(h.listeners, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish records ev and offers it to matching subscribers. Delivery is
// non-blocking: a subscriber with an unread event skips this one.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ring[h.next] = ev
	h.next = (h.next + 1) % len(h.ring)
	if h.next == 0 {
		h.full = true
	}

	entity := ev.Entity()
	for ch, want := range h.listeners {
		if want != "" && want != entity {
			continue
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

// Listener adapts the hub for Channel.OnEvent.
func (h *Hub) Listener() Listener {
	return h.Publish
}

// Recent returns recorded events, newest first.
func (h *Hub) Recent() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.next
	if h.full {
		n = len(h.ring)
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.ring)) % len(h.ring)
		out = append(out, h.ring[idx])
	}
	return out
}

// Subscribers reports the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
