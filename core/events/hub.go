package events

import "sync"

// Hub fans emitted events out to an arbitrary number of subscribers. Slow
// subscribers never block the emitting operation; events beyond a channel's
// capacity are dropped for that subscriber only.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan Event
	buffer int
}

// NewHub constructs a hub whose subscriber channels buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{subs: make(map[uint64]chan Event), buffer: buffer}
}

// Emit implements the Emitter interface.
func (h *Hub) Emit(evt Event) {
	if h == nil || evt == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel together with a
// cancel function. The channel is closed when cancel is invoked.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close drops every subscriber and closes their channels. Emit calls after
// Close become no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
