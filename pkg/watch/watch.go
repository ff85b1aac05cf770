// Package watch fans change notifications out to subscribers.
//
// Signals carry no payload and coalesce: a subscriber that has not drained its
// channel yet receives at most one pending signal. Subscribers are expected to
// re-read whatever state they care about when woken up.
package watch

import "sync"

type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// Subscribe registers a new subscriber. The returned func unregisters it and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]chan struct{})
	}

	id := h.nextID
	h.nextID++

	ch := make(chan struct{}, 1)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish wakes every subscriber without blocking.
func (h *Hub) Publish() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
