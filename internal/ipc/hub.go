package ipc

import (
	"sync"

	"github.com/1broseidon/kiosk/internal/kiosk"
)

// Hub fans outbound kiosk events out to SUBSCRIBE connections. It keeps the
// latest event of each state kind so late subscribers start from current
// state. One-shot kinds are delivered live only.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]chan kiosk.Event
	next    int
	last    map[kiosk.EventKind]kiosk.Event
	order   []kiosk.EventKind
	dropped int
	closed  bool
}

var _ kiosk.Notifier = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[int]chan kiosk.Event),
		last: make(map[kiosk.EventKind]kiosk.Event),
	}
}

// Notify broadcasts e without blocking. A subscriber whose buffer is full
// misses the event.
func (h *Hub) Notify(e kiosk.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	if e.Kind.State() {
		if _, seen := h.last[e.Kind]; !seen {
			h.order = append(h.order, e.Kind)
		}
		h.last[e.Kind] = e
	}

	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.dropped++
		}
	}
}

// Subscribe registers a subscriber. The channel first receives the latest
// event of every state kind seen so far, then live events. cancel unregisters and
// closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan kiosk.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if buffer < len(h.order) {
		buffer = len(h.order)
	}
	ch := make(chan kiosk.Event, buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	for _, kind := range h.order {
		ch <- h.last[kind]
	}

	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Dropped reports how many deliveries were skipped for slow subscribers.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
