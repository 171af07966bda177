// Package events fans cache-invalidation signals out to connected clients so
// every view showing cart-derived state knows to refetch.
package events

import (
	"sync"
	"time"
)

// Paths invalidated by a cart mutation: the cart page and the homepage
// (header badge).
var CartPaths = []string{"/cart", "/"}

// Invalidation tells a user's views that the given paths are stale.
type Invalidation struct {
	UserID int64     `json:"userId"`
	Paths  []string  `json:"paths"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Hub is an in-process publish/subscribe hub keyed by user id.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int64]map[int]chan Invalidation
	buffer int
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 8
	}
	return &Hub{subs: make(map[int64]map[int]chan Invalidation), buffer: buffer}
}

// Subscribe returns a channel of the user's invalidations and a cancel func
// that closes it.
func (h *Hub) Subscribe(userID int64) (<-chan Invalidation, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan Invalidation, h.buffer)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Invalidation)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers inv to every subscriber of inv.UserID. A subscriber whose
// buffer is full misses the event; the next one triggers the same refetch.
func (h *Hub) Publish(inv Invalidation) {
	if inv.At.IsZero() {
		inv.At = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[inv.UserID] {
		select {
		case ch <- inv:
		default:
		}
	}
}

// Subscribers reports how many subscriptions the user has.
func (h *Hub) Subscribers(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
