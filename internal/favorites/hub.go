package favorites

import (
	"sync"

	"github.com/Clark-Hu/cinescope/internal/domain"
)

// EventKind describes what happened to a favorites list.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRemoved EventKind = "removed"
	EventCleared EventKind = "cleared"
)

// Event is published after every successful mutation. Favorites holds the
// full list after the change.
type Event struct {
	Namespace string              `json:"-"`
	Kind      EventKind           `json:"kind"`
	MovieID   int                 `json:"movieId,omitempty"`
	Favorites domain.FavoritesSet `json:"favorites"`
}

const subscriberBuffer = 16

// Hub fans favorites events out to subscribers of a namespace.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Event)}
}

// Subscribe registers interest in ns. The returned cancel func closes the
// channel and must be called once the subscriber is done.
func (h *Hub) Subscribe(ns string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberBuffer)
	if h.subs[ns] == nil {
		h.subs[ns] = make(map[int]chan Event)
	}
	h.subs[ns][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[ns], id)
			if len(h.subs[ns]) == 0 {
				delete(h.subs, ns)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers evt to every subscriber of its namespace. Subscribers
// whose buffer is full miss the event rather than block the publisher; each
// event carries the full list so the next one resynchronizes them.
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[evt.Namespace] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers of ns.
func (h *Hub) Subscribers(ns string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ns])
}
