// Package hub fans history changes out to subscribers such as IPC watch
// connections and the tray. It is transport-agnostic: subscribers register,
// receive events through a non-blocking Send, and the app publishes one event
// per history mutation.
package hub

import (
	"log/slog"
	"sync"
)

// Reason says what changed the history.
type Reason string

const (
	ReasonLoad      Reason = "load"
	ReasonClipboard Reason = "clipboard"
	ReasonCommit    Reason = "commit"
	ReasonPush      Reason = "push"
	ReasonUse       Reason = "use"
	ReasonResize    Reason = "resize"
)

// Event is a history snapshot delivered to a subscriber.
type Event struct {
	Reason  Reason
	Entries []string // most recent first; shared, never mutate
}

// Subscriber is anything that wants history events.
type Subscriber interface {
	ID() string
	// Send delivers an event to the subscriber. Must be non-blocking.
	Send(Event)
}

// Hub routes history events to all registered subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]Subscriber
	latest *Event
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[string]Subscriber)}
}

// Register adds a subscriber and immediately delivers the latest snapshot,
// if one has been published.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	h.subs[s.ID()] = s
	latest := h.latest
	total := len(h.subs)
	h.mu.Unlock()

	slog.Debug("subscriber registered", "subscriber", s.ID(), "total", total)

	if latest != nil {
		s.Send(*latest)
	}
}

// Unregister removes a subscriber.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	delete(h.subs, s.ID())
	total := len(h.subs)
	h.mu.Unlock()

	slog.Debug("subscriber unregistered", "subscriber", s.ID(), "total", total)
}

// Publish stores ev as the latest snapshot and fans it out.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	h.latest = &ev
	targets := make([]Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.Send(ev)
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
