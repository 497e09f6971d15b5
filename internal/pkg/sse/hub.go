// Package sse fans out server-sent events to connected clients grouped by
// audience.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// StaffAudience receives events about every employee. Employees subscribe
// under their own identifier.
const StaffAudience = "*"

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Audience string
	Event    string
	Data     interface{}
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber and returns the event channel and cleanup function
func (h *Hub) Subscribe(audience string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[audience] == nil {
		h.subscribers[audience] = make(map[chan Event]struct{})
	}
	h.subscribers[audience][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[audience], ch)
			close(ch)
			if len(h.subscribers[audience]) == 0 {
				delete(h.subscribers, audience)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to every subscriber of audience. Slow subscribers
// miss events rather than block the publisher.
func (h *Hub) Publish(audience string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Audience = audience
	for ch := range h.subscribers[audience] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers of audience
func (h *Hub) SubscriberCount(audience string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[audience])
}

// Write encodes event in the text/event-stream wire format.
func Write(w io.Writer, event Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
	return err
}
