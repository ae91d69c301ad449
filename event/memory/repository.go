package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainpass/webhook-notify/event"
)

// Repository is an in-memory event store for tests and local runs
type Repository struct {
	mu     sync.Mutex
	events map[string]event.Event
}

// NewRepository creates an empty in-memory event repository
func NewRepository() *Repository {
	return &Repository{
		events: make(map[string]event.Event),
	}
}

// Store saves an event; events are immutable so overwrites are rejected
func (r *Repository) Store(_ context.Context, evt event.Event) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[evt.ID]; exists {
		return "", fmt.Errorf("event already exists: %s", evt.ID)
	}
	r.events[evt.ID] = evt
	return evt.ID, nil
}

// Get retrieves an event by ID
func (r *Repository) Get(_ context.Context, id string) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evt, exists := r.events[id]
	if !exists {
		return event.Event{}, fmt.Errorf("%w: %s", event.ErrNotFound, id)
	}
	return evt, nil
}
