package memory

import (
	"context"
	"sync"

	"github.com/chainpass/webhook-notify/replay"
)

// Repository is an in-memory replay history store for tests
type Repository struct {
	mu      sync.Mutex
	history []replay.History
}

// NewRepository creates an empty in-memory replay history
func NewRepository() *Repository {
	return &Repository{}
}

// Record appends one history row
func (r *Repository) Record(_ context.Context, h replay.History) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, h)
	return h.ID, nil
}

// ListByEvent returns history rows for an event, newest first
func (r *Repository) ListByEvent(_ context.Context, eventID string, limit int) ([]replay.History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []replay.History
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].EventID == eventID {
			out = append(out, r.history[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
