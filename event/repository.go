package event

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no event exists for the given ID
var ErrNotFound = errors.New("event not found")

// Reader provides read access to recorded events
type Reader interface {
	Get(ctx context.Context, id string) (Event, error)
}

// Writer stores recorded events
type Writer interface {
	Store(ctx context.Context, evt Event) (string, error)
}

// Repository is the persistence contract for events. Events are
// written once and retained for replay and audit; there is no update
// or delete.
type Repository interface {
	Reader
	Writer
}
