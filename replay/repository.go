package replay

import "context"

// Repository is the persistence contract for replay history. Records
// are append-only: written once per invocation, listed per event.
type Repository interface {
	Record(ctx context.Context, h History) (string, error)
	ListByEvent(ctx context.Context, eventID string, limit int) ([]History, error)
}
