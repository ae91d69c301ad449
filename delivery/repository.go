package delivery

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no entry exists for the given ID
var ErrNotFound = errors.New("delivery entry not found")

/* Small, focused interfaces composed into the full Repository
 * Interfaces abstract behavior, not things; the executor only needs
 * Claimer + Writer, the HTTP layer only needs Reader
 */

// Reader provides read operations for delivery entries
type Reader interface {
	Get(ctx context.Context, id string) (Entry, error)
	ListByPartner(ctx context.Context, partnerID string, limit int) ([]Entry, error)
}

// Writer provides write operations for delivery entries
type Writer interface {
	/* Enqueue stores a new entry with status pending and
	 * next_retry_at set to its creation time, returning the entry ID
	 */
	Enqueue(ctx context.Context, entry Entry) (string, error)
	/* RecordResult folds an attempt outcome into the entry (via
	 * ApplyResult) and persists it, releasing the claim. Returns the
	 * updated entry.
	 */
	RecordResult(ctx context.Context, id string, res Result) (Entry, error)
}

// Claimer provides the atomic dequeue operation for schedulers
type Claimer interface {
	/* ClaimDue atomically selects entries due at now (pending or
	 * retryable failed, next_retry_at <= now) and leases them so that
	 * concurrent scheduler instances never dispatch the same entry
	 * twice. A claim that is never resolved expires with its lease and
	 * the entry becomes claimable again.
	 */
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]Entry, error)
}

// Repository is the full persistence contract for the delivery queue
type Repository interface {
	Reader
	Writer
	Claimer
	Close(ctx context.Context) error
}
