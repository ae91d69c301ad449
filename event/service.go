package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chainpass/webhook-notify/partner"
)

// Enqueuer is the slice of the delivery service the fan-out needs
type Enqueuer interface {
	Enqueue(ctx context.Context, eventID string, p *partner.Partner, payload []byte) (string, error)
}

// PartnerSource lists the partners eligible for notification
type PartnerSource interface {
	ListActive() []*partner.Partner
}

// UseCase defines the business operations for event intake
type UseCase interface {
	Record(ctx context.Context, eventType string, payload []byte) (Event, []string, error)
	Get(ctx context.Context, id string) (Event, error)
}

/* Service records an upstream business event and fans it out to the
 * delivery queue: one queue entry per active partner, each carrying a
 * snapshot of the payload bytes.
 */
type Service struct {
	Repo     Repository
	Partners PartnerSource
	Queue    Enqueuer
}

// NewService creates a new event service with dependency injection
func NewService(repo Repository, partners PartnerSource, queue Enqueuer) *Service {
	return &Service{
		Repo:     repo,
		Partners: partners,
		Queue:    queue,
	}
}

// Record stores the event and enqueues one delivery per active
// partner. Returns the event and the delivery entry IDs created.
func (s *Service) Record(ctx context.Context, eventType string, payload []byte) (Event, []string, error) {
	evt := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := evt.Validate(); err != nil {
		return Event{}, nil, fmt.Errorf("validating event: %w", err)
	}

	if _, err := s.Repo.Store(ctx, evt); err != nil {
		return Event{}, nil, fmt.Errorf("storing event: %w", err)
	}

	partners := s.Partners.ListActive()
	entryIDs := make([]string, 0, len(partners))
	for _, p := range partners {
		entryID, err := s.Queue.Enqueue(ctx, evt.ID, p, evt.Payload)
		if err != nil {
			/* The event is already durably recorded; a partner whose
			 * enqueue fails misses this notification rather than
			 * blocking the rest of the fan-out
			 */
			return evt, entryIDs, fmt.Errorf("enqueueing for partner %s: %w", p.ID, err)
		}
		entryIDs = append(entryIDs, entryID)
	}

	return evt, entryIDs, nil
}

// Get retrieves a recorded event by ID
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	evt, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Event{}, fmt.Errorf("getting event: %w", err)
	}
	return evt, nil
}
