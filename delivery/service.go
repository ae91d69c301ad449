package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chainpass/webhook-notify/partner"
	"github.com/chainpass/webhook-notify/signature"
)

/* Service represents the business logic layer for the delivery queue
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the business operations for delivery management
type UseCase interface {
	Enqueue(ctx context.Context, eventID string, p *partner.Partner, payload []byte) (string, error)
	Get(ctx context.Context, id string) (Entry, error)
	ListByPartner(ctx context.Context, partnerID string, limit int) ([]Entry, error)
}

type Service struct {
	Repo        Repository
	MaxAttempts int
}

// NewService creates a new delivery service with dependency injection
func NewService(repo Repository, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Service{
		Repo:        repo,
		MaxAttempts: maxAttempts,
	}
}

/* Enqueue creates a pending entry for one event/partner pair,
 * snapshotting the partner's current callback URL. A partner with an
 * empty secret is a configuration error and is rejected outright —
 * enqueueing it would only produce unfixable signing failures.
 */
func (s *Service) Enqueue(ctx context.Context, eventID string, p *partner.Partner, payload []byte) (string, error) {
	if p == nil {
		return "", fmt.Errorf("enqueueing delivery: partner is nil")
	}
	if p.Secret == "" {
		return "", fmt.Errorf("enqueueing delivery for partner %s: %w", p.ID, signature.ErrEmptySecret)
	}
	if p.CallbackURL == "" {
		return "", fmt.Errorf("enqueueing delivery for partner %s: callback URL is empty", p.ID)
	}

	now := time.Now()
	nextRetryAt := now
	entry := Entry{
		ID:          uuid.New().String(),
		EventID:     eventID,
		PartnerID:   p.ID,
		URL:         p.CallbackURL,
		Payload:     payload,
		Status:      Pending,
		Attempts:    0,
		MaxAttempts: s.MaxAttempts,
		NextRetryAt: &nextRetryAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.Repo.Enqueue(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("storing delivery entry: %w", err)
	}
	return id, nil
}

// Get retrieves a delivery entry by ID
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	entry, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Entry{}, fmt.Errorf("getting delivery entry: %w", err)
	}
	return entry, nil
}

// ListByPartner retrieves recent delivery entries for a partner
func (s *Service) ListByPartner(ctx context.Context, partnerID string, limit int) ([]Entry, error) {
	entries, err := s.Repo.ListByPartner(ctx, partnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries for partner %s: %w", partnerID, err)
	}
	return entries, nil
}
