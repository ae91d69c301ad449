package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chainpass/webhook-notify/delivery"
)

// ClaimLease is how long a claimed entry stays invisible to other
// claimers before it becomes re-claimable (crash between claim and
// result-write must not strand the entry forever)
const ClaimLease = 5 * time.Minute

/* Repository is an in-memory implementation of delivery.Repository
 * guarded by a mutex. It backs unit tests and local runs; the claim
 * semantics mirror the Redis implementation so the executor behaves
 * identically against either.
 */
type Repository struct {
	mu      sync.Mutex
	entries map[string]delivery.Entry
}

// NewRepository creates an empty in-memory repository
func NewRepository() *Repository {
	return &Repository{
		entries: make(map[string]delivery.Entry),
	}
}

// Enqueue stores a new entry
func (r *Repository) Enqueue(_ context.Context, entry delivery.Entry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; exists {
		return "", fmt.Errorf("entry already exists: %s", entry.ID)
	}
	r.entries[entry.ID] = entry
	return entry.ID, nil
}

// Get retrieves an entry by ID
func (r *Repository) Get(_ context.Context, id string) (delivery.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return delivery.Entry{}, fmt.Errorf("%w: %s", delivery.ErrNotFound, id)
	}
	return entry, nil
}

// ListByPartner returns the most recent entries for a partner
func (r *Repository) ListByPartner(_ context.Context, partnerID string, limit int) ([]delivery.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []delivery.Entry
	for _, entry := range r.entries {
		if entry.PartnerID == partnerID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

/* ClaimDue selects due entries and leases them under one lock
 * acquisition, which makes the select-and-mark atomic: a concurrent
 * ClaimDue cannot observe an entry between selection and lease.
 */
func (r *Repository) ClaimDue(_ context.Context, now time.Time, limit int) ([]delivery.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []delivery.Entry
	for _, entry := range r.entries {
		if !entry.Due(now) {
			continue
		}
		if entry.ClaimedUntil != nil && entry.ClaimedUntil.After(now) {
			continue // leased by another claimer
		}
		due = append(due, entry)
	}

	// Oldest schedule first for fairness
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRetryAt.Before(*due[j].NextRetryAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]delivery.Entry, 0, len(due))
	for _, entry := range due {
		lease := now.Add(ClaimLease)
		entry.ClaimedUntil = &lease
		r.entries[entry.ID] = entry
		claimed = append(claimed, entry)
	}
	return claimed, nil
}

// RecordResult folds the attempt outcome into the entry and releases
// the claim
func (r *Repository) RecordResult(_ context.Context, id string, res delivery.Result) (delivery.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return delivery.Entry{}, fmt.Errorf("%w: %s", delivery.ErrNotFound, id)
	}

	updated := delivery.ApplyResult(entry, res, time.Now())
	r.entries[id] = updated
	return updated, nil
}

// Close is a no-op for the in-memory repository
func (r *Repository) Close(_ context.Context) error {
	return nil
}
