package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chainpass/webhook-notify/delivery"
)

/* Redis implementation of delivery.Repository
 * Uses Redis Hashes for entry state and a Sorted Set as the retry
 * schedule, scored by next_retry_at. Claiming pushes an entry's score
 * forward by the lease duration inside a Lua script, so two
 * concurrent scheduler instances can never claim the same entry: the
 * select-and-relocate is a single atomic server-side operation. A
 * claim that is never resolved simply becomes due again when the
 * lease expires.
 */

const (
	entryPrefix   = "delivery:entry"   // Hash: delivery:entry:{entry_id}
	scheduleKey   = "delivery:schedule" // ZSET: member entry_id, score next_retry_at
	partnerPrefix = "delivery:partner" // ZSET per partner: member entry_id, score created_at
	completedKey  = "delivery:completed" // ZSET: member entry_id, score completed_at (throughput metrics)

	// ClaimLease mirrors the in-memory repository's lease duration
	ClaimLease = 5 * time.Minute
)

// claimScript atomically selects due entries and pushes their
// schedule score to now+lease. KEYS[1]=schedule, ARGV[1]=now,
// ARGV[2]=now+lease, ARGV[3]=limit.
var claimScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[3]))
for i, id in ipairs(due) do
  redis.call('ZADD', KEYS[1], ARGV[2], id)
end
return due
`)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a Redis-backed delivery repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Enqueue stores a new entry and schedules it
func (r *Repository) Enqueue(ctx context.Context, entry delivery.Entry) (string, error) {
	if entry.NextRetryAt == nil {
		return "", fmt.Errorf("enqueued entry must have next_retry_at set")
	}

	if err := r.client.HSet(ctx, entryKey(entry.ID), entryFields(entry)).Err(); err != nil {
		return "", fmt.Errorf("storing entry: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, scheduleKey, redis.Z{Score: float64(entry.NextRetryAt.Unix()), Member: entry.ID})
	pipe.ZAdd(ctx, partnerKey(entry.PartnerID), redis.Z{Score: float64(entry.CreatedAt.Unix()), Member: entry.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("scheduling entry: %w", err)
	}

	return entry.ID, nil
}

// Get retrieves an entry by ID
func (r *Repository) Get(ctx context.Context, id string) (delivery.Entry, error) {
	data, err := r.client.HGetAll(ctx, entryKey(id)).Result()
	if err != nil {
		return delivery.Entry{}, fmt.Errorf("getting entry: %w", err)
	}
	if len(data) == 0 {
		return delivery.Entry{}, fmt.Errorf("%w: %s", delivery.ErrNotFound, id)
	}
	return entryFromFields(data), nil
}

// ListByPartner returns the most recent entries for a partner
func (r *Repository) ListByPartner(ctx context.Context, partnerID string, limit int) ([]delivery.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	ids, err := r.client.ZRevRange(ctx, partnerKey(partnerID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing partner entries: %w", err)
	}

	entries := make([]delivery.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.Get(ctx, id)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ClaimDue atomically claims entries due at now
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]delivery.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	lease := now.Add(ClaimLease)
	ids, err := claimScript.Run(ctx, r.client, []string{scheduleKey},
		now.Unix(), lease.Unix(), limit).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("claiming due entries: %w", err)
	}

	entries := make([]delivery.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.Get(ctx, id)
		if err != nil {
			// Hash gone but still scheduled; drop the orphan
			r.client.ZRem(ctx, scheduleKey, id)
			continue
		}
		claimedUntil := lease
		entry.ClaimedUntil = &claimedUntil
		r.client.HSet(ctx, entryKey(id), "claimed_until", lease.Unix())
		entries = append(entries, entry)
	}
	return entries, nil
}

// RecordResult folds the attempt outcome into the entry, persists it
// and fixes up the schedule
func (r *Repository) RecordResult(ctx context.Context, id string, res delivery.Result) (delivery.Entry, error) {
	entry, err := r.Get(ctx, id)
	if err != nil {
		return delivery.Entry{}, err
	}

	updated := delivery.ApplyResult(entry, res, time.Now())

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, entryKey(id), entryFields(updated))
	if updated.Terminal() {
		pipe.ZRem(ctx, scheduleKey, id)
		if updated.CompletedAt != nil {
			pipe.ZAdd(ctx, completedKey, redis.Z{Score: float64(updated.CompletedAt.Unix()), Member: id})
		}
	} else {
		pipe.ZAdd(ctx, scheduleKey, redis.Z{Score: float64(updated.NextRetryAt.Unix()), Member: id})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return delivery.Entry{}, fmt.Errorf("recording result: %w", err)
	}

	return updated, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

// Helper functions

func entryKey(id string) string {
	return fmt.Sprintf("%s:%s", entryPrefix, id)
}

func partnerKey(partnerID string) string {
	return fmt.Sprintf("%s:%s", partnerPrefix, partnerID)
}

func entryFields(e delivery.Entry) map[string]interface{} {
	return map[string]interface{}{
		"id":               e.ID,
		"event_id":         e.EventID,
		"partner_id":       e.PartnerID,
		"url":              e.URL,
		"payload":          e.Payload,
		"status":           e.Status.String(),
		"attempts":         e.Attempts,
		"max_attempts":     e.MaxAttempts,
		"last_attempt_at":  unixOrZero(e.LastAttemptAt),
		"next_retry_at":    unixOrZero(e.NextRetryAt),
		"claimed_until":    unixOrZero(e.ClaimedUntil),
		"response_status":  e.ResponseStatus,
		"response_body":    e.ResponseBody,
		"response_time_ms": e.ResponseTimeMS,
		"last_error":       e.LastError,
		"completed_at":     unixOrZero(e.CompletedAt),
		"created_at":       e.CreatedAt.Unix(),
		"updated_at":       e.UpdatedAt.Unix(),
	}
}

func entryFromFields(data map[string]string) delivery.Entry {
	return delivery.Entry{
		ID:             data["id"],
		EventID:        data["event_id"],
		PartnerID:      data["partner_id"],
		URL:            data["url"],
		Payload:        []byte(data["payload"]),
		Status:         delivery.NewStatus(data["status"]),
		Attempts:       int(parseInt64(data["attempts"])),
		MaxAttempts:    int(parseInt64(data["max_attempts"])),
		LastAttemptAt:  timeOrNil(data["last_attempt_at"]),
		NextRetryAt:    timeOrNil(data["next_retry_at"]),
		ClaimedUntil:   timeOrNil(data["claimed_until"]),
		ResponseStatus: int(parseInt64(data["response_status"])),
		ResponseBody:   data["response_body"],
		ResponseTimeMS: parseInt64(data["response_time_ms"]),
		LastError:      data["last_error"],
		CompletedAt:    timeOrNil(data["completed_at"]),
		CreatedAt:      time.Unix(parseInt64(data["created_at"]), 0),
		UpdatedAt:      time.Unix(parseInt64(data["updated_at"]), 0),
	}
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

func timeOrNil(s string) *time.Time {
	unix := parseInt64(s)
	if unix == 0 {
		return nil
	}
	t := time.Unix(unix, 0)
	return &t
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
