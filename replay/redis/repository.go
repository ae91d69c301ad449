package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/chainpass/webhook-notify/replay"
)

/* Redis implementation of replay.Repository
 * History rows are immutable, so they are stored whole as JSON in a
 * per-event list: replay:event:{event_id}. LPush keeps newest first.
 */

const historyPrefix = "replay:event"

type Repository struct {
	client *redis.Client
}

// NewRepository creates a Redis-backed replay history repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Record appends one history row to the event's list
func (r *Repository) Record(ctx context.Context, h replay.History) (string, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("marshaling replay history: %w", err)
	}

	if err := r.client.LPush(ctx, historyKey(h.EventID), data).Err(); err != nil {
		return "", fmt.Errorf("storing replay history: %w", err)
	}
	return h.ID, nil
}

// ListByEvent returns history rows for an event, newest first
func (r *Repository) ListByEvent(ctx context.Context, eventID string, limit int) ([]replay.History, error) {
	if limit <= 0 {
		limit = 50
	}

	raw, err := r.client.LRange(ctx, historyKey(eventID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing replay history: %w", err)
	}

	history := make([]replay.History, 0, len(raw))
	for _, item := range raw {
		var h replay.History
		if err := json.Unmarshal([]byte(item), &h); err != nil {
			continue
		}
		history = append(history, h)
	}
	return history, nil
}

func historyKey(eventID string) string {
	return fmt.Sprintf("%s:%s", historyPrefix, eventID)
}
