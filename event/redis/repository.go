package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chainpass/webhook-notify/event"
)

/* Redis implementation of event.Repository
 * One hash per event: event:{event_id}. Events are write-once and
 * retained for replay and audit.
 */

const eventPrefix = "event"

type Repository struct {
	client *redis.Client
}

// NewRepository creates a Redis-backed event repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Store saves an event hash keyed by event ID
func (r *Repository) Store(ctx context.Context, evt event.Event) (string, error) {
	key := eventKey(evt.ID)

	// Events are immutable; refuse to overwrite
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("checking event existence: %w", err)
	}
	if exists > 0 {
		return "", fmt.Errorf("event already exists: %s", evt.ID)
	}

	err = r.client.HSet(ctx, key, map[string]interface{}{
		"id":         evt.ID,
		"type":       evt.Type,
		"payload":    evt.Payload,
		"created_at": evt.CreatedAt.Unix(),
	}).Err()
	if err != nil {
		return "", fmt.Errorf("storing event: %w", err)
	}

	return evt.ID, nil
}

// Get retrieves an event by ID
func (r *Repository) Get(ctx context.Context, id string) (event.Event, error) {
	data, err := r.client.HGetAll(ctx, eventKey(id)).Result()
	if err != nil {
		return event.Event{}, fmt.Errorf("getting event: %w", err)
	}
	if len(data) == 0 {
		return event.Event{}, fmt.Errorf("%w: %s", event.ErrNotFound, id)
	}

	createdAt, _ := strconv.ParseInt(data["created_at"], 10, 64)
	return event.Event{
		ID:        data["id"],
		Type:      data["type"],
		Payload:   []byte(data["payload"]),
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}

func eventKey(id string) string {
	return fmt.Sprintf("%s:%s", eventPrefix, id)
}
