package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WorkerHeartbeat represents the heartbeat data for a scheduler worker
type WorkerHeartbeat struct {
	WorkerID      string    `json:"worker_id"`
	Status        string    `json:"status"` // "idle", "processing"
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// SetWorkerHeartbeat stores or updates a worker's heartbeat in Redis
// The heartbeat key has a TTL of 60 seconds - a worker that stops
// publishing within that window is considered inactive
func (r *Repository) SetWorkerHeartbeat(ctx context.Context, workerID, status string) error {
	key := fmt.Sprintf("worker:heartbeat:%s", workerID)

	heartbeat := WorkerHeartbeat{
		WorkerID:      workerID,
		Status:        status,
		LastHeartbeat: time.Now(),
	}

	data, err := json.Marshal(heartbeat)
	if err != nil {
		return fmt.Errorf("marshaling heartbeat: %w", err)
	}

	// 60 second TTL - schedulers tick well inside that window
	err = r.client.Set(ctx, key, data, 60*time.Second).Err()
	if err != nil {
		return fmt.Errorf("setting heartbeat: %w", err)
	}

	return nil
}

// GetActiveWorkers retrieves all workers with a live heartbeat
func (r *Repository) GetActiveWorkers(ctx context.Context) ([]WorkerHeartbeat, error) {
	var workers []WorkerHeartbeat

	var cursor uint64
	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, "worker:heartbeat:*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning worker keys: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Result()
			if err == redis.Nil {
				// Key expired between scan and get
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("getting worker heartbeat: %w", err)
			}

			var heartbeat WorkerHeartbeat
			if err := json.Unmarshal([]byte(data), &heartbeat); err != nil {
				continue
			}

			workers = append(workers, heartbeat)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return workers, nil
}
