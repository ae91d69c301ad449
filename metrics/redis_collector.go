package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chainpass/webhook-notify/partner"
)

// RedisCollector implements the Collector interface for Redis-backed metrics
type RedisCollector struct {
	client         *redis.Client
	partnersLoader *partner.Loader
}

// NewRedisCollector creates a new Redis metrics collector
func NewRedisCollector(client *redis.Client, loader *partner.Loader) *RedisCollector {
	return &RedisCollector{
		client:         client,
		partnersLoader: loader,
	}
}

// Collect gathers all metrics from Redis
func (c *RedisCollector) Collect(ctx context.Context) (Metrics, error) {
	queueDepth, err := c.GetQueueDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depth: %w", err)
	}

	partnerBacklogs, err := c.GetPartnerBacklogs(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting partner backlogs: %w", err)
	}

	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	throughput, err := c.GetThroughput(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting throughput: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		QueueDepth:      queueDepth,
		PartnerBacklogs: partnerBacklogs,
		StatusCounts:    statusCounts,
		Throughput:      throughput,
		Workers:         workers,
		Timestamp:       time.Now(),
	}, nil
}

// GetQueueDepth returns the number of entries waiting in the delivery schedule
func (c *RedisCollector) GetQueueDepth(ctx context.Context) (int64, error) {
	depth, err := c.client.ZCard(ctx, "delivery:schedule").Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("getting schedule cardinality: %w", err)
	}
	return depth, nil
}

// GetPartnerBacklogs returns the number of entries recorded per configured partner
func (c *RedisCollector) GetPartnerBacklogs(ctx context.Context) (map[string]int64, error) {
	backlogs := make(map[string]int64)

	for _, p := range c.partnersLoader.List() {
		key := fmt.Sprintf("delivery:partner:%s", p.ID)

		count, err := c.client.ZCard(ctx, key).Result()
		if err != nil && err != redis.Nil {
			// Continue even if one partner index fails
			continue
		}

		backlogs[p.ID] = count
	}

	return backlogs, nil
}

// GetStatusCounts returns counts of delivery entries grouped by status
func (c *RedisCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	statusCounts := map[string]int64{
		"pending": 0,
		"success": 0,
		"failed":  0,
	}

	// Scan for all delivery:entry:* keys
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error

		scanKeys, cursor, err = c.client.Scan(ctx, cursor, "delivery:entry:*", 1000).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning entry keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return statusCounts, nil
	}

	// Use pipeline for efficient batch operations
	pipe := c.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(keys))

	for i, key := range keys {
		cmds[i] = pipe.HMGet(ctx, key, "status")
	}

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue
		}

		status, ok := data[0].(string)
		if !ok {
			continue
		}
		if _, exists := statusCounts[status]; exists {
			statusCounts[status]++
		}
	}

	return statusCounts, nil
}

// GetThroughput calculates entries delivered over different time windows.
// The completed set is scored by completion time, so each window is a
// single ZCOUNT.
func (c *RedisCollector) GetThroughput(ctx context.Context) (ThroughputMetrics, error) {
	now := time.Now()
	max := strconv.FormatInt(now.Unix(), 10)

	countSince := func(since time.Duration) (int64, error) {
		min := strconv.FormatInt(now.Add(-since).Unix(), 10)

		count, err := c.client.ZCount(ctx, "delivery:completed", min, max).Result()
		if err != nil && err != redis.Nil {
			return 0, fmt.Errorf("counting completed entries: %w", err)
		}
		return count, nil
	}

	lastMinute, err := countSince(1 * time.Minute)
	if err != nil {
		return ThroughputMetrics{}, err
	}

	lastFiveMinutes, err := countSince(5 * time.Minute)
	if err != nil {
		return ThroughputMetrics{}, err
	}

	lastFifteenMinutes, err := countSince(15 * time.Minute)
	if err != nil {
		return ThroughputMetrics{}, err
	}

	return ThroughputMetrics{
		LastMinute:         lastMinute,
		LastFiveMinutes:    lastFiveMinutes,
		LastFifteenMinutes: lastFifteenMinutes,
	}, nil
}

// GetActiveWorkers returns information about scheduler workers with a live heartbeat
func (c *RedisCollector) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	var workers []WorkerInfo

	// Scan for worker:heartbeat:* keys
	var cursor uint64

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, "worker:heartbeat:*", 1000).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning worker heartbeat keys: %w", err)
		}

		for _, key := range keys {
			data, err := c.client.Get(ctx, key).Result()
			if err != nil {
				continue
			}

			var workerInfo WorkerInfo
			if err := json.Unmarshal([]byte(data), &workerInfo); err != nil {
				continue
			}

			workers = append(workers, workerInfo)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return workers, nil
}
