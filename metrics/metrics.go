package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the delivery subsystem.
type Metrics struct {
	// QueueDepth is the number of entries waiting in the delivery schedule
	QueueDepth int64 `json:"queue_depth"`

	// PartnerBacklogs maps partner_id to the number of entries recorded for it
	PartnerBacklogs map[string]int64 `json:"partner_backlogs"`

	// StatusCounts maps status name to count of entries in that status
	StatusCounts map[string]int64 `json:"status_counts"`

	// Throughput represents entries delivered per time window
	Throughput ThroughputMetrics `json:"throughput"`

	// Workers lists the schedulers with a live heartbeat
	Workers []WorkerInfo `json:"workers"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// ThroughputMetrics represents entries delivered over different time windows.
type ThroughputMetrics struct {
	// LastMinute is entries delivered in the last 1 minute
	LastMinute int64 `json:"last_minute"`

	// LastFiveMinutes is entries delivered in the last 5 minutes
	LastFiveMinutes int64 `json:"last_five_minutes"`

	// LastFifteenMinutes is entries delivered in the last 15 minutes
	LastFifteenMinutes int64 `json:"last_fifteen_minutes"`
}

// WorkerInfo represents information about an active scheduler worker.
type WorkerInfo struct {
	// WorkerID is a unique identifier for the worker
	WorkerID string `json:"worker_id"`

	// Status is the current status of the worker (e.g., "idle", "processing")
	Status string `json:"status"`

	// LastHeartbeat is the timestamp of the last heartbeat
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Collector defines the interface for collecting metrics from the delivery system.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetQueueDepth returns the number of entries in the delivery schedule
	GetQueueDepth(ctx context.Context) (int64, error)

	// GetPartnerBacklogs returns the number of entries recorded per partner
	GetPartnerBacklogs(ctx context.Context) (map[string]int64, error)

	// GetStatusCounts returns the count of entries by status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetThroughput returns entries delivered over time windows
	GetThroughput(ctx context.Context) (ThroughputMetrics, error)

	// GetActiveWorkers returns information about active scheduler workers
	GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error)
}
