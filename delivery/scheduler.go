package delivery

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTickInterval is how often a scheduler instance polls the
// queue for due entries
const DefaultTickInterval = 15 * time.Second

// Heartbeater publishes worker liveness so operators can see which
// scheduler instances are active
type Heartbeater interface {
	SetWorkerHeartbeat(ctx context.Context, workerID, status string) error
}

/* Scheduler drives the executor on a periodic tick. Multiple
 * instances may run concurrently against the same queue; correctness
 * rests entirely on the repository's atomic claim, not on any
 * coordination between schedulers.
 */
type Scheduler struct {
	Executor  *Executor
	Interval  time.Duration
	WorkerID  string
	Heartbeat Heartbeater
	Log       zerolog.Logger

	ticker *time.Ticker
	done   chan struct{}
}

// NewScheduler creates a scheduler around an executor
func NewScheduler(executor *Executor, workerID string, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		Executor: executor,
		Interval: interval,
		WorkerID: workerID,
		Log:      log,
	}
}

// Start begins the background tick loop
func (s *Scheduler) Start(ctx context.Context) {
	s.ticker = time.NewTicker(s.Interval)
	s.done = make(chan struct{})
	go s.run(ctx)
	s.Log.Info().Str("worker_id", s.WorkerID).Dur("interval", s.Interval).Msg("delivery scheduler started")
}

// Stop halts the background tick loop
func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.done != nil {
		close(s.done)
	}
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.heartbeat(ctx, "processing")

	processed, err := s.Executor.Tick(ctx)
	if err != nil {
		s.Log.Error().Err(err).Str("worker_id", s.WorkerID).Msg("scheduler tick failed")
	} else if processed > 0 {
		s.Log.Info().Str("worker_id", s.WorkerID).Int("processed", processed).Msg("scheduler tick")
	}

	s.heartbeat(ctx, "idle")
}

func (s *Scheduler) heartbeat(ctx context.Context, status string) {
	if s.Heartbeat == nil {
		return
	}
	if err := s.Heartbeat.SetWorkerHeartbeat(ctx, s.WorkerID, status); err != nil {
		s.Log.Warn().Err(err).Str("worker_id", s.WorkerID).Msg("heartbeat failed")
	}
}
