package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	auditredis "github.com/chainpass/webhook-notify/audit/redis"
	"github.com/chainpass/webhook-notify/config"
	"github.com/chainpass/webhook-notify/delivery"
	deliveryredis "github.com/chainpass/webhook-notify/delivery/redis"
	"github.com/chainpass/webhook-notify/metrics"
	"github.com/chainpass/webhook-notify/partner"
)

/* worker - delivery scheduler
 * Polls the queue for due entries, claims them atomically and performs
 * the signed HTTP deliveries. Multiple workers can run against the
 * same Redis; the claim lease keeps them from double-sending.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	workerID := fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "worker").Str("worker_id", workerID).Logger()

	partners := partner.NewLoader()
	if err := partners.Load(cfg.PartnersFile); err != nil {
		fmt.Println(err)
		return
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Println(fmt.Errorf("connecting to redis: %w", err))
		return
	}

	queue := deliveryredis.NewRepository(client)
	defer queue.Close(ctx)
	auditLog := auditredis.NewLogger(client, logger)

	collector := metrics.NewRedisCollector(client, partners)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(ctx)

	executor := delivery.NewExecutor(queue, partners, auditLog, logger)
	executor.Metrics = exporter
	executor.BatchLimit = cfg.BatchLimit
	executor.Concurrency = cfg.WorkerPoolSize

	scheduler := delivery.NewScheduler(executor, workerID, cfg.GetSchedulerInterval(), logger)
	scheduler.Heartbeat = queue
	scheduler.Start(ctx)
	defer scheduler.Stop()

	<-ctx.Done()
	logger.Info().Msg("shutting down worker")
}
