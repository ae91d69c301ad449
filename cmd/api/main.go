package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	auditredis "github.com/chainpass/webhook-notify/audit/redis"
	"github.com/chainpass/webhook-notify/config"
	"github.com/chainpass/webhook-notify/delivery"
	deliveryredis "github.com/chainpass/webhook-notify/delivery/redis"
	"github.com/chainpass/webhook-notify/event"
	eventredis "github.com/chainpass/webhook-notify/event/redis"
	"github.com/chainpass/webhook-notify/internal/http/chi"
	"github.com/chainpass/webhook-notify/metrics"
	"github.com/chainpass/webhook-notify/partner"
	"github.com/chainpass/webhook-notify/receiver"
	"github.com/chainpass/webhook-notify/replay"
	replayredis "github.com/chainpass/webhook-notify/replay/redis"

	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/* api - partner notification API
 * Serves event intake, signature verification, delivery inspection and
 * the operator replay endpoints. Deliveries themselves run in the
 * worker binary; the API only enqueues.
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

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "api").Logger()

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
	eventRepo := eventredis.NewRepository(client)
	auditLog := auditredis.NewLogger(client, logger)

	deliveryService := delivery.NewService(queue, cfg.MaxAttempts)
	eventService := event.NewService(eventRepo, partners, deliveryService)
	verifier := receiver.NewService(auditLog, cfg.GetTolerance())
	replayService := replay.NewService(eventRepo, replayredis.NewRepository(client), auditLog)

	collector := metrics.NewRedisCollector(client, partners)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(ctx)

	r := chi.Handlers(ctx, chi.Services{
		Events:        eventService,
		Deliveries:    deliveryService,
		Verifier:      verifier,
		Replays:       replayService,
		Partners:      partners,
		Metrics:       exporter.ServeHTTP(),
		OperatorToken: cfg.OperatorToken,
	})
	http.Handle("/", r)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      http.DefaultServeMux,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, logger, errShutdown)
	logger.Info().Str("port", cfg.Port).Msg("notification API listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, logger zerolog.Logger, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		logger.Info().Msg("shutting down server")
		errShutdown <- nil
	default:
		errShutdown <- fmt.Errorf("forcing closing the server")
	}
}
