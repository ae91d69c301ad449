package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	auditredis "github.com/chainpass/webhook-notify/audit/redis"
	"github.com/chainpass/webhook-notify/config"
	eventredis "github.com/chainpass/webhook-notify/event/redis"
	"github.com/chainpass/webhook-notify/replay"
	replayredis "github.com/chainpass/webhook-notify/replay/redis"
)

/* replay - operator tool to re-send a recorded event
 * Usage:
 *   replay -event <event_id> -url <target_url> -actor <operator>
 *   replay -event <event_id> -url <target_url> -actor <operator> -payload payload.json
 *   replay -event <event_id> -history
 * Exit codes: 0 = replay delivered, 1 = error or non-2xx response
 */

func main() {
	eventID := flag.String("event", "", "event ID to replay")
	targetURL := flag.String("url", "", "target URL to deliver to")
	actorID := flag.String("actor", "", "operator identity recorded with the replay")
	payloadFile := flag.String("payload", "", "optional file with a custom payload override")
	history := flag.Bool("history", false, "list replay history for the event instead of replaying")
	flag.Parse()

	if *eventID == "" {
		fmt.Fprintln(os.Stderr, "-event is required")
		os.Exit(1)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("connecting to redis: %w", err))
		os.Exit(1)
	}
	defer client.Close()

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "replay").Logger()
	service := replay.NewService(
		eventredis.NewRepository(client),
		replayredis.NewRepository(client),
		auditredis.NewLogger(client, logger),
	)

	if *history {
		listHistory(ctx, service, *eventID)
		return
	}

	if *targetURL == "" || *actorID == "" {
		fmt.Fprintln(os.Stderr, "-url and -actor are required")
		os.Exit(1)
	}

	var customPayload []byte
	if *payloadFile != "" {
		customPayload, err = os.ReadFile(*payloadFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("reading payload file: %w", err))
			os.Exit(1)
		}
	}

	result, err := service.Replay(ctx, *actorID, *eventID, *targetURL, customPayload)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if result.Success {
		fmt.Printf("delivered: HTTP %d in %dms\n", result.ResponseStatus, result.ResponseTimeMS)
		return
	}

	if result.ErrorMessage != "" {
		fmt.Printf("failed: %s (%dms)\n", result.ErrorMessage, result.ResponseTimeMS)
	} else {
		fmt.Printf("failed: HTTP %d in %dms\n", result.ResponseStatus, result.ResponseTimeMS)
	}
	os.Exit(1)
}

func listHistory(ctx context.Context, service *replay.Service, eventID string) {
	rows, err := service.ListByEvent(ctx, eventID, 50)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Println("no replays recorded for this event")
		return
	}

	fmt.Printf("%d replay(s) for event %s:\n", len(rows), eventID)
	for i, h := range rows {
		outcome := fmt.Sprintf("HTTP %d", h.ResponseStatus)
		if h.ErrorMessage != "" {
			outcome = h.ErrorMessage
		}
		fmt.Printf("\n%d. %s by %s\n", i+1, h.ReplayedAt.Format("2006-01-02 15:04:05"), h.ReplayedBy)
		fmt.Printf("   Target:  %s\n", h.TargetURL)
		fmt.Printf("   Outcome: %s (success=%v, %dms)\n", outcome, h.Success, h.ResponseTimeMS)
	}
}
