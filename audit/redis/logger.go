package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/chainpass/webhook-notify/audit"
)

/* Redis Streams implementation of audit.Logger
 * A stream is append-only by construction, which is exactly the
 * contract: records are only ever XAdd-ed, never edited or removed
 */

const streamKey = "audit:log"

type Logger struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewLogger creates a Redis-backed audit logger
func NewLogger(client *redis.Client, log zerolog.Logger) *Logger {
	return &Logger{
		client: client,
		log:    log,
	}
}

/* Append writes one record to the audit stream. A write failure is
 * reported on the local log and otherwise swallowed: the caller is on
 * the delivery or verification critical path and must not fail
 * because auditing did.
 */
func (l *Logger) Append(ctx context.Context, rec audit.Record) {
	values := map[string]interface{}{
		"kind":    rec.Kind,
		"at":      rec.At.Unix(),
		"outcome": rec.Outcome,
	}
	if rec.EventID != "" {
		values["event_id"] = rec.EventID
	}
	if rec.PartnerID != "" {
		values["partner_id"] = rec.PartnerID
	}
	if rec.EntryID != "" {
		values["entry_id"] = rec.EntryID
	}
	if rec.ActorID != "" {
		values["actor_id"] = rec.ActorID
	}
	if rec.Error != "" {
		values["error"] = rec.Error
	}
	if rec.PayloadHash != "" {
		values["payload_hash"] = rec.PayloadHash
	}
	if rec.Signature != "" {
		values["signature"] = rec.Signature
	}
	if rec.Timestamp != 0 {
		values["timestamp"] = strconv.FormatInt(rec.Timestamp, 10)
	}

	err := l.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: values,
	}).Err()
	if err != nil {
		l.log.Error().Err(err).Str("kind", rec.Kind).Msg("audit append failed")
	}
}
