package audit

import (
	"context"
	"time"
)

/* Append-only security and compliance log. Every signature validation
 * failure, every delivery attempt outcome and every replay invocation
 * produces one record. Audit writes must never break the path that
 * produced them: implementations swallow their own failures.
 */

// Record kinds
const (
	KindSignatureFailure = "signature_failure"
	KindDeliveryAttempt  = "delivery_attempt"
	KindReplay           = "replay"
)

/* Record is one audit log line. Payloads appear only as hex hashes and
 * secrets never appear at all; the remaining fields carry enough
 * context to investigate an incident.
 */
type Record struct {
	Kind        string
	At          time.Time
	EventID     string
	PartnerID   string
	EntryID     string
	ActorID     string
	Outcome     string
	Error       string
	PayloadHash string
	// Signature and Timestamp hold the received header values on
	// signature failures
	Signature string
	Timestamp int64
}

// Logger is the append-only sink. Append returns nothing: a failed
// audit write is logged locally by the implementation and swallowed,
// since audit completeness must not break delivery.
type Logger interface {
	Append(ctx context.Context, rec Record)
}
