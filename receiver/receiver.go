package receiver

import (
	"context"
	"time"

	"github.com/chainpass/webhook-notify/audit"
	"github.com/chainpass/webhook-notify/signature"
)

/* Receiver-side verification: the same system acting as a consumer of
 * signed webhooks (its own provider callbacks, or partners testing
 * their integration). Runs before any business logic and writes every
 * invalid outcome to the audit log — a bad signature is a security
 * event, never a silent drop.
 */

// Result is the wire-facing verification outcome
type Result struct {
	Valid       bool
	Error       string
	Timestamp   int64
	CurrentTime int64
}

type Service struct {
	Audit     audit.Logger
	Tolerance time.Duration
	// Now is injectable for tests; defaults to time.Now
	Now func() time.Time
}

// NewService creates a verification service with the default tolerance
func NewService(auditLog audit.Logger, tolerance time.Duration) *Service {
	if tolerance <= 0 {
		tolerance = signature.DefaultTolerance
	}
	return &Service{
		Audit:     auditLog,
		Tolerance: tolerance,
		Now:       time.Now,
	}
}

/* Verify checks an inbound payload against its signature header. The
 * returned error is the signature package's typed error (nil when
 * valid) so callers can distinguish malformed headers from rejected
 * signatures; Result carries the response body fields.
 */
func (s *Service) Verify(ctx context.Context, payload []byte, header, secret string) (Result, error) {
	now := s.Now()
	result := Result{CurrentTime: now.Unix()}

	if parsed, parseErr := signature.ParseHeader(header); parseErr == nil {
		result.Timestamp = parsed.Timestamp
	}

	err := signature.Verify(payload, header, secret, s.Tolerance, now)
	if err == nil {
		result.Valid = true
		return result, nil
	}

	result.Error = err.Error()
	s.Audit.Append(ctx, audit.Record{
		Kind:        audit.KindSignatureFailure,
		At:          now,
		Outcome:     "rejected",
		Error:       err.Error(),
		PayloadHash: signature.PayloadHash(payload),
		Signature:   header,
		Timestamp:   result.Timestamp,
	})
	return result, err
}
