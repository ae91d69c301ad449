package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chainpass/webhook-notify/audit"
	"github.com/chainpass/webhook-notify/partner"
	"github.com/chainpass/webhook-notify/signature"
)

const (
	// AttemptTimeout is the hard per-delivery timeout; a partner that
	// takes longer fails the attempt
	AttemptTimeout = 30 * time.Second

	// responseReadLimit bounds how much of a partner response is read
	// off the socket before truncation for storage
	responseReadLimit = 64 * 1024

	defaultBatchLimit  = 50
	defaultConcurrency = 10
)

// SecretSource resolves a partner's current signing secret at send
// time. The URL is snapshotted on the entry; the secret is not, so a
// rotated secret takes effect on the next attempt.
type SecretSource interface {
	Get(partnerID string) (*partner.Partner, error)
}

// OutcomeRecorder receives one call per completed attempt for usage
// accounting and metrics
type OutcomeRecorder interface {
	RecordAttempt(ctx context.Context, partnerID string, delivered bool)
}

/* Executor drains due queue entries and performs the HTTP deliveries.
 * One Tick claims a batch and dispatches it through a bounded worker
 * pool: partner endpoints are independent and a slow endpoint must not
 * stall the rest of the batch.
 */
type Executor struct {
	Repo        Repository
	Partners    SecretSource
	Audit       audit.Logger
	Metrics     OutcomeRecorder
	Client      *http.Client
	Log         zerolog.Logger
	BatchLimit  int
	Concurrency int
}

// NewExecutor creates an executor with the default HTTP client and limits
func NewExecutor(repo Repository, partners SecretSource, auditLog audit.Logger, log zerolog.Logger) *Executor {
	return &Executor{
		Repo:     repo,
		Partners: partners,
		Audit:    auditLog,
		Log:      log,
		Client: &http.Client{
			Timeout: AttemptTimeout,
		},
		BatchLimit:  defaultBatchLimit,
		Concurrency: defaultConcurrency,
	}
}

// Tick claims one batch of due entries and delivers them. Returns the
// number of entries processed.
func (ex *Executor) Tick(ctx context.Context) (int, error) {
	limit := ex.BatchLimit
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	entries, err := ex.Repo.ClaimDue(ctx, time.Now(), limit)
	if err != nil {
		return 0, fmt.Errorf("claiming due entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	concurrency := ex.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(e Entry) {
			defer wg.Done()
			defer func() { <-sem }()
			ex.process(ctx, e)
		}(entry)
	}
	wg.Wait()

	return len(entries), nil
}

// process runs one claimed entry through dispatch and result recording
func (ex *Executor) process(ctx context.Context, entry Entry) {
	res := ex.Deliver(ctx, entry)

	updated, err := ex.Repo.RecordResult(ctx, entry.ID, res)
	if err != nil {
		// The claim lease will expire and the entry becomes
		// re-claimable; nothing else to do here
		ex.Log.Error().Err(err).Str("entry_id", entry.ID).Msg("recording delivery result failed")
		return
	}

	outcome := "failure"
	if res.Delivered {
		outcome = "success"
	}
	ex.Audit.Append(ctx, audit.Record{
		Kind:        audit.KindDeliveryAttempt,
		At:          time.Now(),
		EventID:     entry.EventID,
		PartnerID:   entry.PartnerID,
		EntryID:     entry.ID,
		Outcome:     outcome,
		Error:       res.Err,
		PayloadHash: signature.PayloadHash(entry.Payload),
	})
	if ex.Metrics != nil {
		ex.Metrics.RecordAttempt(ctx, entry.PartnerID, res.Delivered)
	}

	evt := ex.Log.Info()
	if !res.Delivered {
		evt = ex.Log.Warn()
	}
	evt.
		Str("entry_id", entry.ID).
		Str("partner_id", entry.PartnerID).
		Str("status", updated.Status.String()).
		Int("attempts", updated.Attempts).
		Int("response_status", res.Status).
		Bool("terminal", updated.Terminal()).
		Msg("delivery attempt")
}

/* Deliver performs a single HTTP POST for the entry. The payload is
 * re-signed with a fresh timestamp immediately before the send:
 * signatures are single-use per attempt and a stale signature from an
 * earlier attempt is never reused.
 */
func (ex *Executor) Deliver(ctx context.Context, entry Entry) Result {
	start := time.Now()

	p, err := ex.Partners.Get(entry.PartnerID)
	if err != nil {
		return FailedTransport(time.Since(start), fmt.Sprintf("resolving partner: %v", err))
	}

	header, err := signature.SignedHeader(entry.Payload, p.Secret, time.Now().Unix())
	if err != nil {
		return FailedTransport(time.Since(start), fmt.Sprintf("signing payload: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, entry.URL, bytes.NewReader(entry.Payload))
	if err != nil {
		return FailedTransport(time.Since(start), fmt.Sprintf("building request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signature.HeaderName, header.String())

	resp, err := ex.Client.Do(req)
	if err != nil {
		return FailedTransport(time.Since(start), fmt.Sprintf("http call: %v", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	elapsed := time.Since(start)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Succeeded(resp.StatusCode, string(body), elapsed)
	}
	return FailedHTTP(resp.StatusCode, string(body), elapsed,
		fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200)))
}
