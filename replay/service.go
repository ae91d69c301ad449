package replay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chainpass/webhook-notify/audit"
	"github.com/chainpass/webhook-notify/event"
	"github.com/chainpass/webhook-notify/signature"
)

const (
	// ReplayHeader tags replayed requests so receivers can tell them
	// from live traffic. Advisory only: receivers are free to ignore it.
	ReplayHeader = "X-ChainPass-Replay"

	requestTimeout    = 30 * time.Second
	responseReadLimit = 64 * 1024
	responseBodyLimit = 1000
)

// UseCase defines the operator-facing replay operations
type UseCase interface {
	Replay(ctx context.Context, actorID, eventID, targetURL string, customPayload []byte) (Result, error)
	ListByEvent(ctx context.Context, eventID string, limit int) ([]History, error)
}

/* Service re-sends a previously recorded event to an arbitrary target
 * URL, independent of the original delivery queue. A custom payload
 * override supports debugging malformed-payload hypotheses.
 */
type Service struct {
	Events  event.Reader
	History Repository
	Audit   audit.Logger
	Client  *http.Client
}

// NewService creates a replay service with dependency injection
func NewService(events event.Reader, history Repository, auditLog audit.Logger) *Service {
	return &Service{
		Events:  events,
		History: history,
		Audit:   auditLog,
		Client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Replay performs a single synchronous POST of the event payload (or
// the custom override) to targetURL and records the outcome. The
// original queue entry's state machine is never touched.
func (s *Service) Replay(ctx context.Context, actorID, eventID, targetURL string, customPayload []byte) (Result, error) {
	if actorID == "" {
		return Result{}, fmt.Errorf("replay requires an authenticated actor")
	}
	if targetURL == "" {
		return Result{}, fmt.Errorf("replay target URL is required")
	}

	payload := customPayload
	if payload == nil {
		evt, err := s.Events.Get(ctx, eventID)
		if err != nil {
			return Result{}, fmt.Errorf("loading event for replay: %w", err)
		}
		payload = evt.Payload
	}

	result := s.send(ctx, targetURL, payload)

	history := History{
		ID:             uuid.New().String(),
		EventID:        eventID,
		ReplayedBy:     actorID,
		TargetURL:      targetURL,
		Payload:        payload,
		ResponseStatus: result.ResponseStatus,
		ResponseBody:   result.ResponseBody,
		ResponseTimeMS: result.ResponseTimeMS,
		Success:        result.Success,
		ErrorMessage:   result.ErrorMessage,
		ReplayedAt:     time.Now(),
	}
	if _, err := s.History.Record(ctx, history); err != nil {
		// The operator already has the result; a history write
		// failure must not mask it
		return result, fmt.Errorf("recording replay history: %w", err)
	}

	outcome := "failure"
	if result.Success {
		outcome = "success"
	}
	s.Audit.Append(ctx, audit.Record{
		Kind:        audit.KindReplay,
		At:          time.Now(),
		EventID:     eventID,
		ActorID:     actorID,
		Outcome:     outcome,
		Error:       result.ErrorMessage,
		PayloadHash: signature.PayloadHash(payload),
	})

	return result, nil
}

// ListByEvent returns the replay history for an event
func (s *Service) ListByEvent(ctx context.Context, eventID string, limit int) ([]History, error) {
	history, err := s.History.ListByEvent(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing replay history: %w", err)
	}
	return history, nil
}

func (s *Service) send(ctx context.Context, targetURL string, payload []byte) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(payload))
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("building request: %v", err), ResponseTimeMS: time.Since(start).Milliseconds()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ReplayHeader, "true")

	resp, err := s.Client.Do(req)
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("http call: %v", err), ResponseTimeMS: time.Since(start).Milliseconds()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	elapsed := time.Since(start).Milliseconds()

	result := Result{
		ResponseStatus: resp.StatusCode,
		ResponseBody:   truncate(string(body), responseBodyLimit),
		ResponseTimeMS: elapsed,
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Success = true
	} else {
		result.ErrorMessage = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return result
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
