package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrInvalidType is returned when an event type violates the tag grammar
	ErrInvalidType = errors.New("invalid event type")
	// ErrInvalidPayload is returned when an event payload is missing or not JSON
	ErrInvalidPayload = errors.New("invalid event payload")
)

// typePattern validates event types: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var typePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

/* Event is an immutable fact produced by the verification platform,
 * e.g. "verification.completed" or "vai.assigned". The payload is
 * kept as the exact serialized bytes that get signed and delivered;
 * it is never re-parsed or re-serialized on the delivery path, which
 * keeps signer and verifier byte-for-byte aligned.
 */
type Event struct {
	ID        string
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Validate checks the event structure
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if err := ValidateType(e.Type); err != nil {
		return err
	}
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}
	if !json.Valid(e.Payload) {
		return fmt.Errorf("%w: payload must be valid JSON", ErrInvalidPayload)
	}
	return nil
}

// ValidateType validates an event type tag
func ValidateType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("%w: type cannot be empty", ErrInvalidType)
	}
	if !typePattern.MatchString(eventType) {
		return fmt.Errorf("%w: must be hierarchical and contain only [a-zA-Z0-9_.]: %s", ErrInvalidType, eventType)
	}
	return nil
}
