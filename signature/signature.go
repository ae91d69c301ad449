package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Version is the signature scheme identifier used on the wire
	Version = "v1"

	// HeaderName is the HTTP header carrying the signature
	HeaderName = "X-Webhook-Signature"

	// DefaultTolerance is the maximum allowed clock skew between the
	// signed timestamp and verification time
	DefaultTolerance = 300 * time.Second
)

/* Sentinel errors forming the verification taxonomy
 * Callers branch on these with errors.Is; the wrapped message carries
 * the investigation context (age, format detail)
 */
var (
	ErrEmptySecret       = errors.New("signing secret is empty")
	ErrInvalidFormat     = errors.New("invalid signature format")
	ErrTimestampTooOld   = errors.New("timestamp too old")
	ErrTimestampAhead    = errors.New("timestamp too far ahead")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Header is the parsed form of the X-Webhook-Signature header
type Header struct {
	Timestamp int64
	Signature string
}

// String serializes the header to the wire format: t=<timestamp>,v1=<signature>
func (h Header) String() string {
	return fmt.Sprintf("t=%d,%s=%s", h.Timestamp, Version, h.Signature)
}

// ParseHeader parses a signature header in the format: t=<timestamp>,v1=<signature>
func ParseHeader(header string) (Header, error) {
	var h Header
	var haveTS, haveSig bool

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return Header{}, fmt.Errorf("%w: expected 't=<ts>,v1=<sig>'", ErrInvalidFormat)
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Header{}, fmt.Errorf("%w: timestamp is not an integer", ErrInvalidFormat)
			}
			h.Timestamp = ts
			haveTS = true
		case Version:
			h.Signature = value
			haveSig = true
		}
	}

	if !haveTS || !haveSig {
		return Header{}, fmt.Errorf("%w: missing t or %s component", ErrInvalidFormat, Version)
	}
	return h, nil
}

/* Sign computes the outbound webhook signature for a payload.
 * The signed content is "{timestamp}.{payload}" over the literal
 * payload bytes; the same bytes must travel on the wire unchanged so
 * the receiver can recompute without re-serialization.
 */
func Sign(payload []byte, secret string, timestamp int64) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// SignedHeader signs the payload at the given timestamp and returns
// the complete wire header
func SignedHeader(payload []byte, secret string, timestamp int64) (Header, error) {
	sig, err := Sign(payload, secret, timestamp)
	if err != nil {
		return Header{}, err
	}
	return Header{Timestamp: timestamp, Signature: sig}, nil
}

/* Verify checks a received payload against its signature header.
 * Returns nil when valid. The expected signature is recomputed with
 * the received timestamp (not the current time) and compared in
 * constant time; the tolerance window rejects replayed or stale
 * requests in either direction.
 */
func Verify(payload []byte, header string, secret string, tolerance time.Duration, now time.Time) error {
	if secret == "" {
		return ErrEmptySecret
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	h, err := ParseHeader(header)
	if err != nil {
		return err
	}

	age := now.Unix() - h.Timestamp
	if age > int64(tolerance.Seconds()) {
		return fmt.Errorf("%w: signed %ds ago, tolerance %ds", ErrTimestampTooOld, age, int64(tolerance.Seconds()))
	}
	if -age > int64(tolerance.Seconds()) {
		return fmt.Errorf("%w: signed %ds in the future, tolerance %ds", ErrTimestampAhead, -age, int64(tolerance.Seconds()))
	}

	expected, err := Sign(payload, secret, h.Timestamp)
	if err != nil {
		return err
	}

	if !constantTimeEqual(expected, h.Signature) {
		return ErrSignatureMismatch
	}
	return nil
}

/* constantTimeEqual compares two signature strings without leaking the
 * byte position of the first mismatch. Unequal lengths short-circuit
 * to false; beyond the length check the comparison is constant time.
 */
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// PayloadHash returns the hex SHA-256 of a payload for audit records.
// Hex is used only for this internal hash, never for wire signatures.
func PayloadHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
