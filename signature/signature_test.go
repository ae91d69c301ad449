package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	payload := []byte(`{"event":"verification.completed","vai":"VAI-8842"}`)
	secret := "pk_live_4f2d9a"
	timestamp := int64(1700000000)

	t.Run("success - deterministic for same inputs", func(t *testing.T) {
		sig1, err1 := Sign(payload, secret, timestamp)
		sig2, err2 := Sign(payload, secret, timestamp)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, sig1, sig2)
		assert.NotEmpty(t, sig1)
	})

	t.Run("different timestamps produce different signatures", func(t *testing.T) {
		sig1, _ := Sign(payload, secret, timestamp)
		sig2, _ := Sign(payload, secret, timestamp+1)
		assert.NotEqual(t, sig1, sig2)
	})

	t.Run("different secrets produce different signatures", func(t *testing.T) {
		sig1, _ := Sign(payload, secret, timestamp)
		sig2, _ := Sign(payload, "other-secret", timestamp)
		assert.NotEqual(t, sig1, sig2)
	})

	t.Run("error - empty secret", func(t *testing.T) {
		_, err := Sign(payload, "", timestamp)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptySecret)
	})
}

func TestHeader(t *testing.T) {
	t.Run("round-trip through wire format", func(t *testing.T) {
		h := Header{Timestamp: 1700000000, Signature: "c2lnbmF0dXJl"}
		parsed, err := ParseHeader(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, parsed)
	})

	t.Run("serializes as t=<ts>,v1=<sig>", func(t *testing.T) {
		h := Header{Timestamp: 1700000000, Signature: "abc"}
		assert.Equal(t, "t=1700000000,v1=abc", h.String())
	})

	t.Run("error - missing components", func(t *testing.T) {
		for _, header := range []string{"", "t=1700000000", "v1=abc", "garbage"} {
			_, err := ParseHeader(header)
			require.Error(t, err, "header %q", header)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		}
	})

	t.Run("error - non-numeric timestamp", func(t *testing.T) {
		_, err := ParseHeader("t=notanumber,v1=abc")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"event":"verification.completed","vai":"VAI-8842"}`)
	secret := "pk_live_4f2d9a"
	now := time.Unix(1700000000, 0)

	signedHeader := func(t *testing.T, p []byte, s string, ts int64) string {
		t.Helper()
		h, err := SignedHeader(p, s, ts)
		require.NoError(t, err)
		return h.String()
	}

	t.Run("round-trip - valid signature verifies", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Unix())
		err := Verify(payload, header, secret, DefaultTolerance, now)
		assert.NoError(t, err)
	})

	t.Run("tamper detection - any mutated byte invalidates", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Unix())

		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		tampered[len(tampered)/2] ^= 0x01

		err := Verify(tampered, header, secret, DefaultTolerance, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Unix())
		err := Verify(payload, header, "wrong-secret", DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("replay rejection - one second past tolerance", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Unix())
		err := Verify(payload, header, secret, DefaultTolerance, now.Add(DefaultTolerance+time.Second))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimestampTooOld)
	})

	t.Run("still valid exactly at tolerance boundary", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Unix())
		err := Verify(payload, header, secret, DefaultTolerance, now.Add(DefaultTolerance))
		assert.NoError(t, err)
	})

	t.Run("future timestamp beyond tolerance rejected", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Add(DefaultTolerance+2*time.Second).Unix())
		err := Verify(payload, header, secret, DefaultTolerance, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimestampAhead)
	})

	t.Run("header signed at 1700000000 checked at 1700000301", func(t *testing.T) {
		header := signedHeader(t, payload, secret, 1700000000)
		err := Verify(payload, header, secret, DefaultTolerance, time.Unix(1700000301, 0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "301")
	})

	t.Run("malformed header rejected before any comparison", func(t *testing.T) {
		err := Verify(payload, "t=abc", secret, DefaultTolerance, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("error - empty secret", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Unix())
		err := Verify(payload, header, "", DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrEmptySecret)
	})

	t.Run("zero tolerance falls back to default", func(t *testing.T) {
		header := signedHeader(t, payload, secret, now.Add(-2*time.Minute).Unix())
		err := Verify(payload, header, secret, 0, now)
		assert.NoError(t, err)
	})
}

func TestConstantTimeEqual(t *testing.T) {
	t.Run("unequal lengths are never equal", func(t *testing.T) {
		assert.False(t, constantTimeEqual("abc", "abcd"))
	})

	t.Run("equal strings compare equal regardless of mismatch position", func(t *testing.T) {
		base := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
		assert.True(t, constantTimeEqual(base, base))

		// Flip a byte at every position; all must compare false
		for i := 0; i < len(base); i++ {
			mutated := base[:i] + "b" + base[i+1:]
			assert.False(t, constantTimeEqual(base, mutated), "position %d", i)
		}
	})
}

func TestPayloadHash(t *testing.T) {
	t.Run("hex encoded, stable, distinct from base64 signatures", func(t *testing.T) {
		h := PayloadHash([]byte(`{"a":1}`))
		assert.Len(t, h, 64)
		assert.Equal(t, h, PayloadHash([]byte(`{"a":1}`)))
		assert.NotEqual(t, h, PayloadHash([]byte(`{"a":2}`)))
	})
}
