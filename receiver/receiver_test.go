package receiver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpass/webhook-notify/audit"
	auditmem "github.com/chainpass/webhook-notify/audit/memory"
	"github.com/chainpass/webhook-notify/receiver"
	"github.com/chainpass/webhook-notify/signature"
)

func TestVerify(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"event":"verification.completed"}`)
	secret := "partner-secret"
	now := time.Unix(1700000000, 0)

	newService := func(auditLog audit.Logger) *receiver.Service {
		s := receiver.NewService(auditLog, signature.DefaultTolerance)
		s.Now = func() time.Time { return now }
		return s
	}

	t.Run("valid signature passes without audit noise", func(t *testing.T) {
		auditLog := auditmem.NewLogger()
		service := newService(auditLog)

		header, err := signature.SignedHeader(payload, secret, now.Unix())
		require.NoError(t, err)

		result, err := service.Verify(ctx, payload, header.String(), secret)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, now.Unix(), result.Timestamp)
		assert.Equal(t, now.Unix(), result.CurrentTime)
		assert.Empty(t, auditLog.Records())
	})

	t.Run("malformed header is audited and typed", func(t *testing.T) {
		auditLog := auditmem.NewLogger()
		service := newService(auditLog)

		result, err := service.Verify(ctx, payload, "not-a-header", secret)
		require.Error(t, err)
		assert.ErrorIs(t, err, signature.ErrInvalidFormat)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Error, "invalid signature format")

		failures := auditLog.ByKind(audit.KindSignatureFailure)
		require.Len(t, failures, 1)
		assert.Equal(t, "rejected", failures[0].Outcome)
		assert.Equal(t, signature.PayloadHash(payload), failures[0].PayloadHash)
	})

	t.Run("stale timestamp is audited with header context", func(t *testing.T) {
		auditLog := auditmem.NewLogger()
		service := newService(auditLog)

		staleTS := now.Add(-signature.DefaultTolerance - time.Minute).Unix()
		header, err := signature.SignedHeader(payload, secret, staleTS)
		require.NoError(t, err)

		result, err := service.Verify(ctx, payload, header.String(), secret)
		require.Error(t, err)
		assert.ErrorIs(t, err, signature.ErrTimestampTooOld)
		assert.Equal(t, staleTS, result.Timestamp)

		failures := auditLog.ByKind(audit.KindSignatureFailure)
		require.Len(t, failures, 1)
		assert.Equal(t, staleTS, failures[0].Timestamp)
		assert.NotEmpty(t, failures[0].Signature)
	})

	t.Run("mismatched signature is audited", func(t *testing.T) {
		auditLog := auditmem.NewLogger()
		service := newService(auditLog)

		header, err := signature.SignedHeader(payload, "other-secret", now.Unix())
		require.NoError(t, err)

		_, err = service.Verify(ctx, payload, header.String(), secret)
		assert.ErrorIs(t, err, signature.ErrSignatureMismatch)
		assert.Len(t, auditLog.ByKind(audit.KindSignatureFailure), 1)
	})
}
