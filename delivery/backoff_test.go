package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	t.Run("matches the documented partner-facing table", func(t *testing.T) {
		expected := []time.Duration{
			30 * time.Second,
			1 * time.Minute,
			5 * time.Minute,
			30 * time.Minute,
			2 * time.Hour,
			6 * time.Hour,
		}
		for i, want := range expected {
			assert.Equal(t, want, RetryDelay(i+1), "retry %d", i+1)
		}
	})

	t.Run("clamps past the end of the table", func(t *testing.T) {
		assert.Equal(t, 6*time.Hour, RetryDelay(7))
		assert.Equal(t, 6*time.Hour, RetryDelay(100))
	})

	t.Run("clamps below the start of the table", func(t *testing.T) {
		assert.Equal(t, 30*time.Second, RetryDelay(0))
		assert.Equal(t, 30*time.Second, RetryDelay(-1))
	})
}
