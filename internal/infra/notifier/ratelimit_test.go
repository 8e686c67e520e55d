package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("TC-1: burst is served immediately", func(t *testing.T) {
		// Arrange
		limiter := NewRateLimiter(2.0, 5)
		ctx := context.Background()

		// Act
		start := time.Now()
		for i := 0; i < 5; i++ {
			require.NoError(t, limiter.Wait(ctx), "message %d", i+1)
		}

		// Assert
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("TC-2: message beyond the burst waits for a token", func(t *testing.T) {
		// Arrange
		limiter := NewRateLimiter(1.0, 1)
		require.NoError(t, limiter.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		// Act
		err := limiter.Wait(ctx)

		// Assert
		// x/time/rate fails fast when the next token lies past the deadline,
		// so the error is not always context.DeadlineExceeded.
		require.Error(t, err)
	})

	t.Run("TC-3: cancellation releases a waiting sender", func(t *testing.T) {
		// Arrange
		limiter := NewRateLimiter(0.1, 1)
		require.NoError(t, limiter.Wait(context.Background()))
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- limiter.Wait(ctx) }()

		// Act
		time.Sleep(20 * time.Millisecond)
		cancel()

		// Assert
		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("Wait did not return after cancel")
		}
	})
}

func TestNewRateLimiter_WebhookAllowance(t *testing.T) {
	limiter := NewRateLimiter(0.5, 3)

	assert.Equal(t, 0.5, limiter.Limit())
	assert.Equal(t, 3, limiter.Burst())
}
