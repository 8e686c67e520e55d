package notifier

import (
	"context"
	"testing"
)

func TestNoOpNotifier_Post(t *testing.T) {
	t.Run("TC-1: should return nil without error", func(t *testing.T) {
		// Arrange
		n := NewNoOpNotifier()

		// Act
		err := n.Post(context.Background(), "**S**\n締切: 2025-01-10")

		// Assert
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("TC-2: should ignore canceled context", func(t *testing.T) {
		// Arrange
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Act
		err := NewNoOpNotifier().Post(ctx, "")

		// Assert
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("TC-3: should satisfy Notifier interface", func(t *testing.T) {
		var _ Notifier = NewNoOpNotifier()
		var _ Notifier = &DiscordNotifier{}
		var _ Notifier = &LogNotifier{}
	})
}
