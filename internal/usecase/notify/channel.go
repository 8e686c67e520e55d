// Package notify delivers finished announcement messages to every enabled
// channel (Discord, or a dry-run writer) in the order they are sent.
//
// Sending is synchronous: Send returns only after every channel has accepted
// or rejected the message, so callers keep control over message order.
// Each channel sits behind its own circuit breaker and nothing is retried.
package notify

import "context"

// Channel represents a notification delivery channel (Discord, dry-run, etc.).
//
// Thread Safety:
//   - All methods must be safe for concurrent use by multiple goroutines
//
// Context Handling:
//   - Implementations must respect context cancellation and timeout
type Channel interface {
	// Name returns the channel identifier used in logs, metrics and health output.
	Name() string

	// IsEnabled returns true if this channel is enabled via configuration.
	// Disabled channels are skipped by the dispatcher.
	IsEnabled() bool

	// Send delivers content as one message. It must not retry.
	//
	// Returns:
	//   - ErrChannelDisabled: If Send() called on disabled channel
	//   - ErrEmptyMessage: If content is empty
	//   - Network/API errors: Wrapped with context
	Send(ctx context.Context, content string) error
}
