package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send() was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrEmptyMessage indicates that an empty message was passed to Send.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNoChannels indicates that no channel is enabled, so a message cannot be delivered.
	ErrNoChannels = errors.New("no notification channel is enabled")

	// ErrCircuitBreakerOpen indicates that the circuit breaker is open for this channel
	// and messages are being rejected to prevent continuous failures.
	// The circuit breaker will automatically half-open after the timeout period.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")
)
