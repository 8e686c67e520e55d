// Package notifier delivers finished message texts to a chat service.
//
// A Notifier posts exactly one message per call and never retries: callers
// that want protection against a failing endpoint wrap it in a circuit
// breaker. Implementations exist for Discord webhooks, a logging notifier
// used for dry runs, and a no-op notifier for disabled channels.
package notifier

import "context"

// Notifier sends one plain-text (markdown) message.
type Notifier interface {
	// Post delivers content as a single message.
	//
	// Implementations should:
	//   - Apply rate limiting to respect the service's limits
	//   - Send at most one request per call
	//   - Respect context cancellation
	//   - Return typed errors (RateLimitError, ClientError, ServerError) for HTTP failures
	Post(ctx context.Context, content string) error
}
