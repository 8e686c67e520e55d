package notifier

import "context"

// NoOpNotifier is a no-operation implementation of the Notifier interface.
// It is used when a channel is disabled to avoid nil checks.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Post does nothing and returns nil immediately.
func (n *NoOpNotifier) Post(ctx context.Context, content string) error {
	return nil
}
