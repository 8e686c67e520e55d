package notify

import (
	"context"
	"io"
	"log/slog"

	"deadline-notify/internal/infra/notifier"
)

// DryRunChannel prints messages instead of posting them.
type DryRunChannel struct {
	notifier *notifier.LogNotifier
}

// NewDryRunChannel returns an always-enabled channel writing to out.
func NewDryRunChannel(out io.Writer, logger *slog.Logger) *DryRunChannel {
	return &DryRunChannel{notifier: notifier.NewLogNotifier(out, logger)}
}

// Name returns the channel identifier "dryrun".
func (c *DryRunChannel) Name() string {
	return "dryrun"
}

// IsEnabled always returns true.
func (c *DryRunChannel) IsEnabled() bool {
	return true
}

// Send writes content to the configured writer.
func (c *DryRunChannel) Send(ctx context.Context, content string) error {
	if content == "" {
		return ErrEmptyMessage
	}
	return c.notifier.Post(ctx, content)
}

// Count returns how many messages were written.
func (c *DryRunChannel) Count() int {
	return c.notifier.Count()
}
