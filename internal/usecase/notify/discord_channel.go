package notify

import (
	"context"
	"log/slog"

	"deadline-notify/internal/infra/notifier"
)

// DiscordChannel implements the Channel interface for Discord webhooks.
// It adapts notifier.DiscordNotifier to the Channel abstraction.
type DiscordChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewDiscordChannel creates a new Discord channel with the specified configuration.
//
// If Discord notifications are disabled (config.Enabled = false), a NoOpNotifier
// is used instead so that the Channel contract always holds.
func NewDiscordChannel(config notifier.DiscordConfig, logger *slog.Logger) *DiscordChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config, logger)
	} else {
		n = notifier.NewNoOpNotifier()
	}

	return &DiscordChannel{
		notifier: n,
		enabled:  config.Enabled,
	}
}

// Name returns the channel identifier "discord".
func (c *DiscordChannel) Name() string {
	return "discord"
}

// IsEnabled returns whether Discord notifications are enabled via configuration.
func (c *DiscordChannel) IsEnabled() bool {
	return c.enabled
}

// Send posts content to the webhook once.
func (c *DiscordChannel) Send(ctx context.Context, content string) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if content == "" {
		return ErrEmptyMessage
	}
	return c.notifier.Post(ctx, content)
}
