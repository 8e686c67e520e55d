package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"deadline-notify/internal/infra/notifier"
	pkgconfig "deadline-notify/internal/pkg/config"
)

// DefaultDiscordTimeout bounds a single webhook post.
const DefaultDiscordTimeout = 10 * time.Second

// LoadDiscordConfig reads DISCORD_WEBHOOK_URL and DISCORD_TIMEOUT.
//
// A missing or malformed webhook URL is a startup error unless dryRun is set,
// in which case the channel is returned disabled.
func LoadDiscordConfig(dryRun bool) (notifier.DiscordConfig, error) {
	webhookURL := strings.TrimSpace(pkgconfig.LoadEnvString("DISCORD_WEBHOOK_URL", ""))
	timeout := pkgconfig.LoadEnvDuration("DISCORD_TIMEOUT", DefaultDiscordTimeout, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, time.Second, 2*time.Minute)
	}).Value.(time.Duration)

	if webhookURL == "" && dryRun {
		return notifier.DiscordConfig{Enabled: false, Timeout: timeout}, nil
	}
	if err := validateDiscordWebhook(webhookURL); err != nil {
		if dryRun {
			return notifier.DiscordConfig{Enabled: false, Timeout: timeout}, nil
		}
		return notifier.DiscordConfig{}, fmt.Errorf("DISCORD_WEBHOOK_URL: %w", err)
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    timeout,
	}, nil
}

// validateDiscordWebhook accepts https://discord.com/api/webhooks/... and the
// discordapp.com legacy host.
func validateDiscordWebhook(raw string) error {
	if err := pkgconfig.ValidateWebhookURL(raw); err != nil {
		return err
	}
	u, _ := url.Parse(raw)
	switch u.Hostname() {
	case "discord.com", "discordapp.com", "ptb.discord.com", "canary.discord.com":
	default:
		return fmt.Errorf("invalid Discord webhook host %q", u.Hostname())
	}
	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		return fmt.Errorf("invalid Discord webhook path")
	}
	return nil
}
