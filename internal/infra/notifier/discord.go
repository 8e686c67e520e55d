package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// Discord allows 30 webhook executions per minute.
	discordRatePerSecond = 0.5
	discordBurst         = 3

	defaultRetryAfter  = 5 * time.Second
	maxResponseBody    = 64 * 1024
	maxErrorBodyLength = 512
)

// DiscordConfig configures the Discord webhook notifier.
type DiscordConfig struct {
	Enabled bool

	// WebhookURL embeds the webhook token. Never log it unmasked.
	WebhookURL string

	Timeout time.Duration
}

// DiscordNotifier executes a Discord webhook once per message.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewDiscordNotifier creates a notifier limited to Discord's webhook allowance.
func NewDiscordNotifier(config DiscordConfig, logger *slog.Logger) *DiscordNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscordNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(discordRatePerSecond, discordBurst),
		logger:      logger,
	}
}

// DiscordWebhookPayload is the JSON body of a webhook execution.
// Mentions are disabled so that titles scraped from a site can never ping anyone.
type DiscordWebhookPayload struct {
	Content         string                 `json:"content"`
	AllowedMentions DiscordAllowedMentions `json:"allowed_mentions"`
}

type DiscordAllowedMentions struct {
	Parse []string `json:"parse"`
}

// discordError is the body Discord sends with 4xx answers.
type discordError struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"` // seconds
}

// Post sends content to the webhook once. A failed request is returned as-is
// and never retried.
func (d *DiscordNotifier) Post(ctx context.Context, content string) error {
	if content == "" {
		return ErrEmptyContent
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	logger := d.logger.With(slog.String("request_id", requestID))

	if err := d.rateLimiter.Wait(ctx); err != nil {
		logger.Error("Rate limiter error", slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	start := time.Now()
	if err := d.execute(ctx, content); err != nil {
		// The error may quote the webhook URL; callers mask it before logging.
		logger.Warn("Discord notification failed",
			slog.String("kind", ErrorKind(err)),
			slog.Duration("duration", time.Since(start)))
		return err
	}

	logger.Info("Discord notification successful",
		slog.Int("content_length", len([]rune(content))),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// execute performs one POST and maps the answer to an error type.
func (d *DiscordNotifier) execute(ctx context.Context, content string) error {
	body, err := json.Marshal(DiscordWebhookPayload{
		Content:         content,
		AllowedMentions: DiscordAllowedMentions{Parse: []string{}},
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return statusError(resp, respBody)
}

// statusError returns nil for any 2xx (Discord answers 204 No Content).
func statusError(resp *http.Response, body []byte) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	case code >= 400 && code < 500:
		return &ClientError{
			StatusCode: code,
			Message:    fmt.Sprintf("Discord API client error %d: %s", code, truncateBody(body, maxErrorBodyLength)),
		}
	case code >= 500:
		return &ServerError{
			StatusCode: code,
			Message:    fmt.Sprintf("Discord API server error %d: %s", code, truncateBody(body, maxErrorBodyLength)),
		}
	default:
		return fmt.Errorf("unexpected status code %d: %s", code, truncateBody(body, maxErrorBodyLength))
	}
}

// extractRetryAfter reads retry_after from the JSON body, then the
// Retry-After header, and defaults to five seconds.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var de discordError
	if json.Unmarshal(body, &de) == nil && de.RetryAfter > 0 {
		return time.Duration(de.RetryAfter * float64(time.Second))
	}
	if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultRetryAfter
}
