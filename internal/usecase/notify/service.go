package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"deadline-notify/internal/infra/notifier"
	"deadline-notify/internal/observability/logging"
	"deadline-notify/internal/observability/tracing"
	"deadline-notify/internal/resilience/circuitbreaker"
	"deadline-notify/internal/utils/text"
)

// DefaultSendTimeout bounds one message on one channel.
const DefaultSendTimeout = 30 * time.Second

// Dispatcher delivers one finished message.
type Dispatcher interface {
	// Send delivers content to every enabled channel and returns once all of
	// them have answered. A non-nil error means at least one channel did not
	// accept the message.
	Send(ctx context.Context, content string) error
}

// Service is a Dispatcher that also reports per-channel health.
type Service interface {
	Dispatcher

	// GetChannelHealth returns the circuit breaker state of every channel.
	GetChannelHealth() []ChannelHealthStatus
}

// ChannelHealthStatus represents the health status of a notification channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
	State              string `json:"state"` // closed|half-open|open
}

type service struct {
	channels    []Channel
	breakers    map[string]*circuitbreaker.CircuitBreaker
	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewService creates a dispatcher over channels.
// sendTimeout <= 0 means DefaultSendTimeout; a nil logger means slog.Default.
func NewService(channels []Channel, sendTimeout time.Duration, logger *slog.Logger) Service {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc := &service{
		channels:    channels,
		breakers:    make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		sendTimeout: sendTimeout,
		logger:      logger,
	}

	enabled := 0
	for _, ch := range channels {
		name := ch.Name()
		cfg := circuitbreaker.WebhookConfig(name)
		cfg.OnOpen = func(string) { RecordCircuitBreakerOpen(name) }
		svc.breakers[name] = circuitbreaker.New(cfg)
		if ch.IsEnabled() {
			enabled++
		}
	}
	SetChannelsEnabled(float64(enabled))

	return svc
}

// Send implements Dispatcher.Send.
func (s *service) Send(ctx context.Context, content string) (err error) {
	if content == "" {
		return ErrEmptyMessage
	}

	ctx, span := tracing.StartSpan(ctx, "notify.send",
		attribute.Int("content_length", text.CountRunes(content)))
	defer func() { tracing.EndSpan(span, err) }()

	var (
		errs    []error
		enabled int
	)
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		enabled++
		if sendErr := s.sendToChannel(ctx, ch, content); sendErr != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", ch.Name(), sendErr))
		}
	}

	if enabled == 0 {
		return ErrNoChannels
	}
	return errors.Join(errs...)
}

// sendToChannel sends content to a single channel through its circuit breaker.
func (s *service) sendToChannel(ctx context.Context, channel Channel, content string) error {
	name := channel.Name()
	logger := logging.WithRunID(ctx, s.logger).With(slog.String("channel", name))

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	RecordDispatch(name)
	start := time.Now()

	_, err := circuitbreaker.Do(s.breakers[name], func() (struct{}, error) {
		return struct{}{}, channel.Send(ctx, content)
	})
	duration := time.Since(start)

	if circuitbreaker.IsOpenError(err) {
		RecordDropped(name, "circuit_open")
		logger.Warn("Channel temporarily disabled due to circuit breaker")
		return fmt.Errorf("%w: %w", ErrCircuitBreakerOpen, err)
	}

	if err != nil {
		kind := notifier.ErrorKind(err)
		if kind == notifier.KindRateLimit {
			RecordRateLimitHit(name)
		}
		RecordFailure(name, kind, duration)
		logger.Warn("Channel notification failed",
			slog.String("kind", kind),
			slog.Duration("send_duration", duration),
			slog.String("error", logging.SanitizeError(err)))
		return err
	}

	RecordSuccess(name, duration)
	logger.Info("Channel notification sent successfully",
		slog.Int("content_length", text.CountRunes(content)),
		slog.Duration("send_duration", duration))
	return nil
}

// GetChannelHealth implements Service.GetChannelHealth.
func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		cb := s.breakers[ch.Name()]
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: cb.IsOpen(),
			State:              cb.State().String(),
		})
	}
	return statuses
}
