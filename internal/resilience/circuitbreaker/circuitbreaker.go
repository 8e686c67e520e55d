// Package circuitbreaker guards calls to source sites and webhooks with
// github.com/sony/gobreaker, so a site that keeps failing is not requested on
// every scheduled run.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	// Name identifies the breaker in logs, e.g. "scraper:asobistore".
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureThreshold is the failure ratio (0.6 = 60%) that trips the breaker
	// once MinRequests calls have been counted.
	FailureThreshold float64
	MinRequests      uint32

	// ConsecutiveFailures trips the breaker after that many failures in a row.
	// Zero disables the rule.
	ConsecutiveFailures uint32

	// OnOpen, if set, is called synchronously on every transition to open.
	OnOpen func(name string)
}

// DefaultConfig returns the baseline the source and webhook profiles start from.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// FeedFetchConfig is the profile for RSS/Atom sources.
func FeedFetchConfig(source string) Config {
	cfg := DefaultConfig("feed:" + source)
	cfg.MaxRequests = 5
	cfg.Interval = time.Minute
	cfg.Timeout = 2 * time.Minute
	cfg.FailureThreshold = 0.7
	cfg.MinRequests = 10
	return cfg
}

// WebScraperConfig is the profile for HTML listing and detail pages. It stays
// open much longer than the feed profile: a page that keeps failing usually
// means the site layout changed.
func WebScraperConfig(source string) Config {
	cfg := DefaultConfig("scraper:" + source)
	cfg.Interval = time.Minute
	cfg.Timeout = 30 * time.Minute
	cfg.FailureThreshold = 0.8
	return cfg
}

// WebhookConfig is the profile for a notification channel: five failed posts
// in a row open the breaker for five minutes.
func WebhookConfig(channel string) Config {
	cfg := DefaultConfig("webhook:" + channel)
	cfg.MaxRequests = 1
	cfg.Interval = 0
	cfg.Timeout = 5 * time.Minute
	cfg.FailureThreshold = 1.0
	cfg.ConsecutiveFailures = 5
	return cfg
}

func (c Config) readyToTrip(counts gobreaker.Counts) bool {
	if c.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= c.ConsecutiveFailures {
		return true
	}
	if counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureThreshold
}

// CircuitBreaker is a named gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a closed breaker from cfg. State changes are logged.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.readyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			if to == gobreaker.StateOpen && cfg.OnOpen != nil {
				cfg.OnOpen(name)
			}
		},
	}
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings), name: cfg.Name}
}

// Do runs fn through cb. While cb is open fn is not called and the error
// satisfies IsOpenError.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}

// IsOpenError reports whether err was produced by a breaker refusing the call.
func IsOpenError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
