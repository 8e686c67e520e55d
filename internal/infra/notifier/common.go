package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFromContext returns the request ID stored by a notifier, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RateLimitError represents a 429 rate limit error from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ErrEmptyContent is returned when Post is called with an empty message.
var ErrEmptyContent = errors.New("message content is empty")

// Failure kinds reported by ErrorKind.
const (
	KindRateLimit = "rate_limit"
	KindClient    = "client_error"
	KindServer    = "server_error"
	KindTimeout   = "timeout"
	KindNetwork   = "network"
)

// ErrorKind classifies a Post error for metrics labels.
func ErrorKind(err error) string {
	var rateLimitErr *RateLimitError
	var clientErr *ClientError
	var serverErr *ServerError

	switch {
	case errors.As(err, &rateLimitErr):
		return KindRateLimit
	case errors.As(err, &clientErr):
		return KindClient
	case errors.As(err, &serverErr):
		return KindServer
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindNetwork
	}
}

// truncateBody shortens an error response body for inclusion in an error message.
func truncateBody(body []byte, maxLength int) string {
	if len(body) <= maxLength {
		return string(body)
	}
	return string(body[:maxLength]) + "..."
}
