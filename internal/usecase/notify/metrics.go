package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "deadline"
	metricsSubsystem = "notify"
)

// Delivery metrics, all labeled by channel name.
var (
	messagesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "messages_dispatched_total",
		Help:      "Messages handed to a channel, before the circuit breaker",
	}, []string{"channel"})

	// status is success or failure.
	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "messages_total",
		Help:      "Messages posted to a channel by outcome",
	}, []string{"channel", "status"})

	// kind is one of the notifier.Kind* values.
	sendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "failures_total",
		Help:      "Failed posts by failure kind",
	}, []string{"channel", "kind"})

	sendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "send_duration_seconds",
		Help:      "Time spent posting one message, including rate limiter waits",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"channel"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "rate_limited_total",
		Help:      "HTTP 429 answers from a webhook",
	}, []string{"channel"})

	breakerOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "breaker_opened_total",
		Help:      "Transitions of a channel circuit breaker to open",
	}, []string{"channel"})

	messagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "messages_dropped_total",
		Help:      "Messages never attempted on a channel",
	}, []string{"channel", "reason"})

	channelsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "channels_enabled",
		Help:      "Channels currently accepting messages",
	})
)

func RecordDispatch(channel string) {
	messagesDispatched.WithLabelValues(channel).Inc()
}

// RecordSuccess counts a delivered message and observes how long the post took.
func RecordSuccess(channel string, duration time.Duration) {
	messagesSent.WithLabelValues(channel, "success").Inc()
	sendDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure counts a failed post under its kind and observes its duration.
func RecordFailure(channel, kind string, duration time.Duration) {
	messagesSent.WithLabelValues(channel, "failure").Inc()
	sendFailures.WithLabelValues(channel, kind).Inc()
	sendDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

func RecordDropped(channel, reason string) {
	messagesDropped.WithLabelValues(channel, reason).Inc()
}

func RecordCircuitBreakerOpen(channel string) {
	breakerOpened.WithLabelValues(channel).Inc()
}

func RecordRateLimitHit(channel string) {
	rateLimited.WithLabelValues(channel).Inc()
}

func SetChannelsEnabled(count float64) {
	channelsEnabled.Set(count)
}
