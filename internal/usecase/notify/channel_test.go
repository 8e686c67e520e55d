package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadline-notify/internal/infra/notifier"
)

// mockChannel records every message it receives.
type mockChannel struct {
	name      string
	enabled   bool
	sendError error
	sendDelay time.Duration
	messages  []string
	mu        sync.Mutex
}

func (m *mockChannel) Name() string {
	return m.name
}

func (m *mockChannel) IsEnabled() bool {
	return m.enabled
}

func (m *mockChannel) Send(ctx context.Context, content string) error {
	m.mu.Lock()
	m.messages = append(m.messages, content)
	m.mu.Unlock()

	if m.sendDelay > 0 {
		select {
		case <-time.After(m.sendDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.sendError
}

func (m *mockChannel) received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func TestDiscordChannel_Disabled(t *testing.T) {
	// Arrange
	ch := NewDiscordChannel(notifier.DiscordConfig{Enabled: false}, nil)

	// Act
	err := ch.Send(context.Background(), "hello")

	// Assert
	assert.Equal(t, "discord", ch.Name())
	assert.False(t, ch.IsEnabled())
	assert.ErrorIs(t, err, ErrChannelDisabled)
}

func TestDiscordChannel_Send(t *testing.T) {
	// Arrange
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ch := NewDiscordChannel(notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    time.Second,
	}, nil)

	// Act
	err := ch.Send(context.Background(), "**S**\n締切: 2025-01-10")

	// Assert
	require.NoError(t, err)
	assert.True(t, ch.IsEnabled())
	assert.Contains(t, body, `"content":"**S**\n締切: 2025-01-10"`)
}

func TestDiscordChannel_EmptyMessage(t *testing.T) {
	ch := NewDiscordChannel(notifier.DiscordConfig{Enabled: true, WebhookURL: "http://127.0.0.1:1"}, nil)

	err := ch.Send(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestDryRunChannel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	ch := NewDryRunChannel(&buf, nil)

	// Act
	err1 := ch.Send(context.Background(), "one")
	err2 := ch.Send(context.Background(), "two")
	err3 := ch.Send(context.Background(), "")

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, errors.Is(err3, ErrEmptyMessage))
	assert.Equal(t, "dryrun", ch.Name())
	assert.True(t, ch.IsEnabled())
	assert.Equal(t, 2, ch.Count())
	assert.Equal(t, 2, strings.Count(buf.String(), "-----"))
}
