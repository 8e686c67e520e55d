package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadline-notify/internal/usecase/notify"
)

type stubNotifyService struct {
	statuses []notify.ChannelHealthStatus
}

func (s *stubNotifyService) Send(ctx context.Context, content string) error { return nil }

func (s *stubNotifyService) GetChannelHealth() []notify.ChannelHealthStatus { return s.statuses }

func TestChannelHealthHandler(t *testing.T) {
	tests := []struct {
		name        string
		statuses    []notify.ChannelHealthStatus
		wantCode    int
		wantHealthy bool
	}{
		{
			name:        "TC-1: closed breaker",
			statuses:    []notify.ChannelHealthStatus{{Name: "discord", Enabled: true, State: "closed"}},
			wantCode:    http.StatusOK,
			wantHealthy: true,
		},
		{
			name:        "TC-2: open breaker on enabled channel",
			statuses:    []notify.ChannelHealthStatus{{Name: "discord", Enabled: true, CircuitBreakerOpen: true, State: "open"}},
			wantCode:    http.StatusServiceUnavailable,
			wantHealthy: false,
		},
		{
			name:        "TC-3: open breaker on disabled channel",
			statuses:    []notify.ChannelHealthStatus{{Name: "discord", Enabled: false, CircuitBreakerOpen: true, State: "open"}},
			wantCode:    http.StatusOK,
			wantHealthy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMetricsMux(&stubNotifyService{statuses: tt.statuses})
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/channels", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body ChannelHealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantHealthy, body.Healthy)
			assert.Equal(t, tt.statuses, body.Channels)
		})
	}
}

func TestChannelHealthHandler_NoService(t *testing.T) {
	mux := newMetricsMux(nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/channels", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "notification service not initialized")
}

func TestGetMetricsPort(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 9090},
		{"9191", 9191},
		{"abc", 9090},
		{"70000", 9090},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("METRICS_PORT", tt.value)
			assert.Equal(t, tt.want, getMetricsPort())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newMetricsMux(nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
