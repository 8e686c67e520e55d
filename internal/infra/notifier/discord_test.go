package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestDiscordNotifier(url string) *DiscordNotifier {
	n := NewDiscordNotifier(DiscordConfig{
		Enabled:    true,
		WebhookURL: url,
		Timeout:    2 * time.Second,
	}, nil)
	n.rateLimiter = NewRateLimiter(1000, 1000)
	return n
}

func TestDiscordNotifier_Post(t *testing.T) {
	t.Run("TC-1: should post content as JSON and succeed on 204", func(t *testing.T) {
		// Arrange
		var gotBody DiscordWebhookPayload
		var gotContentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &gotBody)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		n := newTestDiscordNotifier(server.URL)
		content := "**アソビストア 締切間近**\n締切: 2025-01-10\n- [Item](https://example.com/i)"

		// Act
		err := n.Post(context.Background(), content)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotContentType != "application/json" {
			t.Errorf("expected Content-Type=application/json, got %q", gotContentType)
		}
		if gotBody.Content != content {
			t.Errorf("expected content=%q, got %q", content, gotBody.Content)
		}
		if gotBody.AllowedMentions.Parse == nil || len(gotBody.AllowedMentions.Parse) != 0 {
			t.Errorf("expected empty allowed_mentions.parse, got %v", gotBody.AllowedMentions.Parse)
		}
	})

	t.Run("TC-2: should accept any 2xx status", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		// Act
		err := newTestDiscordNotifier(server.URL).Post(context.Background(), "hello")

		// Assert
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("TC-3: should reject empty content without a request", func(t *testing.T) {
		// Arrange
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		// Act
		err := newTestDiscordNotifier(server.URL).Post(context.Background(), "")

		// Assert
		if !errors.Is(err, ErrEmptyContent) {
			t.Errorf("expected ErrEmptyContent, got %v", err)
		}
		if atomic.LoadInt32(&calls) != 0 {
			t.Errorf("expected no request, got %d", calls)
		}
	})
}

func TestDiscordNotifier_Post_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		header     map[string]string
		body       string
		check      func(t *testing.T, err error)
		wantKind   string
		wantCalled int32
	}{
		{
			name:   "TC-1: 429 with retry_after in body",
			status: http.StatusTooManyRequests,
			body:   `{"message":"You are being rate limited.","retry_after":1.5,"global":false}`,
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				if !errors.As(err, &rl) {
					t.Fatalf("expected RateLimitError, got %T", err)
				}
				if rl.RetryAfter != 1500*time.Millisecond {
					t.Errorf("expected RetryAfter=1.5s, got %v", rl.RetryAfter)
				}
			},
			wantKind: KindRateLimit,
		},
		{
			name:   "TC-2: 429 with Retry-After header",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "7"},
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				if !errors.As(err, &rl) {
					t.Fatalf("expected RateLimitError, got %T", err)
				}
				if rl.RetryAfter != 7*time.Second {
					t.Errorf("expected RetryAfter=7s, got %v", rl.RetryAfter)
				}
			},
			wantKind: KindRateLimit,
		},
		{
			name:   "TC-3: 400 is a client error",
			status: http.StatusBadRequest,
			body:   `{"message":"Cannot send an empty message","code":50006}`,
			check: func(t *testing.T, err error) {
				var ce *ClientError
				if !errors.As(err, &ce) {
					t.Fatalf("expected ClientError, got %T", err)
				}
				if ce.StatusCode != http.StatusBadRequest {
					t.Errorf("expected StatusCode=400, got %d", ce.StatusCode)
				}
				if !strings.Contains(ce.Error(), "50006") {
					t.Errorf("expected body in message, got %q", ce.Error())
				}
			},
			wantKind: KindClient,
		},
		{
			name:   "TC-4: 503 is a server error",
			status: http.StatusServiceUnavailable,
			body:   "upstream unavailable",
			check: func(t *testing.T, err error) {
				var se *ServerError
				if !errors.As(err, &se) {
					t.Fatalf("expected ServerError, got %T", err)
				}
				if se.StatusCode != http.StatusServiceUnavailable {
					t.Errorf("expected StatusCode=503, got %d", se.StatusCode)
				}
			},
			wantKind: KindServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			// Act
			err := newTestDiscordNotifier(server.URL).Post(context.Background(), "hello")

			// Assert
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			tt.check(t, err)
			if kind := ErrorKind(err); kind != tt.wantKind {
				t.Errorf("expected kind=%q, got %q", tt.wantKind, kind)
			}
			if got := atomic.LoadInt32(&calls); got != 1 {
				t.Errorf("expected exactly one request (no retry), got %d", got)
			}
		})
	}
}

func TestDiscordNotifier_Post_ContextCanceled(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := newTestDiscordNotifier(server.URL).Post(ctx, "hello")

	// Assert
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}

func TestDiscordNotifier_Post_Timeout(t *testing.T) {
	// Arrange
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	defer close(release)

	n := newTestDiscordNotifier(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Act
	err := n.Post(ctx, "hello")

	// Assert
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if kind := ErrorKind(err); kind != KindTimeout {
		t.Errorf("expected kind=%q, got %q", KindTimeout, kind)
	}
}

func TestExtractRetryAfter_Default(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}

	got := extractRetryAfter(resp, []byte("not json"))

	if got != 5*time.Second {
		t.Errorf("expected default 5s, got %v", got)
	}
}

func TestTruncateBody(t *testing.T) {
	if got := truncateBody([]byte("short"), 10); got != "short" {
		t.Errorf("expected unchanged body, got %q", got)
	}
	if got := truncateBody([]byte("0123456789abc"), 10); got != "0123456789..." {
		t.Errorf("expected truncated body, got %q", got)
	}
}
