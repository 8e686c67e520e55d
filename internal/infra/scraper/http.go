// Package scraper turns listing pages and feeds into deadline entries.
//
// Each source kind has its own adapter (store, ticket, feed). All of them share
// one HTTP layer that validates URLs against SSRF, caps the body size, retries
// transient failures and keeps one circuit breaker per source.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // Asia/Tokyo must resolve in minimal containers

	"github.com/PuerkitoBio/goquery"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/resilience/circuitbreaker"
	"deadline-notify/internal/resilience/retry"
)

const (
	maxBodySize = 10 * 1024 * 1024 // 10MB

	userAgent = "DeadlineNotifyBot/1.0"

	defaultTimezone = "Asia/Tokyo"
)

// pageClient fetches HTML documents with retry and a per-source breaker.
type pageClient struct {
	client        *http.Client
	retryConfig   retry.Config
	breakerConfig func(source string) circuitbreaker.Config

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
}

func newPageClient(client *http.Client, cfg retry.Config, breakerConfig func(source string) circuitbreaker.Config) *pageClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &pageClient{
		client:        client,
		retryConfig:   cfg,
		breakerConfig: breakerConfig,
		breakers:      make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// breaker returns the circuit breaker dedicated to source, creating it on first use.
func (c *pageClient) breaker(source string) *circuitbreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	cb, ok := c.breakers[source]
	if !ok {
		cb = circuitbreaker.New(c.breakerConfig(source))
		c.breakers[source] = cb
	}
	return cb
}

// document fetches and parses pageURL on behalf of source.
func (c *pageClient) document(ctx context.Context, source, pageURL string) (*goquery.Document, error) {
	cb := c.breaker(source)

	var doc *goquery.Document
	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		d, err := circuitbreaker.Do(cb, func() (*goquery.Document, error) {
			return c.fetchHTML(ctx, pageURL)
		})
		if err != nil {
			if circuitbreaker.IsOpenError(err) {
				slog.Warn("scraper circuit breaker open, request rejected",
					slog.String("source", source),
					slog.String("url", pageURL),
					slog.String("state", cb.State().String()))
			}
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// fetchHTML performs one GET without retry or circuit breaker.
func (c *pageClient) fetchHTML(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := validateURL(pageURL); err != nil {
		return nil, fmt.Errorf("URL validation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
			URL:        pageURL,
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

// validateURL checks if a URL is safe to fetch (SSRF prevention).
// For testing purposes, URLs with port 127.0.0.1:xxxxx (httptest servers) are allowed.
func validateURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s (only http/https allowed)", u.Scheme)
	}

	// httptest servers listen on 127.0.0.1 with an ephemeral port (32768-65535)
	if u.Hostname() == "127.0.0.1" && u.Port() != "" {
		portNum := 0
		if _, err := fmt.Sscanf(u.Port(), "%d", &portNum); err == nil {
			if portNum >= 32768 && portNum <= 65535 {
				return nil
			}
		}
	}

	ips, err := net.LookupIP(u.Hostname())
	if err != nil {
		return fmt.Errorf("DNS lookup failed: %w", err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("private IP address detected: %s (SSRF prevention)", ip)
		}
	}

	return nil
}

// isPrivateIP checks if an IP address is private (RFC 1918, loopback, link-local).
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// makeAbsoluteURL converts a relative URL to absolute using the given prefix.
func makeAbsoluteURL(urlStr string, prefix string) string {
	if strings.HasPrefix(urlStr, "http://") || strings.HasPrefix(urlStr, "https://") {
		return urlStr
	}
	if prefix == "" {
		return urlStr
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(urlStr, "/")
}

// sourceLocation resolves the source's timezone, defaulting to Asia/Tokyo.
func sourceLocation(src *entity.Source) (*time.Location, error) {
	name := src.Timezone
	if name == "" {
		name = defaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// endOfDay returns 23:59:00 on t's calendar day in t's location.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
}
