package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/resilience/circuitbreaker"
	"deadline-notify/internal/resilience/retry"
)

// FeedScraper reads RSS/Atom feeds whose item dates are deadlines.
type FeedScraper struct {
	client      *http.Client
	pages       *pageClient
	retryConfig retry.Config
}

// NewFeedScraper creates a FeedScraper using client for all requests.
func NewFeedScraper(client *http.Client) *FeedScraper {
	pages := newPageClient(client, retry.FeedFetchConfig(), circuitbreaker.FeedFetchConfig)
	return &FeedScraper{
		client:      pages.client,
		pages:       pages,
		retryConfig: retry.FeedFetchConfig(),
	}
}

// Fetch returns one entry per feed item. The deadline is the item's updated
// date, or its published date when there is none; items with neither are
// skipped. now is unused.
func (f *FeedScraper) Fetch(ctx context.Context, src *entity.Source, _ time.Time) ([]entity.DeadlineEntry, error) {
	loc, err := sourceLocation(src)
	if err != nil {
		return nil, err
	}
	cb := f.pages.breaker(src.Name)

	var feed *gofeed.Feed
	err = retry.WithBackoff(ctx, f.retryConfig, func() error {
		parsed, err := circuitbreaker.Do(cb, func() (*gofeed.Feed, error) {
			return f.parse(ctx, src.URL)
		})
		if err != nil {
			if circuitbreaker.IsOpenError(err) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("source", src.Name),
					slog.String("url", src.URL),
					slog.String("state", cb.State().String()))
			}
			return err
		}
		feed = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]entity.DeadlineEntry, 0, len(feed.Items))
	for _, it := range feed.Items {
		deadline := it.UpdatedParsed
		if deadline == nil {
			deadline = it.PublishedParsed
		}
		link := strings.TrimSpace(it.Link)
		if deadline == nil || link == "" {
			continue
		}

		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = UnknownTitle
		}
		e := entity.DeadlineEntry{
			Title:    title,
			URL:      link,
			Deadline: deadline.In(loc),
		}
		if err := e.Validate(); err != nil {
			slog.Debug("feed item skipped",
				slog.String("source", src.Name),
				slog.String("link", link),
				slog.Any("error", err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// parse performs one fetch without retry or circuit breaker.
func (f *FeedScraper) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if err := validateURL(feedURL); err != nil {
		return nil, fmt.Errorf("URL validation failed: %w", err)
	}

	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		// retry only understands its own status error
		var he gofeed.HTTPError
		if errors.As(err, &he) {
			return nil, &retry.HTTPError{StatusCode: he.StatusCode, Message: he.Status, URL: feedURL}
		}
		return nil, err
	}
	return feed, nil
}
