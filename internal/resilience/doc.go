// Package resilience provides reliability and fault tolerance patterns for the application.
//
// The package supports:
//   - Circuit breakers for listing sites, feeds and webhook channels
//   - Retry logic with exponential backoff and jitter for page and feed fetches
//
// Webhook delivery is never retried: a failed post is reported to the caller
// and only counts toward the channel's circuit breaker.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.WebScraperConfig("asobistore"))
//	entries, err := circuitbreaker.Do(cb, func() ([]entity.DeadlineEntry, error) {
//	    return scrapeListing(ctx)
//	})
//
//	err := retry.WithBackoff(ctx, retry.WebScraperConfig(), func() error {
//	    return fetchPage()
//	})
package resilience
