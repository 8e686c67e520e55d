package scraper

import (
	"net/http"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/usecase/announce"
)

// ScraperFactory creates the fetcher for every supported source kind.
type ScraperFactory struct {
	client *http.Client
}

// NewScraperFactory creates a new ScraperFactory with the given HTTP client.
// The HTTP client should be configured with appropriate timeouts.
func NewScraperFactory(client *http.Client) *ScraperFactory {
	return &ScraperFactory{client: client}
}

// CreateFetchers returns the fetchers keyed by source kind.
// The announcer routes each source to the fetcher registered for its Kind.
func (f *ScraperFactory) CreateFetchers() map[string]announce.EntryFetcher {
	return map[string]announce.EntryFetcher{
		entity.SourceKindStore:  NewStoreScraper(f.client),
		entity.SourceKindTicket: NewTicketScraper(f.client),
		entity.SourceKindFeed:   NewFeedScraper(f.client),
	}
}
