package entity

import (
	"fmt"
	"strings"
)

// Source kinds understood by the scraper registry.
const (
	SourceKindStore  = "store"
	SourceKindTicket = "ticket"
	SourceKindFeed   = "feed"
)

// Source describes one site whose deadlines are announced as a separate
// series of messages.
type Source struct {
	// Name is the human readable site name (e.g. "アソビストア").
	Name string
	// Kind selects the scraper: store, ticket or feed.
	Kind string
	// URL is the listing page (or feed URL) the scraper starts from.
	// It is also linked from the omitted-rows notice.
	URL string
	// Section is the header line of each message. Defaults to "{Name} 締切間近".
	Section string
	// OmittedMessage is appended when rows were merged or dropped.
	OmittedMessage string
	// FailureMessage is sent instead of a digest when the source cannot be read.
	FailureMessage string
	// Timezone is the IANA zone used to build deadlines from day counts.
	Timezone string
	// ScraperConfig holds kind-specific scraping settings.
	ScraperConfig *ScraperConfig
}

// ScraperConfig holds configuration for HTML scraping sources.
// Different fields are used depending on the source kind:
// - store: ItemSelector, TitleSelector, DeadlineSelector, URLPrefix, MaxPages
// - ticket: ItemSelector, TitleSelector, URLSelector, URLPrefix
// - feed: none
type ScraperConfig struct {
	ItemSelector     string
	TitleSelector    string
	URLSelector      string
	DeadlineSelector string

	// Common
	URLPrefix string // Prepend to relative URLs
	MaxPages  int
}

// SectionTitle returns the configured header, or the default "{Name} 締切間近".
func (s *Source) SectionTitle() string {
	if s.Section != "" {
		return s.Section
	}
	return s.Name + " 締切間近"
}

// OmittedSuffix returns the configured omission notice, or a notice that links
// to the source listing page.
func (s *Source) OmittedSuffix() string {
	if s.OmittedMessage != "" {
		return s.OmittedMessage
	}
	return fmt.Sprintf("...一部省略されています...\n詳細は[%s](%s)を確認してください。", s.Name, s.URL)
}

// FailureNotice returns the placeholder text sent when the source could not be read.
func (s *Source) FailureNotice() string {
	if s.FailureMessage != "" {
		return s.FailureMessage
	}
	return s.Name + "の取得に失敗しました。"
}

// Validate validates the Source entity fields.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	switch s.Kind {
	case SourceKindStore, SourceKindTicket, SourceKindFeed:
	default:
		return fmt.Errorf("%w: %q (must be store, ticket, or feed)", ErrUnknownSourceKind, s.Kind)
	}

	if s.URL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	// HTMLスクレイピングにはScraperConfigが必須
	if s.Kind != SourceKindFeed && s.ScraperConfig == nil {
		return &ValidationError{Field: "scraper_config", Message: "scraper_config is required for HTML sources"}
	}

	return nil
}
