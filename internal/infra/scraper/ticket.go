package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/resilience/circuitbreaker"
	"deadline-notify/internal/resilience/retry"
)

// Default selectors for the ticket booth listing.
const (
	DefaultTicketItemSelector  = "div.booth-item"
	DefaultTicketTitleSelector = ".booth-title"
	DefaultTicketURLSelector   = `a[href*="/booths/"]`

	// UnknownTitle replaces a booth title that could not be read.
	UnknownTitle = "(不明)"

	detailConcurrency = 4
	periodLayout      = "2006年1月2日 15:04"
)

// receptionPeriod matches "2025年1月10日(金) 10:00 〜 2025年1月20日(月) 23:59".
// Both ASCII and full-width brackets and tildes appear on the site.
var receptionPeriod = regexp.MustCompile(
	`(\d{4}年\d{1,2}月\d{1,2}日)\s*[(（][^)）]+[)）]\s*(\d{1,2}:\d{2})` +
		`\s*[〜～~]\s*` +
		`(\d{4}年\d{1,2}月\d{1,2}日)\s*[(（][^)）]+[)）]\s*(\d{1,2}:\d{2})`)

// TicketScraper reads a booth listing and then every booth's detail page,
// emitting one entry per reception period found there.
type TicketScraper struct {
	pages *pageClient
}

// NewTicketScraper creates a TicketScraper using client for all requests.
func NewTicketScraper(client *http.Client) *TicketScraper {
	return &TicketScraper{pages: newPageClient(client, retry.WebScraperConfig(), circuitbreaker.WebScraperConfig)}
}

type booth struct {
	title string
	url   string
}

// Fetch returns the reception-period deadlines of every booth on the listing.
// now is unused: every period carries an absolute date.
func (s *TicketScraper) Fetch(ctx context.Context, src *entity.Source, _ time.Time) ([]entity.DeadlineEntry, error) {
	cfg := ticketConfig(src.ScraperConfig)
	loc, err := sourceLocation(src)
	if err != nil {
		return nil, err
	}

	doc, err := s.pages.document(ctx, src.Name, src.URL)
	if err != nil {
		return nil, fmt.Errorf("booth list: %w", err)
	}
	booths := listBooths(doc, cfg)
	slog.Debug("booth list scraped",
		slog.String("source", src.Name),
		slog.Int("booths", len(booths)))

	perBooth := make([][]entity.DeadlineEntry, len(booths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, b := range booths {
		g.Go(func() error {
			detail, err := s.pages.document(gctx, src.Name, b.url)
			if err != nil {
				return fmt.Errorf("booth %s: %w", b.url, err)
			}
			for _, end := range parseReceptionPeriods(detail.Find("body").Text(), loc) {
				perBooth[i] = append(perBooth[i], entity.DeadlineEntry{
					Title:    b.title,
					URL:      b.url,
					Deadline: endOfDay(end),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []entity.DeadlineEntry
	for _, es := range perBooth {
		entries = append(entries, es...)
	}
	return entries, nil
}

// listBooths returns the booths on the listing page in document order,
// without duplicate detail URLs.
func listBooths(doc *goquery.Document, cfg entity.ScraperConfig) []booth {
	var booths []booth
	seen := make(map[string]bool)
	doc.Find(cfg.ItemSelector).Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find(cfg.URLSelector).First().Attr("href")
		if !ok || !strings.Contains(href, "/booths/") {
			return
		}
		u := makeAbsoluteURL(strings.TrimSpace(href), cfg.URLPrefix)
		if seen[u] {
			return
		}
		seen[u] = true

		title := strings.TrimSpace(card.Find(cfg.TitleSelector).First().Text())
		if title == "" {
			title = UnknownTitle
		}
		booths = append(booths, booth{title: title, url: u})
	})
	return booths
}

// parseReceptionPeriods returns the end time of every reception period in
// text, in document order. Malformed dates are skipped.
func parseReceptionPeriods(text string, loc *time.Location) []time.Time {
	var ends []time.Time
	for _, m := range receptionPeriod.FindAllStringSubmatch(text, -1) {
		end, err := time.ParseInLocation(periodLayout, m[3]+" "+m[4], loc)
		if err != nil {
			slog.Debug("skipping unparsable reception period",
				slog.String("end", m[3]+" "+m[4]),
				slog.Any("error", err))
			continue
		}
		ends = append(ends, end)
	}
	return ends
}

// ticketConfig fills unset fields with the ticket defaults.
func ticketConfig(c *entity.ScraperConfig) entity.ScraperConfig {
	var cfg entity.ScraperConfig
	if c != nil {
		cfg = *c
	}
	if cfg.ItemSelector == "" {
		cfg.ItemSelector = DefaultTicketItemSelector
	}
	if cfg.TitleSelector == "" {
		cfg.TitleSelector = DefaultTicketTitleSelector
	}
	if cfg.URLSelector == "" {
		cfg.URLSelector = DefaultTicketURLSelector
	}
	return cfg
}
