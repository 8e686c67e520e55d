package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/resilience/circuitbreaker"
	"deadline-notify/internal/resilience/retry"
)

// Default selectors for the store listing.
const (
	DefaultStoreItemSelector     = "div.item_box"
	DefaultStoreTitleSelector    = ".text_area .name.product_name_area a"
	DefaultStoreDeadlineSelector = ".icon .shimekiri_mark"
	DefaultStoreMaxPages         = 5
)

var daysLeftPattern = regexp.MustCompile(`あと(\d+)日`)

// StoreScraper reads a paginated shop listing whose items carry a
// "あとN日" (N days left) badge instead of an absolute date.
type StoreScraper struct {
	pages *pageClient
}

// NewStoreScraper creates a StoreScraper using client for all requests.
func NewStoreScraper(client *http.Client) *StoreScraper {
	return &StoreScraper{pages: newPageClient(client, retry.WebScraperConfig(), circuitbreaker.WebScraperConfig)}
}

// Fetch walks the pages {URL}/0, {URL}/1, ... up to MaxPages and stops at the
// first page that lists no items. Any page that cannot be read fails the
// whole source.
func (s *StoreScraper) Fetch(ctx context.Context, src *entity.Source, now time.Time) ([]entity.DeadlineEntry, error) {
	cfg := storeConfig(src.ScraperConfig)
	loc, err := sourceLocation(src)
	if err != nil {
		return nil, err
	}
	today := now.In(loc)

	base := strings.TrimRight(src.URL, "/")
	var entries []entity.DeadlineEntry
	for page := 0; page < cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL := fmt.Sprintf("%s/%d", base, page)
		doc, err := s.pages.document(ctx, src.Name, pageURL)
		if err != nil {
			return nil, fmt.Errorf("store page %d: %w", page, err)
		}

		items := doc.Find(cfg.ItemSelector)
		found := 0
		items.Each(func(i int, item *goquery.Selection) {
			e, ok := parseStoreItem(item, cfg, today)
			if !ok {
				return
			}
			entries = append(entries, e)
			found++
		})
		slog.Debug("store page scraped",
			slog.String("source", src.Name),
			slog.Int("page", page),
			slog.Int("items", items.Length()),
			slog.Int("entries", found))
		// Listings are sorted by deadline, so a page without deadline items ends the scan.
		if found == 0 {
			break
		}
	}

	return entries, nil
}

func parseStoreItem(item *goquery.Selection, cfg entity.ScraperConfig, today time.Time) (entity.DeadlineEntry, bool) {
	link := item.Find(cfg.TitleSelector).First()
	title := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if title == "" || href == "" {
		return entity.DeadlineEntry{}, false
	}

	// 締切バッジのない商品は対象外
	var marker string
	item.Find(cfg.DeadlineSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if strings.HasPrefix(text, "あと") && strings.Contains(text, "日") {
			marker = text
			return false
		}
		return true
	})
	if marker == "" {
		return entity.DeadlineEntry{}, false
	}

	return entity.DeadlineEntry{
		Title:    title,
		URL:      makeAbsoluteURL(href, cfg.URLPrefix),
		Deadline: endOfDay(today.AddDate(0, 0, daysLeft(marker))),
	}, true
}

// daysLeft extracts N from "あとN日". A marker without digits counts as today.
func daysLeft(marker string) int {
	m := daysLeftPattern.FindStringSubmatch(marker)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// storeConfig fills unset fields with the store defaults.
func storeConfig(c *entity.ScraperConfig) entity.ScraperConfig {
	var cfg entity.ScraperConfig
	if c != nil {
		cfg = *c
	}
	if cfg.ItemSelector == "" {
		cfg.ItemSelector = DefaultStoreItemSelector
	}
	if cfg.TitleSelector == "" {
		cfg.TitleSelector = DefaultStoreTitleSelector
	}
	if cfg.DeadlineSelector == "" {
		cfg.DeadlineSelector = DefaultStoreDeadlineSelector
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultStoreMaxPages
	}
	return cfg
}

