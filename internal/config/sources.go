// Package config loads the list of sources to announce and the webhook
// settings used to announce them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"deadline-notify/internal/domain/entity"
)

// Built-in source locations.
const (
	StoreName      = "アソビストア"
	StoreURL       = "https://shop.asobistore.jp/product/catalog/s/simekiri/n/120/sime/1/cf113/118/p"
	StoreURLPrefix = "https://shop.asobistore.jp"

	TicketName      = "アソビチケット"
	TicketURL       = "https://asobiticket2.asobistore.jp/booths"
	TicketURLPrefix = "https://asobiticket2.asobistore.jp"
)

var validate = validator.New()

// SourcesFile is the YAML document listing every source.
//
//	sources:
//	  - name: アソビストア
//	    kind: store
//	    url: https://shop.asobistore.jp/...
//	    scraper:
//	      url_prefix: https://shop.asobistore.jp
//	      max_pages: 5
type SourcesFile struct {
	Sources []SourceSpec `yaml:"sources" validate:"required,min=1,dive"`
}

// SourceSpec is one entry of SourcesFile.
type SourceSpec struct {
	Name           string       `yaml:"name" validate:"required,max=100"`
	Kind           string       `yaml:"kind" validate:"required,oneof=store ticket feed"`
	URL            string       `yaml:"url" validate:"required,url,startswith=http"`
	Enabled        *bool        `yaml:"enabled"`
	Section        string       `yaml:"section" validate:"max=200"`
	OmittedMessage string       `yaml:"omitted_message" validate:"max=500"`
	FailureMessage string       `yaml:"failure_message" validate:"max=500"`
	Timezone       string       `yaml:"timezone" validate:"omitempty,timezone"`
	Scraper        *ScraperSpec `yaml:"scraper"`
}

// ScraperSpec overrides the per-kind scraping defaults.
type ScraperSpec struct {
	ItemSelector     string `yaml:"item_selector"`
	TitleSelector    string `yaml:"title_selector"`
	URLSelector      string `yaml:"url_selector"`
	DeadlineSelector string `yaml:"deadline_selector"`
	URLPrefix        string `yaml:"url_prefix" validate:"omitempty,url"`
	MaxPages         int    `yaml:"max_pages" validate:"gte=0,lte=50"`
}

// ErrDuplicateSource is returned when two sources share a name.
var ErrDuplicateSource = errors.New("duplicate source name")

// DefaultSources returns the store and ticket sites.
func DefaultSources() []entity.Source {
	return []entity.Source{
		{
			Name:          StoreName,
			Kind:          entity.SourceKindStore,
			URL:           StoreURL,
			Timezone:      "Asia/Tokyo",
			ScraperConfig: &entity.ScraperConfig{URLPrefix: StoreURLPrefix, MaxPages: 5},
		},
		{
			Name:          TicketName,
			Kind:          entity.SourceKindTicket,
			URL:           TicketURL,
			Timezone:      "Asia/Tokyo",
			ScraperConfig: &entity.ScraperConfig{URLPrefix: TicketURLPrefix},
		},
	}
}

// LoadSources reads the sources file at path. An empty path yields DefaultSources.
// The path parameter is expected to come from a trusted source (flag or environment).
func LoadSources(path string) ([]entity.Source, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	// #nosec G304 -- path comes from the operator, not from request input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a sources document. Unknown keys are
// rejected so that a misspelt selector does not silently fall back to a default.
func ParseSources(data []byte) ([]entity.Source, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file SourcesFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("sources file validation failed: %w", err)
	}

	seen := make(map[string]bool, len(file.Sources))
	sources := make([]entity.Source, 0, len(file.Sources))
	for _, spec := range file.Sources {
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSource, spec.Name)
		}
		seen[spec.Name] = true

		if spec.Enabled != nil && !*spec.Enabled {
			continue
		}
		src := spec.toEntity()
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("source %q: %w", spec.Name, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (s SourceSpec) toEntity() entity.Source {
	src := entity.Source{
		Name:           s.Name,
		Kind:           s.Kind,
		URL:            s.URL,
		Section:        s.Section,
		OmittedMessage: s.OmittedMessage,
		FailureMessage: s.FailureMessage,
		Timezone:       s.Timezone,
	}
	// HTMLソースは設定が空でもデフォルトのセレクタで動く
	if s.Scraper != nil || s.Kind != entity.SourceKindFeed {
		sc := &entity.ScraperConfig{}
		if s.Scraper != nil {
			*sc = entity.ScraperConfig{
				ItemSelector:     s.Scraper.ItemSelector,
				TitleSelector:    s.Scraper.TitleSelector,
				URLSelector:      s.Scraper.URLSelector,
				DeadlineSelector: s.Scraper.DeadlineSelector,
				URLPrefix:        s.Scraper.URLPrefix,
				MaxPages:         s.Scraper.MaxPages,
			}
		}
		src.ScraperConfig = sc
	}
	return src
}

// SelectSources keeps the sources whose name appears in names, in their
// configured order. An empty names list keeps everything.
func SelectSources(sources []entity.Source, names []string) ([]entity.Source, error) {
	if len(names) == 0 {
		return sources, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}

	var out []entity.Source
	for _, s := range sources {
		if want[s.Name] {
			out = append(out, s)
			delete(want, s.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown source(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}
