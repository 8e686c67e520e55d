package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadline-notify/internal/domain/entity"
)

func TestDefaultSources(t *testing.T) {
	sources := DefaultSources()

	require.Len(t, sources, 2)
	for _, s := range sources {
		assert.NoError(t, s.Validate(), s.Name)
	}
	assert.Equal(t, entity.SourceKindStore, sources[0].Kind)
	assert.Equal(t, "アソビストア 締切間近", sources[0].SectionTitle())
	assert.Equal(t, entity.SourceKindTicket, sources[1].Kind)
	assert.Equal(t,
		"...一部省略されています...\n詳細は[アソビチケット](https://asobiticket2.asobistore.jp/booths)を確認してください。",
		sources[1].OmittedSuffix())
}

func TestParseSources(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		errMsg   string
		validate func(t *testing.T, sources []entity.Source)
	}{
		{
			name: "TC-1: full document",
			yaml: `
sources:
  - name: store
    kind: store
    url: https://shop.example/list
    section: ストア 締切間近
    timezone: Asia/Tokyo
    scraper:
      url_prefix: https://shop.example
      max_pages: 3
  - name: events
    kind: feed
    url: https://events.example/feed.xml
    failure_message: "events: 取得に失敗しました"
`,
			validate: func(t *testing.T, sources []entity.Source) {
				require.Len(t, sources, 2)
				assert.Equal(t, "ストア 締切間近", sources[0].SectionTitle())
				require.NotNil(t, sources[0].ScraperConfig)
				assert.Equal(t, 3, sources[0].ScraperConfig.MaxPages)
				assert.Equal(t, "https://shop.example", sources[0].ScraperConfig.URLPrefix)
				assert.Nil(t, sources[1].ScraperConfig)
				assert.Equal(t, "events: 取得に失敗しました", sources[1].FailureNotice())
			},
		},
		{
			name: "TC-2: html source without scraper block gets defaults",
			yaml: `
sources:
  - name: booths
    kind: ticket
    url: https://tickets.example/booths
`,
			validate: func(t *testing.T, sources []entity.Source) {
				require.Len(t, sources, 1)
				assert.NotNil(t, sources[0].ScraperConfig)
			},
		},
		{
			name: "TC-3: disabled source skipped",
			yaml: `
sources:
  - name: a
    kind: feed
    url: https://a.example/feed
    enabled: false
  - name: b
    kind: feed
    url: https://b.example/feed
`,
			validate: func(t *testing.T, sources []entity.Source) {
				require.Len(t, sources, 1)
				assert.Equal(t, "b", sources[0].Name)
			},
		},
		{
			name:   "TC-4: unknown kind",
			yaml:   "sources:\n  - name: x\n    kind: carrier\n    url: https://x.example\n",
			errMsg: "oneof",
		},
		{
			name:   "TC-5: missing url",
			yaml:   "sources:\n  - name: x\n    kind: feed\n",
			errMsg: "URL",
		},
		{
			name:   "TC-6: invalid timezone",
			yaml:   "sources:\n  - name: x\n    kind: feed\n    url: https://x.example\n    timezone: Mars/Olympus\n",
			errMsg: "timezone",
		},
		{
			name:   "TC-7: unknown key",
			yaml:   "sources:\n  - name: x\n    kind: feed\n    url: https://x.example\n    selector: .item\n",
			errMsg: "field selector not found",
		},
		{
			name:   "TC-8: empty document",
			yaml:   "",
			errMsg: "validation failed",
		},
		{
			name:   "TC-9: duplicate names",
			yaml:   "sources:\n  - name: x\n    kind: feed\n    url: https://x.example\n  - name: x\n    kind: feed\n    url: https://y.example\n",
			errMsg: "duplicate source name",
		},
		{
			name:   "TC-10: non-http scheme",
			yaml:   "sources:\n  - name: x\n    kind: feed\n    url: ftp://x.example/feed\n",
			errMsg: "startswith",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, err := ParseSources([]byte(tt.yaml))
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			tt.validate(t, sources)
		})
	}
}

func TestLoadSources(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		sources, err := LoadSources("")
		require.NoError(t, err)
		assert.Equal(t, DefaultSources(), sources)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sources.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sources:\n  - name: x\n    kind: feed\n    url: https://x.example/feed\n"), 0o600))

		sources, err := LoadSources(path)

		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, "x", sources[0].Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read sources file")
	})

	t.Run("example file in repository parses", func(t *testing.T) {
		sources, err := LoadSources(filepath.Join("..", "..", "configs", "sources.yaml"))
		require.NoError(t, err)
		assert.NotEmpty(t, sources)
	})
}

func TestSelectSources(t *testing.T) {
	all := DefaultSources()

	got, err := SelectSources(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = SelectSources(all, []string{TicketName})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, TicketName, got[0].Name)

	_, err = SelectSources(all, []string{"zzz", "aaa"})
	require.Error(t, err)
	assert.Equal(t, "unknown source(s): aaa, zzz", err.Error())
}
