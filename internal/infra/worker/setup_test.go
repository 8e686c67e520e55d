package worker

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadline-notify/internal/config"
)

func TestBuildPipeline(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	t.Run("TC-1: dry run with built-in sources", func(t *testing.T) {
		t.Setenv("DISCORD_WEBHOOK_URL", "")
		cfg := DefaultConfig()
		cfg.DryRun = true

		pipeline, err := BuildPipeline(&cfg, PipelineOptions{DryRunOutput: &bytes.Buffer{}}, logger)

		require.NoError(t, err)
		assert.Equal(t, 2, pipeline.Sources)
		require.NotNil(t, pipeline.Announcer)
		health := pipeline.Notify.GetChannelHealth()
		require.Len(t, health, 1)
		assert.Equal(t, "dryrun", health[0].Name)
	})

	t.Run("TC-2: source selection", func(t *testing.T) {
		t.Setenv("DISCORD_WEBHOOK_URL", "")
		cfg := DefaultConfig()
		cfg.DryRun = true

		pipeline, err := BuildPipeline(&cfg, PipelineOptions{SourceNames: []string{config.TicketName}}, logger)

		require.NoError(t, err)
		assert.Equal(t, 1, pipeline.Sources)
	})

	t.Run("TC-3: unknown source name", func(t *testing.T) {
		t.Setenv("DISCORD_WEBHOOK_URL", "")
		cfg := DefaultConfig()
		cfg.DryRun = true

		_, err := BuildPipeline(&cfg, PipelineOptions{SourceNames: []string{"nope"}}, logger)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown source(s): nope")
	})

	t.Run("TC-4: webhook required outside dry run", func(t *testing.T) {
		t.Setenv("DISCORD_WEBHOOK_URL", "")
		cfg := DefaultConfig()

		_, err := BuildPipeline(&cfg, PipelineOptions{}, logger)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "DISCORD_WEBHOOK_URL")
	})

	t.Run("TC-5: Discord channel when configured", func(t *testing.T) {
		t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/123/token")
		cfg := DefaultConfig()

		pipeline, err := BuildPipeline(&cfg, PipelineOptions{}, logger)

		require.NoError(t, err)
		health := pipeline.Notify.GetChannelHealth()
		require.Len(t, health, 1)
		assert.Equal(t, "discord", health[0].Name)
		assert.True(t, health[0].Enabled)
	})

	t.Run("TC-6: sources file", func(t *testing.T) {
		t.Setenv("DISCORD_WEBHOOK_URL", "")
		path := filepath.Join(t.TempDir(), "sources.yaml")
		doc := "sources:\n  - name: news\n    kind: feed\n    url: https://example.com/feed.xml\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		cfg := DefaultConfig()
		cfg.DryRun = true
		cfg.SourcesFile = path

		pipeline, err := BuildPipeline(&cfg, PipelineOptions{}, logger)

		require.NoError(t, err)
		assert.Equal(t, 1, pipeline.Sources)
	})

	t.Run("TC-7: missing sources file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DryRun = true
		cfg.SourcesFile = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := BuildPipeline(&cfg, PipelineOptions{}, logger)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "load sources")
	})
}
