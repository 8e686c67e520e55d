package worker

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"deadline-notify/internal/config"
	"deadline-notify/internal/infra/scraper"
	"deadline-notify/internal/usecase/alert"
	"deadline-notify/internal/usecase/announce"
	"deadline-notify/internal/usecase/compact"
	"deadline-notify/internal/usecase/notify"
)

// Pipeline is a ready-to-run announcer together with the dispatcher it posts through.
type Pipeline struct {
	Announcer *announce.Service
	Notify    notify.Service
	Sources   int
}

// PipelineOptions adjusts BuildPipeline for one-off runs.
type PipelineOptions struct {
	// SourceNames restricts the run to these sources. Empty means all.
	SourceNames []string
	// DryRunOutput receives messages when cfg.DryRun is set. Nil means io.Discard.
	DryRunOutput io.Writer
}

// BuildPipeline wires sources, scrapers, the notification channel and the
// announcer from cfg and the Discord environment variables.
//
// In dry-run mode messages are printed instead of posted and the webhook URL
// is optional.
func BuildPipeline(cfg *WorkerConfig, opts PipelineOptions, logger *slog.Logger) (*Pipeline, error) {
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	if len(opts.SourceNames) > 0 {
		sources, err = config.SelectSources(sources, opts.SourceNames)
		if err != nil {
			return nil, err
		}
	}

	discordConfig, err := config.LoadDiscordConfig(cfg.DryRun)
	if err != nil {
		return nil, err
	}

	var channels []notify.Channel
	if cfg.DryRun {
		out := opts.DryRunOutput
		if out == nil {
			out = io.Discard
		}
		channels = append(channels, notify.NewDryRunChannel(out, logger))
		logger.Info("dry-run channel initialized")
	} else {
		channels = append(channels, notify.NewDiscordChannel(discordConfig, logger))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	}
	notifyService := notify.NewService(channels, discordConfig.Timeout, logger)

	compactOpts := compact.DefaultOptions()
	compactOpts.MaxDisplay = cfg.MaxDisplay
	compactOpts.Budget = cfg.MessageBudget

	fetchers := scraper.NewScraperFactory(newScraperHTTPClient()).CreateFetchers()
	svc := announce.NewService(sources, fetchers, notifyService, announce.Config{
		Offsets: alert.NewOffsets(cfg.AlertDays...),
		Compact: compactOpts,
	}, logger)

	return &Pipeline{Announcer: svc, Notify: notifyService, Sources: len(sources)}, nil
}

// newScraperHTTPClient returns a client with short timeouts and TLS 1.2+.
func newScraperHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
