// Package announce runs one notification pass: it reads every configured
// source, keeps the entries whose deadline is a configured number of days
// away, and posts one compacted message per deadline date.
package announce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/observability/logging"
	"deadline-notify/internal/observability/metrics"
	"deadline-notify/internal/observability/tracing"
	"deadline-notify/internal/usecase/alert"
	"deadline-notify/internal/usecase/compact"
	"deadline-notify/internal/usecase/notify"
)

const (
	// DefaultFetchParallelism bounds how many sources are read at once.
	DefaultFetchParallelism = 4
	// DefaultCompactParallelism bounds how many date groups are compacted at once.
	DefaultCompactParallelism = 8

	nothingFoundFormat = "%s日後に締切のアイテムはありませんでした。"
)

// Config controls a Service.
type Config struct {
	// Offsets are the "days remaining" values that trigger a notice.
	Offsets alert.Offsets
	// Compact is the base compaction setup. OmittedSuffix is replaced per source.
	Compact compact.Options
	// FetchParallelism bounds concurrent source reads. Zero means the default.
	FetchParallelism int
	// CompactParallelism bounds concurrent group compaction. Zero means the default.
	CompactParallelism int
}

// DefaultConfig returns the {0, 1, 7} offsets with Discord-sized messages.
func DefaultConfig() Config {
	return Config{
		Offsets:            alert.DefaultOffsets(),
		Compact:            compact.DefaultOptions(),
		FetchParallelism:   DefaultFetchParallelism,
		CompactParallelism: DefaultCompactParallelism,
	}
}

// SourceReport summarizes what happened to one source during a run.
type SourceReport struct {
	Name    string `json:"name"`
	Fetched int    `json:"fetched"`
	Matched int    `json:"matched"`
	Groups  int    `json:"groups"`
	// Sent is the number of messages handed to the dispatcher for this source.
	Sent int `json:"sent"`
	// FetchError is set when the source could not be read.
	FetchError error `json:"-"`
	// DeliveryError is set when a message of this source was not delivered.
	DeliveryError error `json:"-"`
}

// Report summarizes a run.
type Report struct {
	RunID   string         `json:"run_id"`
	Sources []SourceReport `json:"sources"`
	// Sent counts every message handed to the dispatcher, including the
	// nothing-found notice.
	Sent int `json:"sent"`
	// NothingFound is true when the nothing-found notice was sent.
	NothingFound bool `json:"nothing_found"`
}

// Service runs the announcement pipeline for a fixed list of sources.
type Service struct {
	sources    []entity.Source
	fetchers   map[string]EntryFetcher
	dispatcher notify.Dispatcher
	cfg        Config
	logger     *slog.Logger
}

// NewService creates a Service. fetchers is keyed by entity.Source.Kind.
// Sources are announced in the given order.
func NewService(sources []entity.Source, fetchers map[string]EntryFetcher, dispatcher notify.Dispatcher, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Offsets == nil {
		cfg.Offsets = alert.DefaultOffsets()
	}
	if cfg.FetchParallelism <= 0 {
		cfg.FetchParallelism = DefaultFetchParallelism
	}
	if cfg.CompactParallelism <= 0 {
		cfg.CompactParallelism = DefaultCompactParallelism
	}
	return &Service{
		sources:    sources,
		fetchers:   fetchers,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// fetchResult is the outcome of reading one source.
type fetchResult struct {
	entries []entity.DeadlineEntry
	err     error
}

// Run performs one pass at reference time now.
//
// Sources are read concurrently but announced one after another in
// configuration order; within a source, date groups go out in ascending date
// order. A source that cannot be read is announced with its failure notice.
// A delivery failure stops the remaining messages of that source only.
// When no message at all was handed to the dispatcher, a single
// nothing-found notice listing the offsets is sent.
//
// The returned error joins every fetch and delivery failure of the run.
func (s *Service) Run(ctx context.Context, now time.Time) (report Report, err error) {
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	logger := logging.WithRunID(ctx, s.logger)
	report.RunID = runID

	ctx, span := tracing.StartSpan(ctx, "announce.Run",
		attribute.String("run_id", runID),
		attribute.Int("sources", len(s.sources)),
		attribute.String("offsets", s.cfg.Offsets.String()))
	defer func() { tracing.EndSpan(span, err) }()

	fetched := s.fetchAll(ctx, now, logger)

	var errs []error
	for i := range s.sources {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		src := &s.sources[i]
		sr, srcErr := s.announceSource(ctx, src, fetched[i], now, logger)
		report.Sources = append(report.Sources, sr)
		report.Sent += sr.Sent
		if srcErr != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name, srcErr))
		}
	}

	if report.Sent == 0 && ctx.Err() == nil {
		msg := fmt.Sprintf(nothingFoundFormat, s.cfg.Offsets.String())
		report.Sent++
		report.NothingFound = true
		if sendErr := s.dispatcher.Send(ctx, msg); sendErr != nil {
			errs = append(errs, fmt.Errorf("nothing-found notice: %w", sendErr))
		}
	}

	logger.Info("announcement run finished",
		slog.Int("sources", len(s.sources)),
		slog.Int("messages_sent", report.Sent),
		slog.Bool("nothing_found", report.NothingFound),
		slog.Int("errors", len(errs)))

	return report, errors.Join(errs...)
}

// fetchAll reads every source with bounded parallelism. Errors are kept per
// source and never cancel the other reads.
func (s *Service) fetchAll(ctx context.Context, now time.Time, logger *slog.Logger) []fetchResult {
	results := make([]fetchResult, len(s.sources))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.FetchParallelism)
	for i := range s.sources {
		src := &s.sources[i]
		g.Go(func() error {
			results[i] = s.fetchSource(ctx, src, now, logger)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Service) fetchSource(ctx context.Context, src *entity.Source, now time.Time, logger *slog.Logger) fetchResult {
	start := time.Now()

	fetcher, ok := s.fetchers[src.Kind]
	if !ok {
		err := fmt.Errorf("%w: %q", entity.ErrUnknownSourceKind, src.Kind)
		metrics.RecordSourceError(src.Name, time.Since(start))
		return fetchResult{err: err}
	}

	entries, err := fetcher.Fetch(ctx, src, now)
	if err != nil {
		metrics.RecordSourceError(src.Name, time.Since(start))
		logger.Warn("source fetch failed",
			slog.String("source", src.Name),
			slog.String("kind", src.Kind),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", logging.SanitizeError(err)))
		return fetchResult{err: err}
	}

	metrics.RecordSourceFetched(src.Name, len(entries), time.Since(start))
	logger.Debug("source fetched",
		slog.String("source", src.Name),
		slog.Int("entries", len(entries)),
		slog.Duration("duration", time.Since(start)))
	return fetchResult{entries: entries}
}

// announceSource dispatches the messages of one source.
func (s *Service) announceSource(ctx context.Context, src *entity.Source, res fetchResult, now time.Time, logger *slog.Logger) (sr SourceReport, err error) {
	sr.Name = src.Name

	ctx, span := tracing.StartSpan(ctx, "announce.source",
		attribute.String("source", src.Name),
		attribute.String("kind", src.Kind))
	defer func() { tracing.EndSpan(span, err) }()

	if res.err != nil {
		sr.FetchError = res.err
		sr.Sent++
		if sendErr := s.dispatcher.Send(ctx, src.FailureNotice()); sendErr != nil {
			sr.DeliveryError = sendErr
			return sr, errors.Join(res.err, sendErr)
		}
		return sr, res.err
	}

	sr.Fetched = len(res.entries)
	matched := alert.Filter(res.entries, s.cfg.Offsets, now)
	sr.Matched = len(matched)
	metrics.RecordEntriesMatched(src.Name, len(matched))
	if len(matched) == 0 {
		return sr, nil
	}

	groups := alert.Group(matched)
	sr.Groups = len(groups)

	results, err := s.compactGroups(ctx, src, groups)
	if err != nil {
		return sr, err
	}

	for i, r := range results {
		sr.Sent++
		if sendErr := s.dispatcher.Send(ctx, r.Message); sendErr != nil {
			sr.DeliveryError = sendErr
			logger.Error("delivery failed, skipping remaining dates of source",
				slog.String("source", src.Name),
				slog.String("date", groups[i].Date.String()),
				slog.Int("remaining", len(results)-i-1),
				slog.String("error", logging.SanitizeError(sendErr)))
			return sr, sendErr
		}
		logger.Info("deadline message sent",
			slog.String("source", src.Name),
			slog.String("date", groups[i].Date.String()),
			slog.Int("entries", r.Entries),
			slog.Int("rows", r.Rows),
			slog.String("mode", string(r.Mode)),
			slog.Int("length", r.Length))
	}
	return sr, nil
}

// compactGroups compacts every group concurrently. results[i] belongs to groups[i].
func (s *Service) compactGroups(ctx context.Context, src *entity.Source, groups []alert.DateGroup) ([]compact.Result, error) {
	opts := s.cfg.Compact
	opts.OmittedSuffix = src.OmittedSuffix()
	section := src.SectionTitle()

	results := make([]compact.Result, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.CompactParallelism)
	for i, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := tracing.StartSpan(gctx, "compact.group",
				attribute.String("source", src.Name),
				attribute.String("date", grp.Date.String()),
				attribute.Int("entries", len(grp.Entries)))
			r := compact.CompactDetailed(section, grp.Entries, opts)
			span.SetAttributes(
				attribute.String("mode", string(r.Mode)),
				attribute.Int("length", r.Length))
			span.End()

			metrics.RecordCompaction(src.Name, string(r.Mode), r.Entries-(r.Rows-r.MergedRows), r.Length)
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
