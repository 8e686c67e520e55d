package announce

import (
	"context"
	"time"

	"deadline-notify/internal/domain/entity"
)

// EntryFetcher reads every deadline-bearing entry a source currently lists.
//
// now is the run's reference time. Sources that only publish "N days left"
// build absolute deadlines from it, so a fixed now yields reproducible output.
type EntryFetcher interface {
	Fetch(ctx context.Context, src *entity.Source, now time.Time) ([]entity.DeadlineEntry, error)
}

// FetcherFunc adapts an ordinary function to EntryFetcher.
type FetcherFunc func(ctx context.Context, src *entity.Source, now time.Time) ([]entity.DeadlineEntry, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, src *entity.Source, now time.Time) ([]entity.DeadlineEntry, error) {
	return f(ctx, src, now)
}
