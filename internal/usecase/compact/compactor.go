// Package compact renders one deadline date group into a single chat message
// that never exceeds a character budget.
//
// When a group has more entries than fit, rows whose titles share a prefix
// are merged into one "prefix..." row, then rows are truncated, then the row
// cap shrinks and the whole merge is recomputed. If nothing else works a
// fixed notice is sent instead. The output is a pure function of the input.
package compact

import (
	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/utils/text"
)

// Mode describes how much information a compaction discarded.
type Mode string

const (
	// ModeVerbatim means every entry is shown as-is.
	ModeVerbatim Mode = "verbatim"
	// ModeMerged means at least one shown row stands for several entries.
	ModeMerged Mode = "merged"
	// ModeTruncated means rows were dropped without merging any shown row.
	ModeTruncated Mode = "truncated"
	// ModeFallback means no rows fit and only the fixed notice was produced.
	ModeFallback Mode = "fallback"
)

// Result is a compacted message together with what it took to produce it.
type Result struct {
	Message string
	Mode    Mode

	// Entries is the number of input entries.
	Entries int
	// Rows is the number of link lines in Message.
	Rows int
	// MergedRows is the number of link lines that stand for several entries.
	MergedRows int
	// Omitted reports whether Message ends with the omission notice.
	Omitted bool
	// Length is the message length in characters.
	Length int
}

// Compact renders entries, which must all share one deadline date, into a
// message of at most opts.Budget characters headed by section.
//
// An empty entries list yields just the header line. The only case in which
// the result can exceed the budget is when the fallback notice itself
// (header, FallbackNotice and OmittedSuffix) is longer than the budget; use
// Fits to detect it.
func Compact(section string, entries []entity.DeadlineEntry, opts Options) string {
	return CompactDetailed(section, entries, opts).Message
}

// CompactDetailed is Compact with statistics about the chosen rendering.
func CompactDetailed(section string, entries []entity.DeadlineEntry, opts Options) Result {
	opts = opts.normalized()
	all := toRows(entries)

	var (
		rows    []row
		omitted bool
		msg     string
	)

	// 行数の上限を2ずつ下げながら、毎回最初からまとめ直す
	limit := opts.MaxDisplay
	for {
		rows, omitted = all, false
		if len(rows) > limit {
			rows = mergeRows(rows, limit)
			if len(rows) > limit {
				rows = rows[:limit]
			}
			omitted = true
		}

		msg = render(section, rows, omitted, opts)
		if Fits(msg, opts.Budget) || limit <= opts.Floor {
			break
		}
		limit = max(limit-capStep, 0)
	}

	// それでも超える場合は末尾から1行ずつ削る
	for !Fits(msg, opts.Budget) && len(rows) > opts.Floor {
		rows = rows[:len(rows)-1]
		omitted = true
		msg = render(section, rows, omitted, opts)
	}

	if !Fits(msg, opts.Budget) {
		msg = fallback(section, opts)
		return Result{
			Message: msg,
			Mode:    ModeFallback,
			Entries: len(entries),
			Omitted: true,
			Length:  text.CountRunes(msg),
		}
	}

	res := Result{
		Message: msg,
		Entries: len(entries),
		Rows:    len(rows),
		Omitted: omitted,
		Length:  text.CountRunes(msg),
	}
	for _, r := range rows {
		if r.merged {
			res.MergedRows++
		}
	}
	switch {
	case !omitted:
		res.Mode = ModeVerbatim
	case res.MergedRows > 0:
		res.Mode = ModeMerged
	default:
		res.Mode = ModeTruncated
	}
	return res
}
