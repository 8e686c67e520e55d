package compact

import (
	"slices"
	"unicode/utf8"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/utils/text"
)

// row is a display candidate. merged marks synthetic rows built from a prefix group.
type row struct {
	entity.DeadlineEntry
	merged bool
}

func toRows(entries []entity.DeadlineEntry) []row {
	rows := make([]row, len(entries))
	for i, e := range entries {
		rows[i] = row{DeadlineEntry: e}
	}
	return rows
}

// mergeRows collapses rows that share a title prefix, trying the longest
// prefix first and shortening it one character at a time, until at most
// limit rows remain or the prefix length reaches 1.
//
// Prefix lengths at which no two titles collide leave the list unchanged,
// so they are skipped by jumping straight to the next length that merges
// something. The output is identical to trying every length in turn.
func mergeRows(rows []row, limit int) []row {
	l := longestTitle(rows)
	for l >= 1 && len(rows) > limit {
		level := collisionLevel(rows, l)
		if level < 1 {
			break
		}
		rows = mergeByPrefix(rows, level)
		l = level - 1
	}
	return rows
}

// mergeByPrefix groups rows by the first n characters of their title
// (the whole title when it is shorter) and replaces every group with more
// than one member by a single synthetic row. Groups keep first-seen order.
func mergeByPrefix(rows []row, n int) []row {
	type bucket struct {
		key   string
		first row
		size  int
	}

	index := make(map[string]int, len(rows))
	buckets := make([]bucket, 0, len(rows))
	for _, r := range rows {
		key := text.PrefixRunes(r.Title, n)
		if i, ok := index[key]; ok {
			buckets[i].size++
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, bucket{key: key, first: r, size: 1})
	}

	out := make([]row, 0, len(buckets))
	for _, b := range buckets {
		if b.size == 1 {
			out = append(out, b.first)
			continue
		}
		out = append(out, row{DeadlineEntry: b.first.Merged(b.key), merged: true})
	}
	return out
}

// collisionLevel returns the largest prefix length <= maxLen at which two
// rows share a grouping key, or 0 when no such length exists.
//
// Identical titles collide at every length. Distinct titles collide exactly
// up to the length of their common prefix, and in byte order the pair with
// the longest common prefix is always adjacent.
func collisionLevel(rows []row, maxLen int) int {
	titles := make([]string, len(rows))
	for i, r := range rows {
		titles[i] = r.Title
	}
	slices.Sort(titles)

	best := 0
	for i := 1; i < len(titles); i++ {
		if titles[i] == titles[i-1] {
			return maxLen
		}
		if n := commonPrefixRunes(titles[i-1], titles[i]); n > best {
			best = n
		}
	}
	return min(best, maxLen)
}

func commonPrefixRunes(a, b string) int {
	n := 0
	for len(a) > 0 && len(b) > 0 {
		_, sa := utf8.DecodeRuneInString(a)
		_, sb := utf8.DecodeRuneInString(b)
		if a[:sa] != b[:sb] {
			break
		}
		a, b = a[sa:], b[sb:]
		n++
	}
	return n
}

func longestTitle(rows []row) int {
	longest := 0
	for _, r := range rows {
		longest = max(longest, text.CountRunes(r.Title))
	}
	return longest
}
