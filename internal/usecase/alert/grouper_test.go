package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadline-notify/internal/domain/entity"
)

func TestGroup_AscendingWithStableMembers(t *testing.T) {
	entries := []entity.DeadlineEntry{
		entryAt("x1", 2025, 1, 17),
		entryAt("y1", 2025, 1, 10),
		entryAt("x2", 2025, 1, 17),
		entryAt("z1", 2025, 1, 11),
		entryAt("y2", 2025, 1, 10),
	}

	groups := Group(entries)

	require.Len(t, groups, 3)
	assert.Equal(t, "2025-01-10", groups[0].Date.String())
	assert.Equal(t, "2025-01-11", groups[1].Date.String())
	assert.Equal(t, "2025-01-17", groups[2].Date.String())

	assert.Equal(t, []string{"y1", "y2"}, titlesOf(groups[0].Entries))
	assert.Equal(t, []string{"z1"}, titlesOf(groups[1].Entries))
	assert.Equal(t, []string{"x1", "x2"}, titlesOf(groups[2].Entries))
}

func TestGroup_IsPartition(t *testing.T) {
	var entries []entity.DeadlineEntry
	for i := 0; i < 50; i++ {
		entries = append(entries, entryAt(string(rune('A'+i%26))+time.Month(i%12+1).String(), 2025, time.Month(i%12+1), i%28+1))
	}

	groups := Group(entries)

	total := 0
	seen := make(map[entity.Date]bool)
	for i, g := range groups {
		assert.False(t, seen[g.Date], "date %s appears twice", g.Date)
		seen[g.Date] = true
		if i > 0 {
			assert.True(t, groups[i-1].Date.Before(g.Date))
		}
		for _, e := range g.Entries {
			assert.Equal(t, g.Date, e.Date())
		}
		total += len(g.Entries)
	}
	assert.Equal(t, len(entries), total)
}

func TestGroup_UsesDeadlineLocation(t *testing.T) {
	// 2025-01-10 20:00 UTC is already 2025-01-11 in Tokyo
	utc := time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)
	entries := []entity.DeadlineEntry{
		{Title: "utc", URL: "https://example.com/u", Deadline: utc},
		{Title: "jst", URL: "https://example.com/j", Deadline: utc.In(jst)},
	}

	groups := Group(entries)

	require.Len(t, groups, 2)
	assert.Equal(t, "utc", groups[0].Entries[0].Title)
	assert.Equal(t, "jst", groups[1].Entries[0].Title)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil))
}

func titlesOf(entries []entity.DeadlineEntry) []string {
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return titles
}
