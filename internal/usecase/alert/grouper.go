package alert

import (
	"slices"

	"deadline-notify/internal/domain/entity"
)

// DateGroup is the ordered subsequence of entries sharing one deadline date.
type DateGroup struct {
	Date    entity.Date
	Entries []entity.DeadlineEntry
}

// Group partitions entries by deadline date.
// Every entry lands in exactly one group, groups keep input order internally,
// and the groups are returned in ascending date order.
func Group(entries []entity.DeadlineEntry) []DateGroup {
	index := make(map[entity.Date]int)
	var groups []DateGroup

	for _, e := range entries {
		d := e.Date()
		i, ok := index[d]
		if !ok {
			i = len(groups)
			index[d] = i
			groups = append(groups, DateGroup{Date: d})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	slices.SortStableFunc(groups, func(a, b DateGroup) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case b.Date.Before(a.Date):
			return 1
		default:
			return 0
		}
	})
	return groups
}
