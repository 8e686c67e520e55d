package alert

import (
	"time"

	"deadline-notify/internal/domain/entity"
)

// Filter keeps the entries whose deadline date lies exactly one of offsets
// days after now's date.
//
// The day delta is computed on calendar dates: now's date in now's location
// and the deadline's date in the deadline's location. The result preserves
// input order and never duplicates or mutates an entry. A nil offsets set is
// treated as DefaultOffsets.
func Filter(entries []entity.DeadlineEntry, offsets Offsets, now time.Time) []entity.DeadlineEntry {
	if offsets == nil {
		offsets = DefaultOffsets()
	}
	today := entity.DateOf(now)

	result := make([]entity.DeadlineEntry, 0, len(entries))
	for _, e := range entries {
		if offsets.Contains(entity.DaysBetween(today, e.Date())) {
			result = append(result, e)
		}
	}
	return result
}
