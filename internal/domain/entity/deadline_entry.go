package entity

import (
	"fmt"
	"strings"
	"time"
)

// MergeMarker is appended to the shared title prefix of a merged entry.
const MergeMarker = "..."

// DeadlineEntry represents an item (product, ticket reception, event) that
// closes at a specific point in time.
//
// DeadlineEntry is a value object: it carries no identity beyond its fields,
// and none of its methods mutate the receiver. Two entries with identical
// fields are still treated as independent rows.
type DeadlineEntry struct {
	Title    string
	URL      string
	Deadline time.Time
}

// Date returns the calendar date of the deadline in the deadline's own location.
// Only this date is used for grouping and offset arithmetic.
func (e DeadlineEntry) Date() Date {
	return DateOf(e.Deadline)
}

// Merged returns a new synthetic entry that stands in for a group of entries
// sharing the title prefix key. URL and Deadline are copied from e, which must
// be the first member of the group in input order.
func (e DeadlineEntry) Merged(key string) DeadlineEntry {
	return DeadlineEntry{
		Title:    key + MergeMarker,
		URL:      e.URL,
		Deadline: e.Deadline,
	}
}

// Validate checks the fields a source must populate. Scrapers drop entries
// that fail it; the notification core never calls it.
func (e DeadlineEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Message: ErrEmptyTitle.Error()}
	}
	if e.URL == "" || !(strings.HasPrefix(e.URL, "http://") || strings.HasPrefix(e.URL, "https://")) {
		return &ValidationError{Field: "url", Message: ErrInvalidEntryURL.Error()}
	}
	if e.Deadline.IsZero() {
		return &ValidationError{Field: "deadline", Message: ErrZeroDeadline.Error()}
	}
	return nil
}

// Date is a civil calendar date without time-of-day or location.
// It is comparable and can be used as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// midnightUTC anchors the date in UTC so that day arithmetic is free of DST shifts.
func (d Date) midnightUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns to - from in whole calendar days.
// The result is negative when to is earlier than from.
func DaysBetween(from, to Date) int {
	return int(to.midnightUTC().Sub(from.midnightUTC()).Hours() / 24)
}
