// Package alert selects the entries that are due for a reminder today and
// buckets them by deadline date.
//
// Everything in this package is a pure function of its arguments. The current
// time is always passed in by the caller; nothing here reads the wall clock.
package alert

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultDays are the reminder offsets used when none are configured:
// the deadline day itself, the day before, and one week before.
var DefaultDays = []int{0, 1, 7}

// Offsets is a set of "days remaining" values at which a reminder fires.
// Negative values (deadline already passed) are accepted.
type Offsets map[int]struct{}

// NewOffsets builds a set from days. An empty list yields DefaultOffsets.
func NewOffsets(days ...int) Offsets {
	if len(days) == 0 {
		days = DefaultDays
	}
	set := make(Offsets, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

// DefaultOffsets returns the {0, 1, 7} set.
func DefaultOffsets() Offsets {
	return NewOffsets(DefaultDays...)
}

// Contains reports whether delta is one of the configured offsets.
func (o Offsets) Contains(delta int) bool {
	_, ok := o[delta]
	return ok
}

// Sorted returns the offsets in ascending order.
func (o Offsets) Sorted() []int {
	days := make([]int, 0, len(o))
	for d := range o {
		days = append(days, d)
	}
	slices.Sort(days)
	return days
}

// String joins the sorted offsets with commas, e.g. "0,1,7".
func (o Offsets) String() string {
	days := o.Sorted()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
