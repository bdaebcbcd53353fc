package domain

import (
	"slices"
)

// Interval is a half-open, same-day range of minutes since midnight.
type Interval struct {
	Start int
	End   int
}

func (i Interval) Empty() bool {
	return i.End <= i.Start
}

func (i Interval) Overlaps(o Interval) bool {
	return o.Start < i.End && i.Start < o.End
}

// Subtract removes every overlapping booking from avail and returns the free
// pieces in ascending order. Abutting pieces are not merged.
func Subtract(avail Interval, bookings []Interval) []Interval {
	if avail.Empty() {
		return nil
	}

	overlapping := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if b.Empty() || !avail.Overlaps(b) {
			continue
		}
		overlapping = append(overlapping, b)
	}
	if len(overlapping) == 0 {
		return []Interval{avail}
	}
	slices.SortFunc(overlapping, func(a, b Interval) int {
		return a.Start - b.Start
	})

	var out []Interval
	cursor := avail.Start
	for _, b := range overlapping {
		if b.Start > cursor {
			out = append(out, Interval{Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
		if cursor >= avail.End {
			break
		}
	}
	if cursor < avail.End {
		out = append(out, Interval{Start: cursor, End: avail.End})
	}
	return out
}

// splitRange turns a daily range into same-day intervals: the part on the
// anchor day and, for a wrapping range, the part on the following day.
func splitRange(r TimeRange) (today Interval, tomorrow Interval) {
	if !r.Wraps() {
		return Interval{Start: r.Start, End: r.End}, Interval{}
	}
	return Interval{Start: r.Start, End: MinutesPerDay}, Interval{Start: 0, End: r.End}
}
