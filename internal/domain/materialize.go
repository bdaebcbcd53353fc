package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FreeInterval is a concrete span of free time. Date is local midnight of the
// day the span was materialized onto.
type FreeInterval struct {
	InstructorID string
	Date         time.Time
	Start        time.Time
	End          time.Time
}

// SkippedWindow records a window that contributed no free time because its
// data could not be used.
type SkippedWindow struct {
	WindowID     uuid.UUID
	InstructorID string
	Err          error
}

type Materialization struct {
	Free    []FreeInterval
	Skipped []SkippedWindow
}

type parsedWindow struct {
	window AvailabilityWindow
	ranges []TimeRange
}

type dayPiece struct {
	instructorID string
	day          time.Time
	minutes      Interval
}

// Materialize expands windows onto every calendar day in [rangeStart, rangeEnd]
// (dates taken in loc), subtracts the instructors' active bookings and returns
// the remaining free time ordered by start. Unusable windows are reported in
// Skipped and do not affect the others.
func Materialize(windows []AvailabilityWindow, bookings []Booking, rangeStart, rangeEnd time.Time, loc *time.Location) Materialization {
	if loc == nil {
		loc = time.UTC
	}

	var out Materialization
	first := startOfDay(rangeStart, loc)
	last := startOfDay(rangeEnd, loc)
	if last.Before(first) {
		return out
	}

	parsed, skipped := parseWindows(windows)
	out.Skipped = skipped

	var pieces []dayPiece
	for day := first; !day.After(last); day = nextDay(day) {
		for _, pw := range parsed {
			if !pw.window.AppliesOn(day) {
				continue
			}
			pieces = appendDayPieces(pieces, pw.window.InstructorID, day, pw.ranges)
		}
	}

	byInstructor := activeBookingsByInstructor(bookings)
	for _, p := range pieces {
		busy := projectBookings(byInstructor[p.instructorID], p.day)
		for _, free := range Subtract(p.minutes, busy) {
			start := atMinute(p.day, free.Start)
			end := atMinute(p.day, free.End)
			if !start.Before(end) {
				// wall-clock minutes swallowed by a DST gap
				continue
			}
			out.Free = append(out.Free, FreeInterval{
				InstructorID: p.instructorID,
				Date:         p.day,
				Start:        start,
				End:          end,
			})
		}
	}

	out.Free = mergeFree(out.Free)
	return out
}

func parseWindows(windows []AvailabilityWindow) ([]parsedWindow, []SkippedWindow) {
	parsed := make([]parsedWindow, 0, len(windows))
	var skipped []SkippedWindow
	for _, w := range windows {
		if !w.ValidSpan() {
			skipped = append(skipped, SkippedWindow{WindowID: w.ID, InstructorID: w.InstructorID, Err: ErrInvalidDateSpan})
			continue
		}
		ranges, err := ParseTimeRanges(w.TimeRanges)
		if err != nil {
			skipped = append(skipped, SkippedWindow{WindowID: w.ID, InstructorID: w.InstructorID, Err: err})
			continue
		}
		parsed = append(parsed, parsedWindow{window: w, ranges: ranges})
	}
	return parsed, skipped
}

// appendDayPieces places each range on day; the after-midnight part of a
// wrapping range lands on the following day. Zero-length ranges add nothing.
func appendDayPieces(pieces []dayPiece, instructorID string, day time.Time, ranges []TimeRange) []dayPiece {
	for _, r := range ranges {
		today, tomorrow := splitRange(r)
		if !today.Empty() {
			pieces = append(pieces, dayPiece{instructorID: instructorID, day: day, minutes: today})
		}
		if !tomorrow.Empty() {
			pieces = append(pieces, dayPiece{instructorID: instructorID, day: nextDay(day), minutes: tomorrow})
		}
	}
	return pieces
}

func activeBookingsByInstructor(bookings []Booking) map[string][]Booking {
	out := make(map[string][]Booking)
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		out[b.InstructorID] = append(out[b.InstructorID], b)
	}
	return out
}

// projectBookings clips bookings to day and converts them to minute intervals.
func projectBookings(bookings []Booking, day time.Time) []Interval {
	dayEnd := nextDay(day)
	var out []Interval
	for _, b := range bookings {
		if !b.StartTime.Before(dayEnd) || !day.Before(b.EndTime) {
			continue
		}
		start := 0
		if b.StartTime.After(day) {
			start = minuteFloor(b.StartTime.In(day.Location()))
		}
		end := MinutesPerDay
		if b.EndTime.Before(dayEnd) {
			end = minuteCeil(b.EndTime.In(day.Location()))
		}
		out = append(out, Interval{Start: start, End: end})
	}
	return out
}

func minuteFloor(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func minuteCeil(t time.Time) int {
	m := minuteFloor(t)
	if t.Second() > 0 || t.Nanosecond() > 0 {
		m++
	}
	return m
}

// mergeFree joins intervals of one instructor on one day that touch or
// overlap, then orders everything by start.
func mergeFree(free []FreeInterval) []FreeInterval {
	if len(free) == 0 {
		return nil
	}

	sorted := slices.Clone(free)
	slices.SortFunc(sorted, func(a, b FreeInterval) int {
		if c := strings.Compare(a.InstructorID, b.InstructorID); c != 0 {
			return c
		}
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.Start.Compare(b.Start)
	})

	out := make([]FreeInterval, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.InstructorID == cur.InstructorID && next.Date.Equal(cur.Date) && !next.Start.After(cur.End) {
			if next.End.After(cur.End) {
				cur.End = next.End
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)

	slices.SortStableFunc(out, func(a, b FreeInterval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.InstructorID, b.InstructorID)
	})
	return out
}
