package domain

import (
	"slices"
	"time"
)

// Verdict is the outcome of checking a proposed slot against an instructor.
type Verdict string

const (
	VerdictAvailable   Verdict = "available"
	VerdictUnavailable Verdict = "unavailable"
	VerdictUnknown     Verdict = "unknown"
)

// Slot is a proposed lesson time.
type Slot struct {
	Start time.Time
	End   time.Time
}

// IsAvailable reports whether [proposedStart, proposedEnd) lies inside the
// instructor's availability on the day proposedStart falls on (in loc).
// Bookings are not considered; see HasConflict. A range that wraps past
// midnight covers the late evening of its day and the early morning of the
// next, so a slot may straddle midnight.
func IsAvailable(instructorID string, windows []AvailabilityWindow, proposedStart, proposedEnd time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	if !proposedStart.Before(proposedEnd) {
		return false
	}

	day := startOfDay(proposedStart, loc)
	prev := time.Date(day.Year(), day.Month(), day.Day()-1, 0, 0, 0, 0, loc)

	var pieces []dayPiece
	for _, w := range windows {
		if w.InstructorID != instructorID {
			continue
		}
		ranges, err := ParseTimeRanges(w.TimeRanges)
		if err != nil {
			continue
		}
		for _, d := range []time.Time{prev, day} {
			if w.AppliesOn(d) {
				pieces = appendDayPieces(pieces, instructorID, d, ranges)
			}
		}
	}

	for _, s := range coverage(pieces) {
		if !proposedStart.Before(s.Start) && !proposedEnd.After(s.End) {
			return true
		}
	}
	return false
}

// coverage anchors pieces to absolute time and joins the ones that touch,
// including across midnight.
func coverage(pieces []dayPiece) []Slot {
	spans := make([]Slot, 0, len(pieces))
	for _, p := range pieces {
		start := atMinute(p.day, p.minutes.Start)
		end := atMinute(p.day, p.minutes.End)
		if start.Before(end) {
			spans = append(spans, Slot{Start: start, End: end})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	slices.SortFunc(spans, func(a, b Slot) int {
		return a.Start.Compare(b.Start)
	})

	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// HasConflict reports whether any active booking of the instructor overlaps
// [proposedStart, proposedEnd).
func HasConflict(instructorID string, bookings []Booking, proposedStart, proposedEnd time.Time) bool {
	for _, b := range bookings {
		if b.InstructorID != instructorID || !b.Active() {
			continue
		}
		if proposedStart.Before(b.EndTime) && b.StartTime.Before(proposedEnd) {
			return true
		}
	}
	return false
}

// CheckSlot returns VerdictUnknown when nothing has been proposed yet.
func CheckSlot(instructorID string, windows []AvailabilityWindow, bookings []Booking, proposed *Slot, loc *time.Location) Verdict {
	if proposed == nil {
		return VerdictUnknown
	}
	if IsAvailable(instructorID, windows, proposed.Start, proposed.End, loc) &&
		!HasConflict(instructorID, bookings, proposed.Start, proposed.End) {
		return VerdictAvailable
	}
	return VerdictUnavailable
}
