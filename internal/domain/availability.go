package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type WindowKind string

const (
	WindowKindWeekly    WindowKind = "weekly"
	WindowKindDateRange WindowKind = "date_range"
)

var ErrInvalidDateSpan = errors.New("end_date is before start_date")

// AvailabilityWindow is an instructor's recurring statement of when they can
// teach. StartDate and EndDate are inclusive calendar dates; only their
// year/month/day are significant. A nil bound is open.
type AvailabilityWindow struct {
	bun.BaseModel `bun:"table:availability_windows"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid"`
	InstructorID string     `bun:"instructor_id,notnull"`
	StartDate    *time.Time `bun:"start_date,type:date"`
	EndDate      *time.Time `bun:"end_date,type:date"`
	DayOfWeek    *int16     `bun:"day_of_week"`
	TimeRanges   string     `bun:"time_ranges,notnull"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull"`
}

func (w *AvailabilityWindow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if w.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			w.ID = id
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = now
		}
		if w.UpdatedAt.IsZero() {
			w.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		w.UpdatedAt = now
	}
	return nil
}

func (w AvailabilityWindow) Kind() WindowKind {
	if w.DayOfWeek != nil {
		return WindowKindWeekly
	}
	return WindowKindDateRange
}

// ValidSpan reports whether the date bounds are ordered.
func (w AvailabilityWindow) ValidSpan() bool {
	if w.StartDate == nil || w.EndDate == nil {
		return true
	}
	return !civilDate(*w.EndDate).Before(civilDate(*w.StartDate))
}

// AppliesOn reports whether the window recurs on the calendar date of day.
// Both the date span and the weekday filter must hold.
func (w AvailabilityWindow) AppliesOn(day time.Time) bool {
	if !w.ValidSpan() {
		return false
	}
	d := civilDate(day)
	if w.StartDate != nil && d.Before(civilDate(*w.StartDate)) {
		return false
	}
	if w.EndDate != nil && d.After(civilDate(*w.EndDate)) {
		return false
	}
	if w.DayOfWeek != nil && time.Weekday(*w.DayOfWeek) != day.Weekday() {
		return false
	}
	return true
}

// civilDate keeps only the calendar fields of t, as they read in t's own location.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date returns the calendar date of t as a UTC midnight value, suitable for
// a date-only column.
func Date(t time.Time) time.Time {
	return civilDate(t)
}

// startOfDay returns local midnight of the date that t falls on in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// atMinute anchors a minute-of-day to the wall clock of day. Minute 1440 is
// the next midnight.
func atMinute(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minute, 0, 0, day.Location())
}

func nextDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, day.Location())
}
