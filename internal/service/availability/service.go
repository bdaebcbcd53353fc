package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/metrics"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/store"
)

const defaultMaxRangeDays = 62

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Options struct {
	// Location is the zone window times are written in. Defaults to UTC.
	Location     *time.Location
	MaxRangeDays int
}

type Service struct {
	windows      store.AvailabilityRepository
	bookings     store.BookingRepository
	loc          *time.Location
	maxRangeDays int
	log          *slog.Logger
}

func NewService(windows store.AvailabilityRepository, bookings store.BookingRepository, opts Options, log *slog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = defaultMaxRangeDays
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		windows:      windows,
		bookings:     bookings,
		loc:          opts.Location,
		maxRangeDays: opts.MaxRangeDays,
		log:          log.With(slog.String("component", "availability")),
	}
}

type WindowInput struct {
	InstructorID string
	// StartDate and EndDate are inclusive; only the calendar date is used.
	StartDate  *time.Time
	EndDate    *time.Time
	DayOfWeek  *int
	TimeRanges string
}

func (s *Service) CreateWindow(ctx context.Context, in WindowInput) (domain.AvailabilityWindow, error) {
	w, err := buildWindow(in)
	if err != nil {
		return domain.AvailabilityWindow{}, err
	}
	return s.windows.CreateWindow(ctx, w)
}

func (s *Service) UpdateWindow(ctx context.Context, windowID uuid.UUID, in WindowInput) (domain.AvailabilityWindow, error) {
	if windowID == uuid.Nil {
		return domain.AvailabilityWindow{}, validationError("window_id is required")
	}
	w, err := buildWindow(in)
	if err != nil {
		return domain.AvailabilityWindow{}, err
	}
	w.ID = windowID
	return s.windows.UpdateWindow(ctx, w)
}

func (s *Service) DeleteWindow(ctx context.Context, instructorID string, windowID uuid.UUID) error {
	if strings.TrimSpace(instructorID) == "" {
		return validationError("instructor_id is required")
	}
	if windowID == uuid.Nil {
		return validationError("window_id is required")
	}
	return s.windows.DeleteWindow(ctx, instructorID, windowID)
}

func (s *Service) ListWindows(ctx context.Context, instructorID string) ([]domain.AvailabilityWindow, error) {
	if strings.TrimSpace(instructorID) == "" {
		return nil, validationError("instructor_id is required")
	}
	return s.windows.ListWindows(ctx, instructorID)
}

func buildWindow(in WindowInput) (domain.AvailabilityWindow, error) {
	instructorID := strings.TrimSpace(in.InstructorID)
	if instructorID == "" {
		return domain.AvailabilityWindow{}, validationError("instructor_id is required")
	}

	ranges, err := domain.ParseTimeRanges(in.TimeRanges)
	if err != nil {
		var parseErr *domain.ParseError
		if errors.As(err, &parseErr) {
			return domain.AvailabilityWindow{}, validationError(fmt.Sprintf("invalid time_ranges %q: %s", parseErr.Input, parseErr.Reason))
		}
		return domain.AvailabilityWindow{}, validationError("invalid time_ranges")
	}

	w := domain.AvailabilityWindow{
		InstructorID: instructorID,
		TimeRanges:   domain.FormatTimeRanges(ranges),
	}

	if in.DayOfWeek != nil {
		if *in.DayOfWeek < 0 || *in.DayOfWeek > 6 {
			return domain.AvailabilityWindow{}, validationError("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
		}
		dow := int16(*in.DayOfWeek)
		w.DayOfWeek = &dow
	}
	if in.StartDate != nil {
		d := domain.Date(*in.StartDate)
		w.StartDate = &d
	}
	if in.EndDate != nil {
		d := domain.Date(*in.EndDate)
		w.EndDate = &d
	}
	if !w.ValidSpan() {
		return domain.AvailabilityWindow{}, validationError("end_date must not be before start_date")
	}
	return w, nil
}

type FreeTime struct {
	Free []domain.FreeInterval
	// Warnings describe windows that were left out because their stored
	// data could not be used.
	Warnings []string
}

// FreeTime returns the instructor's bookable time on every calendar day from
// the date of from through the date of to.
func (s *Service) FreeTime(ctx context.Context, instructorID string, from, to time.Time) (FreeTime, error) {
	instructorID = strings.TrimSpace(instructorID)
	if instructorID == "" {
		return FreeTime{}, validationError("instructor_id is required")
	}

	first := s.localMidnight(from)
	last := s.localMidnight(to)
	if last.Before(first) {
		return FreeTime{}, validationError("to must not be before from")
	}
	if days := calendarDays(first, last) + 1; days > s.maxRangeDays {
		return FreeTime{}, validationError(fmt.Sprintf("range covers %d days, at most %d allowed", days, s.maxRangeDays))
	}

	windows, err := s.windows.ListWindowsBetween(ctx, instructorID, domain.Date(first), domain.Date(last))
	if err != nil {
		return FreeTime{}, err
	}
	// Wrapping ranges spill into the day after the range.
	bookings, err := s.bookings.ListActive(ctx, instructorID, first, first.AddDate(0, 0, calendarDays(first, last)+2))
	if err != nil {
		return FreeTime{}, err
	}

	m := domain.Materialize(windows, bookings, first, last, s.loc)
	metrics.IncFreeTimeQuery()

	out := FreeTime{Free: m.Free}
	for _, sk := range m.Skipped {
		s.log.WarnContext(ctx, "availability window skipped",
			slog.String("window_id", sk.WindowID.String()),
			slog.String("instructor_id", sk.InstructorID),
			slog.String("reason", metrics.SkipReason(sk.Err)),
			slog.Any("err", sk.Err),
		)
		metrics.IncWindowSkipped(sk.Err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("window %s skipped: %v", sk.WindowID, sk.Err))
	}
	return out, nil
}

// CheckSlot reports whether the instructor can take a lesson at proposed.
// Without a proposal the verdict is unknown and nothing is loaded.
func (s *Service) CheckSlot(ctx context.Context, instructorID string, proposed *domain.Slot) (domain.Verdict, error) {
	instructorID = strings.TrimSpace(instructorID)
	if instructorID == "" {
		return "", validationError("instructor_id is required")
	}
	if proposed == nil {
		metrics.IncSlotCheck(domain.VerdictUnknown)
		return domain.VerdictUnknown, nil
	}
	if !proposed.End.After(proposed.Start) {
		return "", validationError("end_time must be after start_time")
	}

	day := s.localMidnight(proposed.Start)
	windows, err := s.windows.ListWindowsBetween(ctx, instructorID, domain.Date(day.AddDate(0, 0, -1)), domain.Date(day))
	if err != nil {
		return "", err
	}
	bookings, err := s.bookings.ListActive(ctx, instructorID, proposed.Start, proposed.End)
	if err != nil {
		return "", err
	}

	v := domain.CheckSlot(instructorID, windows, bookings, proposed, s.loc)
	metrics.IncSlotCheck(v)
	return v, nil
}

func (s *Service) localMidnight(t time.Time) time.Time {
	l := t.In(s.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, s.loc)
}

// calendarDays counts dates, not 24h spans, between two local midnights.
func calendarDays(first, last time.Time) int {
	a := domain.Date(first)
	b := domain.Date(last)
	return int(b.Sub(a).Hours() / 24)
}
