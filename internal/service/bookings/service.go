package bookings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/metrics"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/store"
)

const (
	maxLessonDuration  = 4 * time.Hour
	defaultConcurrency = 8
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// SlotChecker yields an instructor's verdict for a proposed lesson time.
type SlotChecker interface {
	CheckSlot(ctx context.Context, instructorID string, proposed *domain.Slot) (domain.Verdict, error)
}

// TravelTimes looks up travel seconds from a client's origin; unknown
// entries are nil.
type TravelTimes interface {
	Lookup(ctx context.Context, origin string, instructorIDs []string) (map[string]*int, error)
}

type Options struct {
	// RankingConcurrency bounds the slot checks run at once while ranking.
	RankingConcurrency int
}

type Service struct {
	repo        store.BookingRepository
	instructors store.InstructorRepository
	slots       SlotChecker
	travel      TravelTimes
	concurrency int
	log         *slog.Logger
	now         func() time.Time
}

func NewService(repo store.BookingRepository, instructors store.InstructorRepository, slots SlotChecker, travel TravelTimes, opts Options, log *slog.Logger) *Service {
	if opts.RankingConcurrency <= 0 {
		opts.RankingConcurrency = defaultConcurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:        repo,
		instructors: instructors,
		slots:       slots,
		travel:      travel,
		concurrency: opts.RankingConcurrency,
		log:         log.With(slog.String("component", "bookings")),
		now:         time.Now,
	}
}

type CreateInput struct {
	InstructorID   string
	ClientID       string
	StartTime      time.Time
	EndTime        time.Time
	IdempotencyKey string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Booking, error) {
	instructorID := strings.TrimSpace(in.InstructorID)
	if instructorID == "" {
		return domain.Booking{}, validationError("instructor_id is required")
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return domain.Booking{}, validationError("client_id is required")
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if !end.After(start) {
		return domain.Booking{}, validationError("end_time must be after start_time")
	}
	if end.Sub(start) > maxLessonDuration {
		return domain.Booking{}, validationError("duration too long")
	}

	b := domain.Booking{
		InstructorID: instructorID,
		ClientID:     clientID,
		StartTime:    start,
		EndTime:      end,
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Booking{}, validationError("idempotency_key too long")
		}
		b.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("happyswims:create_booking:"+clientID+":"+key))
	}

	created, err := s.repo.Create(ctx, b)
	metrics.IncBookingCreated(createStatus(err))
	if err != nil {
		return domain.Booking{}, err
	}
	return created, nil
}

func createStatus(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	case errors.Is(err, store.ErrOutsideAvailability):
		return "outside_availability"
	case errors.Is(err, store.ErrIdempotencyConflict):
		return "idempotency_conflict"
	default:
		return "error"
	}
}

// Cancel marks the booking cancelled. Cancelling twice returns the booking
// as it was first cancelled.
func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	if bookingID == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}
	b, err := s.repo.Cancel(ctx, bookingID, s.now().UTC())
	if err != nil {
		return domain.Booking{}, err
	}
	metrics.IncBookingCancelled()
	return b, nil
}

func (s *Service) List(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	if strings.TrimSpace(instructorID) == "" {
		return nil, validationError("instructor_id is required")
	}

	start := windowStart.UTC()
	end := windowEnd.UTC()
	if !end.After(start) {
		return nil, validationError("window_end must be after window_start")
	}

	return s.repo.ListActive(ctx, instructorID, start, end)
}

type RankInput struct {
	// Origin is where the client travels from; empty leaves every travel
	// time unknown.
	Origin   string
	Proposed *domain.Slot
}

type RankedInstructor struct {
	Instructor    domain.Instructor
	Verdict       domain.Verdict
	TravelSeconds *int
}

// RankInstructors orders every instructor for the booking picker.
func (s *Service) RankInstructors(ctx context.Context, in RankInput) ([]RankedInstructor, error) {
	if in.Proposed != nil && !in.Proposed.End.After(in.Proposed.Start) {
		return nil, validationError("end_time must be after start_time")
	}

	instructors, err := s.instructors.ListInstructors(ctx)
	if err != nil {
		return nil, err
	}
	if len(instructors) == 0 {
		return nil, nil
	}

	results := make([]domain.Verdict, len(instructors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, inst := range instructors {
		g.Go(func() error {
			v, err := s.slots.CheckSlot(gctx, inst.ID, in.Proposed)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	verdicts := make(map[string]domain.Verdict, len(instructors))
	ids := make([]string, len(instructors))
	for i, inst := range instructors {
		verdicts[inst.ID] = results[i]
		ids[i] = inst.ID
	}

	var travel map[string]*int
	if s.travel != nil {
		travel, err = s.travel.Lookup(ctx, in.Origin, ids)
		if err != nil {
			s.log.WarnContext(ctx, "travel time lookup failed", slog.Any("err", err))
		}
	}

	ranked := domain.Rank(instructors, verdicts, travel)
	out := make([]RankedInstructor, len(ranked))
	for i, inst := range ranked {
		out[i] = RankedInstructor{
			Instructor:    inst,
			Verdict:       verdicts[inst.ID],
			TravelSeconds: travel[inst.ID],
		}
	}
	return out, nil
}
