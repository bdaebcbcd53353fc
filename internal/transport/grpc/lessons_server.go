package grpc

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/service/availability"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/service/bookings"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/store"
)

type availabilityService interface {
	CreateWindow(ctx context.Context, in availability.WindowInput) (domain.AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, windowID uuid.UUID, in availability.WindowInput) (domain.AvailabilityWindow, error)
	DeleteWindow(ctx context.Context, instructorID string, windowID uuid.UUID) error
	ListWindows(ctx context.Context, instructorID string) ([]domain.AvailabilityWindow, error)
	FreeTime(ctx context.Context, instructorID string, from, to time.Time) (availability.FreeTime, error)
	CheckSlot(ctx context.Context, instructorID string, proposed *domain.Slot) (domain.Verdict, error)
}

type bookingsService interface {
	Create(ctx context.Context, in bookings.CreateInput) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	List(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	RankInstructors(ctx context.Context, in bookings.RankInput) ([]bookings.RankedInstructor, error)
}

type travelTimeStore interface {
	Store(ctx context.Context, origin, instructorID string, seconds int) error
}

type LessonsServer struct {
	availability availabilityService
	bookings     bookingsService
	travel       travelTimeStore
	validate     *validator.Validate
	log          *slog.Logger
}

var _ LessonsServiceServer = (*LessonsServer)(nil)

func NewLessonsServer(avail availabilityService, book bookingsService, travel travelTimeStore, log *slog.Logger) *LessonsServer {
	if log == nil {
		log = slog.Default()
	}
	return &LessonsServer{
		availability: avail,
		bookings:     book,
		travel:       travel,
		validate:     newValidator(),
		log:          log.With(slog.String("component", "grpc.lessons")),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkRequest rejects nil and structurally invalid requests.
func (s *LessonsServer) checkRequest(log *slog.Logger, req any, isNil bool) error {
	if isNil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return status.Error(codes.InvalidArgument, "request is required")
	}
	if err := s.validate.Struct(req); err != nil {
		msg := formatValidationError(err)
		log.Warn("invalid request", slog.String("reason", "validation"), slog.String("detail", msg))
		return status.Error(codes.InvalidArgument, msg)
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "uuid":
			parts = append(parts, fe.Field()+" must be a UUID")
		case "datetime":
			parts = append(parts, fe.Field()+" must be a date in "+fe.Param()+" form")
		case "min", "max":
			parts = append(parts, fe.Field()+" must be "+fe.Tag()+" "+fe.Param())
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}

// statusFromError maps service and store errors to gRPC status codes.
func statusFromError(log *slog.Logger, op string, err error, attrs ...any) error {
	var availErr *availability.ValidationError
	var bookErr *bookings.ValidationError
	switch {
	case errors.As(err, &availErr), errors.As(err, &bookErr):
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		log.Info(op+" not found", attrs...)
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		log.Info(op+" conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "The instructor already has a lesson during that time. Pick a different slot.")
	case errors.Is(err, store.ErrOutsideAvailability):
		log.Info(op+" outside availability", attrs...)
		return status.Error(codes.FailedPrecondition, "The instructor is not available at that time. Pick a different slot.")
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info(op+" idempotency conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "This request key was already used for a different booking. Try again.")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(op+" timed out", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	default:
		log.Error(op+" failed", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.Internal, "internal error")
	}
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func (s *LessonsServer) CreateWindow(ctx context.Context, req *CreateWindowRequest) (*WindowResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateWindow"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}

	in, err := windowInput(req.WindowFields)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_date"), slog.String("instructor_id", req.InstructorID))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	w, err := s.availability.CreateWindow(ctx, in)
	if err != nil {
		return nil, statusFromError(log, "window create", err, slog.String("instructor_id", req.InstructorID))
	}

	log.Info("window created",
		slog.String("window_id", w.ID.String()),
		slog.String("instructor_id", w.InstructorID),
		slog.String("time_ranges", w.TimeRanges),
	)
	return &WindowResponse{Window: toWindow(w)}, nil
}

func (s *LessonsServer) UpdateWindow(ctx context.Context, req *UpdateWindowRequest) (*WindowResponse, error) {
	log := s.log.With(slog.String("rpc", "UpdateWindow"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(req.WindowID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "window_id must be a UUID")
	}
	in, err := windowInput(req.WindowFields)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_date"), slog.String("window_id", id.String()))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	w, err := s.availability.UpdateWindow(ctx, id, in)
	if err != nil {
		return nil, statusFromError(log, "window update", err, slog.String("window_id", id.String()), slog.String("instructor_id", req.InstructorID))
	}

	log.Info("window updated", slog.String("window_id", w.ID.String()), slog.String("instructor_id", w.InstructorID))
	return &WindowResponse{Window: toWindow(w)}, nil
}

func (s *LessonsServer) DeleteWindow(ctx context.Context, req *DeleteWindowRequest) (*DeleteWindowResponse, error) {
	log := s.log.With(slog.String("rpc", "DeleteWindow"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(req.WindowID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "window_id must be a UUID")
	}
	if err := s.availability.DeleteWindow(ctx, req.InstructorID, id); err != nil {
		return nil, statusFromError(log, "window delete", err, slog.String("window_id", id.String()), slog.String("instructor_id", req.InstructorID))
	}

	log.Info("window deleted", slog.String("window_id", id.String()), slog.String("instructor_id", req.InstructorID))
	return &DeleteWindowResponse{}, nil
}

func (s *LessonsServer) ListWindows(ctx context.Context, req *ListWindowsRequest) (*ListWindowsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListWindows"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}

	windows, err := s.availability.ListWindows(ctx, req.InstructorID)
	if err != nil {
		return nil, statusFromError(log, "windows list", err, slog.String("instructor_id", req.InstructorID))
	}

	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		out = append(out, toWindow(w))
	}
	log.Debug("windows listed", slog.String("instructor_id", req.InstructorID), slog.Int("count", len(out)))
	return &ListWindowsResponse{Windows: out}, nil
}

func (s *LessonsServer) FreeTime(ctx context.Context, req *FreeTimeRequest) (*FreeTimeResponse, error) {
	log := s.log.With(slog.String("rpc", "FreeTime"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}
	if req.From.IsZero() || req.To.IsZero() {
		log.Warn("invalid request", slog.String("reason", "missing_range"), slog.String("instructor_id", req.InstructorID))
		return nil, status.Error(codes.InvalidArgument, "from and to are required")
	}

	res, err := s.availability.FreeTime(ctx, req.InstructorID, req.From, req.To)
	if err != nil {
		return nil, statusFromError(log, "free time", err, slog.String("instructor_id", req.InstructorID))
	}

	out := make([]FreeInterval, 0, len(res.Free))
	for _, f := range res.Free {
		out = append(out, FreeInterval{
			InstructorID: f.InstructorID,
			Date:         f.Date.Format(dateLayout),
			StartTime:    f.Start.UTC(),
			EndTime:      f.End.UTC(),
		})
	}

	log.Debug("free time listed",
		slog.String("instructor_id", req.InstructorID),
		slog.Int("count", len(out)),
		slog.Int("warnings", len(res.Warnings)),
		slog.Time("from", req.From),
		slog.Time("to", req.To),
	)
	return &FreeTimeResponse{Intervals: out, Warnings: res.Warnings}, nil
}

func (s *LessonsServer) CheckSlot(ctx context.Context, req *CheckSlotRequest) (*CheckSlotResponse, error) {
	log := s.log.With(slog.String("rpc", "CheckSlot"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}

	proposed, err := proposedSlot(req.StartTime, req.EndTime)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "partial_slot"), slog.String("instructor_id", req.InstructorID))
		return nil, err
	}

	v, err := s.availability.CheckSlot(ctx, req.InstructorID, proposed)
	if err != nil {
		return nil, statusFromError(log, "slot check", err, slog.String("instructor_id", req.InstructorID))
	}

	log.Debug("slot checked", slog.String("instructor_id", req.InstructorID), slog.String("verdict", string(v)))
	return &CheckSlotResponse{Verdict: string(v)}, nil
}

func (s *LessonsServer) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateBooking"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		log.Warn("invalid request", slog.String("reason", "missing_times"), slog.String("instructor_id", req.InstructorID))
		return nil, status.Error(codes.InvalidArgument, "start_time and end_time are required")
	}

	b, err := s.bookings.Create(ctx, bookings.CreateInput{
		InstructorID:   req.InstructorID,
		ClientID:       req.ClientID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, statusFromError(log, "booking create", err,
			slog.String("instructor_id", req.InstructorID),
			slog.String("client_id", req.ClientID),
			slog.Time("start_time", req.StartTime),
			slog.Time("end_time", req.EndTime),
		)
	}

	log.Info("booking created",
		slog.String("booking_id", b.ID.String()),
		slog.String("instructor_id", b.InstructorID),
		slog.String("client_id", b.ClientID),
		slog.Time("start_time", b.StartTime),
		slog.Time("end_time", b.EndTime),
	)
	return &BookingResponse{Booking: toBooking(b)}, nil
}

func (s *LessonsServer) CancelBooking(ctx context.Context, req *CancelBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "CancelBooking"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "booking_id must be a UUID")
	}
	b, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, statusFromError(log, "booking cancel", err, slog.String("booking_id", id.String()))
	}

	log.Info("booking cancelled", slog.String("booking_id", id.String()), slog.String("instructor_id", b.InstructorID))
	return &BookingResponse{Booking: toBooking(b)}, nil
}

func (s *LessonsServer) ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListBookings"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}
	if req.WindowStart.IsZero() || req.WindowEnd.IsZero() {
		log.Warn("invalid request", slog.String("reason", "missing_window"), slog.String("instructor_id", req.InstructorID))
		return nil, status.Error(codes.InvalidArgument, "window_start and window_end are required")
	}

	list, err := s.bookings.List(ctx, req.InstructorID, req.WindowStart, req.WindowEnd)
	if err != nil {
		return nil, statusFromError(log, "bookings list", err, slog.String("instructor_id", req.InstructorID))
	}

	out := make([]Booking, 0, len(list))
	for _, b := range list {
		out = append(out, toBooking(b))
	}
	log.Debug("bookings listed", slog.String("instructor_id", req.InstructorID), slog.Int("count", len(out)))
	return &ListBookingsResponse{Bookings: out}, nil
}

func (s *LessonsServer) RankInstructors(ctx context.Context, req *RankInstructorsRequest) (*RankInstructorsResponse, error) {
	log := s.log.With(slog.String("rpc", "RankInstructors"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}

	proposed, err := proposedSlot(req.StartTime, req.EndTime)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "partial_slot"))
		return nil, err
	}

	ranked, err := s.bookings.RankInstructors(ctx, bookings.RankInput{Origin: req.Origin, Proposed: proposed})
	if err != nil {
		return nil, statusFromError(log, "instructor ranking", err)
	}

	out := make([]RankedInstructor, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, RankedInstructor{
			ID:            r.Instructor.ID,
			FirstName:     r.Instructor.FirstName,
			LastName:      r.Instructor.LastName,
			DisplayName:   r.Instructor.DisplayName(),
			Verdict:       string(r.Verdict),
			TravelSeconds: r.TravelSeconds,
		})
	}
	log.Debug("instructors ranked", slog.Int("count", len(out)), slog.Bool("proposed", proposed != nil))
	return &RankInstructorsResponse{Instructors: out}, nil
}

func (s *LessonsServer) RecordTravelTime(ctx context.Context, req *RecordTravelTimeRequest) (*RecordTravelTimeResponse, error) {
	log := s.log.With(slog.String("rpc", "RecordTravelTime"))
	if err := s.checkRequest(log, req, req == nil); err != nil {
		return nil, err
	}
	if s.travel == nil {
		return nil, status.Error(codes.Unavailable, "travel times are not configured")
	}

	if err := s.travel.Store(ctx, req.Origin, req.InstructorID, req.Seconds); err != nil {
		return nil, statusFromError(log, "travel time store", err, slog.String("instructor_id", req.InstructorID))
	}
	log.Debug("travel time recorded", slog.String("instructor_id", req.InstructorID), slog.Int("seconds", req.Seconds))
	return &RecordTravelTimeResponse{}, nil
}

// proposedSlot treats a request with neither time as "nothing proposed yet".
func proposedSlot(start, end *time.Time) (*domain.Slot, error) {
	switch {
	case start == nil && end == nil:
		return nil, nil
	case start == nil || end == nil:
		return nil, status.Error(codes.InvalidArgument, "start_time and end_time must be given together")
	}
	return &domain.Slot{Start: *start, End: *end}, nil
}

func windowInput(f WindowFields) (availability.WindowInput, error) {
	in := availability.WindowInput{
		InstructorID: f.InstructorID,
		DayOfWeek:    f.DayOfWeek,
		TimeRanges:   f.TimeRanges,
	}
	var err error
	if in.StartDate, err = parseDate(f.StartDate); err != nil {
		return availability.WindowInput{}, errors.New("start_date must be a date in 2006-01-02 form")
	}
	if in.EndDate, err = parseDate(f.EndDate); err != nil {
		return availability.WindowInput{}, errors.New("end_date must be a date in 2006-01-02 form")
	}
	return in, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func toWindow(w domain.AvailabilityWindow) Window {
	var dow *int
	if w.DayOfWeek != nil {
		d := int(*w.DayOfWeek)
		dow = &d
	}
	return Window{
		ID:           w.ID.String(),
		InstructorID: w.InstructorID,
		Kind:         string(w.Kind()),
		StartDate:    formatDate(w.StartDate),
		EndDate:      formatDate(w.EndDate),
		DayOfWeek:    dow,
		TimeRanges:   w.TimeRanges,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func toBooking(b domain.Booking) Booking {
	return Booking{
		ID:           b.ID.String(),
		InstructorID: b.InstructorID,
		ClientID:     b.ClientID,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		CancelledAt:  b.CancelledAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
