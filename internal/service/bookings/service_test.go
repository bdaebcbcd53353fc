package bookings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/store"
)

type fakeRepo struct {
	createFn     func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	cancelFn     func(ctx context.Context, bookingID uuid.UUID, cancelledAt time.Time) (domain.Booking, error)
	listActiveFn func(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
}

func (f *fakeRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, b)
}

func (f *fakeRepo) Cancel(ctx context.Context, bookingID uuid.UUID, cancelledAt time.Time) (domain.Booking, error) {
	if f.cancelFn == nil {
		panic("Cancel not configured")
	}
	return f.cancelFn(ctx, bookingID, cancelledAt)
}

func (f *fakeRepo) ListActive(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	if f.listActiveFn == nil {
		panic("ListActive not configured")
	}
	return f.listActiveFn(ctx, instructorID, windowStart, windowEnd)
}

type fakeInstructors struct {
	listFn func(ctx context.Context) ([]domain.Instructor, error)
}

func (f *fakeInstructors) ListInstructors(ctx context.Context) ([]domain.Instructor, error) {
	if f.listFn == nil {
		panic("ListInstructors not configured")
	}
	return f.listFn(ctx)
}

type slotCheckerFunc func(ctx context.Context, instructorID string, proposed *domain.Slot) (domain.Verdict, error)

func (f slotCheckerFunc) CheckSlot(ctx context.Context, instructorID string, proposed *domain.Slot) (domain.Verdict, error) {
	return f(ctx, instructorID, proposed)
}

type travelFunc func(ctx context.Context, origin string, instructorIDs []string) (map[string]*int, error)

func (f travelFunc) Lookup(ctx context.Context, origin string, instructorIDs []string) (map[string]*int, error) {
	return f(ctx, origin, instructorIDs)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seconds(v int) *int { return &v }

func TestServiceCreate_ValidationErrorType(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeInstructors{}, nil, nil, Options{}, discardLogger())
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      CreateInput
		wantMsg string
	}{
		{name: "instructor", in: CreateInput{ClientID: "c1", StartTime: start, EndTime: start.Add(time.Hour)}, wantMsg: "instructor_id is required"},
		{name: "client", in: CreateInput{InstructorID: "i1", StartTime: start, EndTime: start.Add(time.Hour)}, wantMsg: "client_id is required"},
		{name: "order", in: CreateInput{InstructorID: "i1", ClientID: "c1", StartTime: start, EndTime: start}, wantMsg: "end_time must be after start_time"},
		{name: "duration", in: CreateInput{InstructorID: "i1", ClientID: "c1", StartTime: start, EndTime: start.Add(5 * time.Hour)}, wantMsg: "duration too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if vErr.Error() != tt.wantMsg {
				t.Fatalf("error = %q, want %q", vErr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestServiceCreate_IdempotencyKeyDeterministicUUID(t *testing.T) {
	var ids []uuid.UUID
	svc := NewService(&fakeRepo{
		createFn: func(ctx context.Context, b domain.Booking) (domain.Booking, error) {
			ids = append(ids, b.ID)
			return b, nil
		},
	}, &fakeInstructors{}, nil, nil, Options{}, discardLogger())

	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	in := CreateInput{InstructorID: "i1", ClientID: "c1", StartTime: start, EndTime: start.Add(time.Hour), IdempotencyKey: "k1"}

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	in.IdempotencyKey = ""
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if len(ids) != 3 {
		t.Fatalf("ids = %v, want 3", ids)
	}
	if ids[0] == uuid.Nil || ids[0] != ids[1] {
		t.Fatalf("expected deterministic non-nil id, got %v and %v", ids[0], ids[1])
	}
	if ids[2] != uuid.Nil {
		t.Fatalf("id without key = %v, want nil so the store assigns one", ids[2])
	}
}

func TestServiceCreate_NormalizesTimesToUTCAndPassesStoreErrors(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	var got domain.Booking
	svc := NewService(&fakeRepo{
		createFn: func(ctx context.Context, b domain.Booking) (domain.Booking, error) {
			got = b
			return domain.Booking{}, store.ErrOutsideAvailability
		},
	}, &fakeInstructors{}, nil, nil, Options{}, discardLogger())

	_, err = svc.Create(context.Background(), CreateInput{
		InstructorID: "i1",
		ClientID:     "c1",
		StartTime:    time.Date(2026, 1, 5, 9, 0, 0, 0, loc),
		EndTime:      time.Date(2026, 1, 5, 10, 0, 0, 0, loc),
	})
	if !errors.Is(err, store.ErrOutsideAvailability) {
		t.Fatalf("err = %v, want %v", err, store.ErrOutsideAvailability)
	}
	if got.StartTime.Location() != time.UTC || got.EndTime.Location() != time.UTC {
		t.Fatalf("expected UTC times, got start=%v end=%v", got.StartTime, got.EndTime)
	}
}

func TestServiceCancel_UsesClock(t *testing.T) {
	now := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)
	id := uuid.MustParse("00000000-0000-0000-0000-000000000401")

	var gotAt time.Time
	svc := NewService(&fakeRepo{
		cancelFn: func(ctx context.Context, bookingID uuid.UUID, cancelledAt time.Time) (domain.Booking, error) {
			gotAt = cancelledAt
			return domain.Booking{ID: bookingID, CancelledAt: &cancelledAt}, nil
		},
	}, &fakeInstructors{}, nil, nil, Options{}, discardLogger())
	svc.now = func() time.Time { return now }

	if _, err := svc.Cancel(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil id")
	}
	b, err := svc.Cancel(context.Background(), id)
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if !gotAt.Equal(now) {
		t.Fatalf("cancelled_at = %v, want %v", gotAt, now)
	}
	if b.Active() {
		t.Fatalf("cancelled booking still active")
	}
}

func TestServiceList_ValidatesWindow(t *testing.T) {
	svc := NewService(&fakeRepo{
		listActiveFn: func(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
			return []domain.Booking{{InstructorID: instructorID}}, nil
		},
	}, &fakeInstructors{}, nil, nil, Options{}, discardLogger())

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if _, err := svc.List(context.Background(), "i1", start, start); err == nil {
		t.Fatalf("expected error for empty window")
	}
	got, err := svc.List(context.Background(), "i1", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestRankInstructors_OrdersByVerdictTravelAndName(t *testing.T) {
	instructors := []domain.Instructor{
		{ID: "a", FirstName: "Alice", LastName: "Zed"},
		{ID: "b", FirstName: "Bob", LastName: "Young"},
		{ID: "c", FirstName: "Cara", LastName: "Xu"},
		{ID: "d", FirstName: "Dan", LastName: "Wu"},
	}
	verdicts := map[string]domain.Verdict{
		"a": domain.VerdictAvailable,
		"b": domain.VerdictAvailable,
		"c": domain.VerdictUnavailable,
		"d": domain.VerdictUnknown,
	}
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	proposed := &domain.Slot{Start: start, End: start.Add(time.Hour)}

	var mu sync.Mutex
	checked := map[string]bool{}
	svc := NewService(&fakeRepo{}, &fakeInstructors{
		listFn: func(ctx context.Context) ([]domain.Instructor, error) { return instructors, nil },
	}, slotCheckerFunc(func(ctx context.Context, instructorID string, p *domain.Slot) (domain.Verdict, error) {
		if p != proposed {
			t.Errorf("proposed slot not passed through")
		}
		mu.Lock()
		checked[instructorID] = true
		mu.Unlock()
		return verdicts[instructorID], nil
	}), travelFunc(func(ctx context.Context, origin string, ids []string) (map[string]*int, error) {
		if origin != "home" {
			t.Errorf("origin = %q, want %q", origin, "home")
		}
		return map[string]*int{"a": seconds(900), "b": seconds(300), "c": nil}, nil
	}), Options{RankingConcurrency: 2}, discardLogger())

	got, err := svc.RankInstructors(context.Background(), RankInput{Origin: "home", Proposed: proposed})
	if err != nil {
		t.Fatalf("RankInstructors error: %v", err)
	}
	if len(checked) != 4 {
		t.Fatalf("checked = %v, want every instructor", checked)
	}

	wantIDs := []string{"b", "a", "c", "d"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].Instructor.ID != id {
			t.Fatalf("rank[%d] = %s, want %s", i, got[i].Instructor.ID, id)
		}
		if got[i].Verdict != verdicts[id] {
			t.Fatalf("rank[%d] verdict = %q, want %q", i, got[i].Verdict, verdicts[id])
		}
	}
	if got[0].TravelSeconds == nil || *got[0].TravelSeconds != 300 {
		t.Fatalf("travel for b = %v, want 300", got[0].TravelSeconds)
	}
	if got[3].TravelSeconds != nil {
		t.Fatalf("travel for d = %v, want unknown", *got[3].TravelSeconds)
	}
}

func TestRankInstructors_TravelFailureLeavesTimesUnknown(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeInstructors{
		listFn: func(ctx context.Context) ([]domain.Instructor, error) {
			return []domain.Instructor{
				{ID: "b", FirstName: "Bea", LastName: "B"},
				{ID: "a", FirstName: "Abe", LastName: "A"},
			}, nil
		},
	}, slotCheckerFunc(func(ctx context.Context, instructorID string, p *domain.Slot) (domain.Verdict, error) {
		return domain.VerdictUnknown, nil
	}), travelFunc(func(ctx context.Context, origin string, ids []string) (map[string]*int, error) {
		return nil, errors.New("redis down")
	}), Options{}, discardLogger())

	got, err := svc.RankInstructors(context.Background(), RankInput{Origin: "home"})
	if err != nil {
		t.Fatalf("RankInstructors error: %v", err)
	}
	if got[0].Instructor.ID != "a" || got[1].Instructor.ID != "b" {
		t.Fatalf("order = %s,%s, want a,b", got[0].Instructor.ID, got[1].Instructor.ID)
	}
}

func TestRankInstructors_CheckFailureAbortsAndBoundsConcurrency(t *testing.T) {
	boom := errors.New("boom")
	instructors := make([]domain.Instructor, 10)
	for i := range instructors {
		instructors[i] = domain.Instructor{ID: string(rune('a' + i))}
	}

	var inFlight, peak atomic.Int32
	svc := NewService(&fakeRepo{}, &fakeInstructors{
		listFn: func(ctx context.Context) ([]domain.Instructor, error) { return instructors, nil },
	}, slotCheckerFunc(func(ctx context.Context, instructorID string, p *domain.Slot) (domain.Verdict, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		if instructorID == "e" {
			return "", boom
		}
		return domain.VerdictAvailable, nil
	}), nil, Options{RankingConcurrency: 3}, discardLogger())

	_, err := svc.RankInstructors(context.Background(), RankInput{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if peak.Load() > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", peak.Load())
	}
}
