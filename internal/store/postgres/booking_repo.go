package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/store"
)

type BookingRepo struct {
	db  *bun.DB
	loc *time.Location
}

// NewBookingRepo returns a repository that validates new bookings against
// availability windows read as wall-clock times in loc.
func NewBookingRepo(db *bun.DB, loc *time.Location) *BookingRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingRepo{db: db, loc: loc}
}

type calendarTx struct {
	tx bun.Tx
}

func (r *BookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.InInstructorTransaction(ctx, b.InstructorID, func(ctx context.Context, tx store.CalendarTx) error {
		if err := ensureBookable(ctx, tx, b, r.loc); err != nil {
			return err
		}
		created, err := tx.CreateBooking(ctx, b)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) Cancel(ctx context.Context, bookingID uuid.UUID, cancelledAt time.Time) (domain.Booking, error) {
	var m domain.Booking
	err := r.db.NewUpdate().
		Model(&m).
		Set("cancelled_at = ?", cancelledAt.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", bookingID).
		Where("cancelled_at IS NULL").
		Returning("*").
		Scan(ctx)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, err
	}

	var existing domain.Booking
	err = r.db.NewSelect().
		Model(&existing).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return existing, nil
}

func (r *BookingRepo) ListActive(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	return selectActiveBookings(ctx, r.db, instructorID, windowStart, windowEnd)
}

func (r *BookingRepo) InInstructorTransaction(ctx context.Context, instructorID string, fn func(ctx context.Context, tx store.CalendarTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInstructorCalendar(ctx, tx, instructorID); err != nil {
			return err
		}
		return fn(ctx, calendarTx{tx: tx})
	})
}

func lockInstructorCalendar(ctx context.Context, tx bun.Tx, instructorID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", instructorID).Exec(ctx)
	return err
}

func selectActiveBookings(ctx context.Context, db bun.IDB, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := db.NewSelect().
		Model(&rows).
		Where("instructor_id = ?", instructorID).
		Where("cancelled_at IS NULL").
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r calendarTx) ListWindowsBetween(ctx context.Context, instructorID string, from, to time.Time) ([]domain.AvailabilityWindow, error) {
	return selectWindowsBetween(ctx, r.tx, instructorID, from, to)
}

func (r calendarTx) ListActiveBookings(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	return selectActiveBookings(ctx, r.tx, instructorID, windowStart, windowEnd)
}

func (r calendarTx) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := domain.Booking{
		ID:           b.ID,
		InstructorID: b.InstructorID,
		ClientID:     b.ClientID,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}

	res, err := r.tx.NewInsert().
		Model(&m).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
			return domain.Booking{}, store.ErrConflict
		}
		return domain.Booking{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected > 0 {
		return m, nil
	}

	// Same id already stored: an idempotent replay when the payload matches.
	var existing domain.Booking
	err = r.tx.NewSelect().
		Model(&existing).
		Where("id = ?", m.ID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	if existing.InstructorID != b.InstructorID ||
		existing.ClientID != b.ClientID ||
		!existing.StartTime.Equal(b.StartTime) ||
		!existing.EndTime.Equal(b.EndTime) {
		return domain.Booking{}, store.ErrIdempotencyConflict
	}
	return existing, nil
}

// ensureBookable rejects a booking that falls outside the instructor's
// availability or overlaps another active booking. A booking already stored
// under the same id is a replay and is left to the insert to resolve.
func ensureBookable(ctx context.Context, tx store.CalendarTx, b domain.Booking, loc *time.Location) error {
	localStart := b.StartTime.In(loc)
	from := domain.Date(localStart.AddDate(0, 0, -1))
	to := domain.Date(localStart)

	windows, err := tx.ListWindowsBetween(ctx, b.InstructorID, from, to)
	if err != nil {
		return err
	}
	if !domain.IsAvailable(b.InstructorID, windows, b.StartTime, b.EndTime, loc) {
		return store.ErrOutsideAvailability
	}

	existing, err := tx.ListActiveBookings(ctx, b.InstructorID, b.StartTime, b.EndTime)
	if err != nil {
		return err
	}
	others := make([]domain.Booking, 0, len(existing))
	for _, e := range existing {
		if b.ID != uuid.Nil && e.ID == b.ID {
			continue
		}
		others = append(others, e)
	}
	if domain.HasConflict(b.InstructorID, others, b.StartTime, b.EndTime) {
		return store.ErrConflict
	}
	return nil
}
