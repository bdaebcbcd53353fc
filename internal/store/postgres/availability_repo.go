package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
	"github.com/anthonybtedesco/happyswims-app-sub000/internal/store"
)

const dateLayout = "2006-01-02"

type AvailabilityRepo struct {
	db *bun.DB
}

func NewAvailabilityRepo(db *bun.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) CreateWindow(ctx context.Context, w domain.AvailabilityWindow) (domain.AvailabilityWindow, error) {
	m := w
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.AvailabilityWindow{}, err
	}
	return m, nil
}

func (r *AvailabilityRepo) UpdateWindow(ctx context.Context, w domain.AvailabilityWindow) (domain.AvailabilityWindow, error) {
	m := w
	err := r.db.NewUpdate().
		Model(&m).
		Column("start_date", "end_date", "day_of_week", "time_ranges", "updated_at").
		Where("id = ?", w.ID).
		Where("instructor_id = ?", w.InstructorID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AvailabilityWindow{}, store.ErrNotFound
		}
		return domain.AvailabilityWindow{}, err
	}
	return m, nil
}

func (r *AvailabilityRepo) DeleteWindow(ctx context.Context, instructorID string, windowID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.AvailabilityWindow)(nil)).
		Where("instructor_id = ?", instructorID).
		Where("id = ?", windowID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AvailabilityRepo) ListWindows(ctx context.Context, instructorID string) ([]domain.AvailabilityWindow, error) {
	var rows []domain.AvailabilityWindow
	err := r.db.NewSelect().
		Model(&rows).
		Where("instructor_id = ?", instructorID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AvailabilityRepo) ListWindowsBetween(ctx context.Context, instructorID string, from, to time.Time) ([]domain.AvailabilityWindow, error) {
	return selectWindowsBetween(ctx, r.db, instructorID, from, to)
}

func selectWindowsBetween(ctx context.Context, db bun.IDB, instructorID string, from, to time.Time) ([]domain.AvailabilityWindow, error) {
	var rows []domain.AvailabilityWindow
	err := db.NewSelect().
		Model(&rows).
		Where("instructor_id = ?", instructorID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("start_date IS NULL").WhereOr("start_date <= ?::date", to.Format(dateLayout))
		}).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("end_date IS NULL").WhereOr("end_date >= ?::date", from.Format(dateLayout))
		}).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
