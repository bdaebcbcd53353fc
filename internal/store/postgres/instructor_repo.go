package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
)

type InstructorRepo struct {
	db *bun.DB
}

func NewInstructorRepo(db *bun.DB) *InstructorRepo {
	return &InstructorRepo{db: db}
}

func (r *InstructorRepo) ListInstructors(ctx context.Context) ([]domain.Instructor, error) {
	var rows []domain.Instructor
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("last_name ASC, first_name ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
