package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid"`
	InstructorID string     `bun:"instructor_id,notnull"`
	ClientID     string     `bun:"client_id,notnull"`
	StartTime    time.Time  `bun:"start_time,notnull"`
	EndTime      time.Time  `bun:"end_time,notnull"`
	CancelledAt  *time.Time `bun:"cancelled_at"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull"`
}

// Active reports whether the booking still occupies the instructor's time.
func (b Booking) Active() bool {
	return b.CancelledAt == nil && b.StartTime.Before(b.EndTime)
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}
