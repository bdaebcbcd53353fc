package store

import (
	"context"
	"time"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
)

// CalendarTx is the view of one instructor's calendar inside a transaction
// that holds that instructor's lock.
type CalendarTx interface {
	ListWindowsBetween(ctx context.Context, instructorID string, from, to time.Time) ([]domain.AvailabilityWindow, error)
	ListActiveBookings(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
}
