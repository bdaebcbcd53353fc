package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
)

type AvailabilityRepository interface {
	CreateWindow(ctx context.Context, w domain.AvailabilityWindow) (domain.AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, w domain.AvailabilityWindow) (domain.AvailabilityWindow, error)
	DeleteWindow(ctx context.Context, instructorID string, windowID uuid.UUID) error
	ListWindows(ctx context.Context, instructorID string) ([]domain.AvailabilityWindow, error)
	// ListWindowsBetween returns windows whose date span intersects the
	// calendar dates [from, to]; open bounds always intersect.
	ListWindowsBetween(ctx context.Context, instructorID string, from, to time.Time) ([]domain.AvailabilityWindow, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, cancelledAt time.Time) (domain.Booking, error)
	ListActive(ctx context.Context, instructorID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
}

type InstructorRepository interface {
	ListInstructors(ctx context.Context) ([]domain.Instructor, error)
}
