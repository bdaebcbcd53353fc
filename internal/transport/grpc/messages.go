package grpc

import (
	"time"
)

const dateLayout = "2006-01-02"

type Window struct {
	ID           string    `json:"id"`
	InstructorID string    `json:"instructor_id"`
	Kind         string    `json:"kind"`
	StartDate    *string   `json:"start_date,omitempty"`
	EndDate      *string   `json:"end_date,omitempty"`
	DayOfWeek    *int      `json:"day_of_week,omitempty"`
	TimeRanges   string    `json:"time_ranges"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type WindowFields struct {
	InstructorID string  `json:"instructor_id" validate:"required,max=128"`
	StartDate    *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DayOfWeek    *int    `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	TimeRanges   string  `json:"time_ranges" validate:"required,max=512"`
}

type CreateWindowRequest struct {
	WindowFields
}

type UpdateWindowRequest struct {
	WindowID string `json:"window_id" validate:"required,uuid"`
	WindowFields
}

type WindowResponse struct {
	Window Window `json:"window"`
}

type DeleteWindowRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	WindowID     string `json:"window_id" validate:"required,uuid"`
}

type DeleteWindowResponse struct{}

type ListWindowsRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
}

type ListWindowsResponse struct {
	Windows []Window `json:"windows"`
}

type FreeTimeRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	// From and To pick calendar dates; both are inclusive.
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type FreeInterval struct {
	InstructorID string    `json:"instructor_id"`
	Date         string    `json:"date"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

type FreeTimeResponse struct {
	Intervals []FreeInterval `json:"intervals"`
	Warnings  []string       `json:"warnings,omitempty"`
}

type CheckSlotRequest struct {
	InstructorID string     `json:"instructor_id" validate:"required"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

type CheckSlotResponse struct {
	Verdict string `json:"verdict"`
}

type Booking struct {
	ID           string     `json:"id"`
	InstructorID string     `json:"instructor_id"`
	ClientID     string     `json:"client_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateBookingRequest struct {
	InstructorID string    `json:"instructor_id" validate:"required,max=128"`
	ClientID     string    `json:"client_id" validate:"required,max=128"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}

type CancelBookingRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type ListBookingsRequest struct {
	InstructorID string    `json:"instructor_id" validate:"required"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
}

type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
}

type RankInstructorsRequest struct {
	Origin    string     `json:"origin,omitempty" validate:"max=512"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

type RankedInstructor struct {
	ID            string `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DisplayName   string `json:"display_name"`
	Verdict       string `json:"verdict"`
	TravelSeconds *int   `json:"travel_seconds,omitempty"`
}

type RankInstructorsResponse struct {
	Instructors []RankedInstructor `json:"instructors"`
}

type RecordTravelTimeRequest struct {
	Origin       string `json:"origin" validate:"required,max=512"`
	InstructorID string `json:"instructor_id" validate:"required"`
	Seconds      int    `json:"seconds" validate:"min=0"`
}

type RecordTravelTimeResponse struct{}
