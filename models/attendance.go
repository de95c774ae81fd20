package models

import "time"

type BookingStatus string

const (
	Booked   BookingStatus = "booked"
	Unbooked BookingStatus = "unbooked"
)

// Message is the user-facing confirmation for a toggle result.
func (s BookingStatus) Message() string {
	if s == Booked {
		return "You have successfully booked the class."
	}
	return "You have successfully unbooked from the class."
}

type Attendance struct {
	UserID     int       `json:"user_id"`
	GymClassID int       `json:"gym_class_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Attendee struct {
	UserID   int       `json:"user_id"`
	FullName string    `json:"full_name"`
	BookedAt time.Time `json:"booked_at"`
}

type ToggleBookingResponse struct {
	GymClassID int           `json:"gym_class_id"`
	Status     BookingStatus `json:"status"`
	IsBooked   bool          `json:"is_booked"`
	Message    string        `json:"message"`
}
