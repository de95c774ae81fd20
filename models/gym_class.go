package models

import "time"

type GymClass struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description"`
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndTime is the start time plus the class duration.
func (g GymClass) EndTime() time.Time {
	return g.StartTime.Add(time.Duration(g.DurationMinutes) * time.Minute)
}

type CreateGymClassRequest struct {
	Name            string    `json:"name" binding:"required,notblank,max=255"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
	Description     string    `json:"description" binding:"required,notblank"`
}

// UpdateGymClassRequest carries the full record. ID must match the path id
// and Version must match the stored version.
type UpdateGymClassRequest struct {
	ID              int       `json:"id" binding:"required"`
	Name            string    `json:"name" binding:"required,notblank,max=255"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
	Description     string    `json:"description" binding:"required,notblank"`
	Version         int       `json:"version" binding:"required,min=1"`
}

// GymClassListItem is a class with the booking flag for the viewer.
type GymClassListItem struct {
	GymClass
	IsBooked bool `json:"is_booked"`
}

type GymClassDetails struct {
	GymClass
	IsBooked  bool       `json:"is_booked"`
	Attendees []Attendee `json:"attendees"`
}
