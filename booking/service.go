// Package booking implements the booking toggle and the schedule views
// built on top of the class and attendance stores.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/models"
)

type ClassStore interface {
	Create(ctx context.Context, req models.CreateGymClassRequest) (models.GymClass, error)
	GetByID(ctx context.Context, id int) (models.GymClass, error)
	ListWithBookings(ctx context.Context, viewerID int) ([]models.GymClassListItem, error)
	Update(ctx context.Context, id int, req models.UpdateGymClassRequest) (models.GymClass, error)
	Delete(ctx context.Context, id int) error
}

type AttendanceStore interface {
	Toggle(ctx context.Context, userID, classID int) (models.BookingStatus, error)
	IsBooked(ctx context.Context, userID, classID int) (bool, error)
	ListAttendees(ctx context.Context, classID int) ([]models.Attendee, error)
	ListBookedClasses(ctx context.Context, userID int) ([]models.GymClass, error)
}

type MemberStore interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	classes    ClassStore
	attendance AttendanceStore
	members    MemberStore
	now        func() time.Time
}

func NewService(classes ClassStore, attendance AttendanceStore, members MemberStore) *Service {
	return &Service{
		classes:    classes,
		attendance: attendance,
		members:    members,
		now:        time.Now,
	}
}

// WithClock replaces the clock used by the time-partitioned views.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListClasses returns the schedule flagged for viewerID; 0 means anonymous.
func (s *Service) ListClasses(ctx context.Context, viewerID int) ([]models.GymClassListItem, error) {
	return s.classes.ListWithBookings(ctx, viewerID)
}

func (s *Service) GetClassDetails(ctx context.Context, classID, viewerID int) (models.GymClassDetails, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return models.GymClassDetails{}, err
	}

	attendees, err := s.attendance.ListAttendees(ctx, classID)
	if err != nil {
		return models.GymClassDetails{}, err
	}

	details := models.GymClassDetails{GymClass: class, Attendees: attendees}
	for _, a := range attendees {
		if a.UserID == viewerID {
			details.IsBooked = true
			break
		}
	}
	return details, nil
}

// ToggleBooking books the class for the member if they have no booking on
// it, and removes the booking otherwise. There is no capacity limit and
// classes that already started can still be toggled.
func (s *Service) ToggleBooking(ctx context.Context, memberID, classID int) (models.BookingStatus, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		return "", err
	}

	exists, err := s.members.Exists(ctx, memberID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("member %d: %w", memberID, apperrors.ErrNotFound)
	}

	return s.attendance.Toggle(ctx, memberID, classID)
}

// UpcomingBooked lists the member's booked classes that start after now.
func (s *Service) UpcomingBooked(ctx context.Context, memberID int) ([]models.GymClass, error) {
	now := s.now()
	booked, err := s.attendance.ListBookedClasses(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return Upcoming(booked, now), nil
}

// History lists the member's booked classes that started before now.
func (s *Service) History(ctx context.Context, memberID int) ([]models.GymClass, error) {
	now := s.now()
	booked, err := s.attendance.ListBookedClasses(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return Past(booked, now), nil
}

func (s *Service) CreateClass(ctx context.Context, req models.CreateGymClassRequest) (models.GymClass, error) {
	if err := validateClass(req.Name, req.StartTime, req.DurationMinutes, req.Description); err != nil {
		return models.GymClass{}, err
	}
	return s.classes.Create(ctx, req)
}

func (s *Service) UpdateClass(ctx context.Context, id int, req models.UpdateGymClassRequest) (models.GymClass, error) {
	if req.ID != id {
		return models.GymClass{}, fmt.Errorf("gym class id %d does not match %d: %w", req.ID, id, apperrors.ErrValidation)
	}
	if err := validateClass(req.Name, req.StartTime, req.DurationMinutes, req.Description); err != nil {
		return models.GymClass{}, err
	}
	return s.classes.Update(ctx, id, req)
}

func (s *Service) DeleteClass(ctx context.Context, id int) error {
	return s.classes.Delete(ctx, id)
}

func validateClass(name string, start time.Time, durationMinutes int, description string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("name is required: %w", apperrors.ErrValidation)
	case start.IsZero():
		return fmt.Errorf("start time is required: %w", apperrors.ErrValidation)
	case durationMinutes <= 0:
		return fmt.Errorf("duration must be positive: %w", apperrors.ErrValidation)
	case strings.TrimSpace(description) == "":
		return fmt.Errorf("description is required: %w", apperrors.ErrValidation)
	}
	return nil
}
