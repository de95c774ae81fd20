// Package bookingtest provides an in-memory implementation of the booking
// stores for tests.
package bookingtest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/models"
)

type pair struct {
	userID  int
	classID int
}

type booking struct {
	seq      int
	bookedAt time.Time
}

// Store keeps classes, members, and attendance in maps guarded by one mutex.
// Set Err to make every call fail with it.
type Store struct {
	mu         sync.Mutex
	nextID     int
	seq        int
	classes    map[int]models.GymClass
	members    map[int]models.User
	attendance map[pair]booking

	Err error
}

func NewStore() *Store {
	return &Store{
		nextID:     1,
		classes:    make(map[int]models.GymClass),
		members:    make(map[int]models.User),
		attendance: make(map[pair]booking),
	}
}

func (s *Store) AddMember(id int, firstName, lastName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[id] = models.User{ID: id, FirstName: firstName, LastName: lastName}
}

// AddClass stores g, assigning an id when g.ID is zero.
func (s *Store) AddClass(g models.GymClass) models.GymClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == 0 {
		g.ID = s.nextID
	}
	if g.ID >= s.nextID {
		s.nextID = g.ID + 1
	}
	if g.Version == 0 {
		g.Version = 1
	}
	s.classes[g.ID] = g
	return g
}

// AttendanceCount is the number of attendance rows for the pair.
func (s *Store) AttendanceCount(userID, classID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attendance[pair{userID, classID}]; ok {
		return 1
	}
	return 0
}

// ClassAttendanceCount is the number of attendance rows referencing classID.
func (s *Store) ClassAttendanceCount(classID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for p := range s.attendance {
		if p.classID == classID {
			n++
		}
	}
	return n
}

func (s *Store) Create(ctx context.Context, req models.CreateGymClassRequest) (models.GymClass, error) {
	if s.Err != nil {
		return models.GymClass{}, s.Err
	}
	now := time.Now()
	return s.AddClass(models.GymClass{
		Name:            req.Name,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}), nil
}

func (s *Store) GetByID(ctx context.Context, id int) (models.GymClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.GymClass{}, s.Err
	}
	g, ok := s.classes[id]
	if !ok {
		return models.GymClass{}, fmt.Errorf("gym class %d: %w", id, apperrors.ErrNotFound)
	}
	return g, nil
}

func (s *Store) ListWithBookings(ctx context.Context, viewerID int) ([]models.GymClassListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	items := []models.GymClassListItem{}
	for _, g := range s.classes {
		_, booked := s.attendance[pair{viewerID, g.ID}]
		items = append(items, models.GymClassListItem{GymClass: g, IsBooked: booked})
	}
	slices.SortFunc(items, func(a, b models.GymClassListItem) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *Store) Update(ctx context.Context, id int, req models.UpdateGymClassRequest) (models.GymClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.GymClass{}, s.Err
	}
	if req.ID != id {
		return models.GymClass{}, fmt.Errorf("gym class id %d does not match %d: %w", req.ID, id, apperrors.ErrValidation)
	}
	g, ok := s.classes[id]
	if !ok {
		return models.GymClass{}, fmt.Errorf("gym class %d: %w", id, apperrors.ErrNotFound)
	}
	if g.Version != req.Version {
		return models.GymClass{}, fmt.Errorf("gym class %d: %w", id, apperrors.ErrConflict)
	}
	g.Name = req.Name
	g.StartTime = req.StartTime
	g.DurationMinutes = req.DurationMinutes
	g.Description = req.Description
	g.Version++
	g.UpdatedAt = time.Now()
	s.classes[id] = g
	return g, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.classes[id]; !ok {
		return fmt.Errorf("gym class %d: %w", id, apperrors.ErrNotFound)
	}
	for p := range s.attendance {
		if p.classID == id {
			delete(s.attendance, p)
		}
	}
	delete(s.classes, id)
	return nil
}

func (s *Store) Toggle(ctx context.Context, userID, classID int) (models.BookingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if _, ok := s.classes[classID]; !ok {
		return "", fmt.Errorf("gym class %d: %w", classID, apperrors.ErrNotFound)
	}
	p := pair{userID, classID}
	if _, ok := s.attendance[p]; ok {
		delete(s.attendance, p)
		return models.Unbooked, nil
	}
	s.seq++
	s.attendance[p] = booking{seq: s.seq, bookedAt: time.Now()}
	return models.Booked, nil
}

func (s *Store) IsBooked(ctx context.Context, userID, classID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.attendance[pair{userID, classID}]
	return ok, nil
}

func (s *Store) ListAttendees(ctx context.Context, classID int) ([]models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	type row struct {
		attendee models.Attendee
		seq      int
	}
	var rows []row
	for p, b := range s.attendance {
		if p.classID != classID {
			continue
		}
		m := s.members[p.userID]
		rows = append(rows, row{
			attendee: models.Attendee{UserID: p.userID, FullName: m.FullName(), BookedAt: b.bookedAt},
			seq:      b.seq,
		})
	}
	slices.SortFunc(rows, func(a, b row) int { return cmp.Compare(a.seq, b.seq) })

	attendees := []models.Attendee{}
	for _, r := range rows {
		attendees = append(attendees, r.attendee)
	}
	return attendees, nil
}

func (s *Store) ListBookedClasses(ctx context.Context, userID int) ([]models.GymClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	classes := []models.GymClass{}
	for p := range s.attendance {
		if p.userID == userID {
			classes = append(classes, s.classes[p.classID])
		}
	}
	slices.SortFunc(classes, func(a, b models.GymClass) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return classes, nil
}

func (s *Store) Exists(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.members[id]
	return ok, nil
}
