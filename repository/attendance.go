package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/models"
)

// AttendanceRepository stores which members booked which classes. The
// (user_id, gym_class_id) pair is unique in the schema.
type AttendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Toggle removes the booking if present, otherwise creates it.
func (r *AttendanceRepository) Toggle(ctx context.Context, userID, classID int) (models.BookingStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM attendances
		WHERE user_id = $1 AND gym_class_id = $2
	`, userID, classID)
	if err != nil {
		return "", fmt.Errorf("error removing booking: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("error verifying booking removal: %w", err)
	}

	status := models.Unbooked
	if removed == 0 {
		// A concurrent toggle may have inserted the row already; the pair
		// stays unique either way.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attendances (user_id, gym_class_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, gym_class_id) DO NOTHING
		`, userID, classID)
		if isForeignKeyViolation(err) {
			return "", fmt.Errorf("booking gym class %d for user %d: %w", classID, userID, apperrors.ErrNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("error creating booking: %w", err)
		}
		status = models.Booked
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("error committing transaction: %w", err)
	}
	return status, nil
}

func (r *AttendanceRepository) IsBooked(ctx context.Context, userID, classID int) (bool, error) {
	var booked bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE user_id = $1 AND gym_class_id = $2
		)
	`, userID, classID).Scan(&booked)
	if err != nil {
		return false, fmt.Errorf("error checking booking: %w", err)
	}
	return booked, nil
}

// ListAttendees returns the members booked on a class in booking order.
func (r *AttendanceRepository) ListAttendees(ctx context.Context, classID int) ([]models.Attendee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, a.created_at
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.gym_class_id = $1
		ORDER BY a.created_at ASC, u.id ASC
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("error fetching attendees: %w", err)
	}
	defer rows.Close()

	attendees := []models.Attendee{}
	for rows.Next() {
		var a models.Attendee
		var firstName, lastName string
		if err := rows.Scan(&a.UserID, &firstName, &lastName, &a.BookedAt); err != nil {
			return nil, fmt.Errorf("error scanning attendee: %w", err)
		}
		a.FullName = firstName + " " + lastName
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// ListBookedClasses returns every class the user has booked, past and
// future, ordered by start time.
func (r *AttendanceRepository) ListBookedClasses(ctx context.Context, userID int) ([]models.GymClass, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.start_time, g.duration_minutes, g.description, g.version, g.created_at, g.updated_at
		FROM gym_classes g
		JOIN attendances a ON a.gym_class_id = g.id
		WHERE a.user_id = $1
		ORDER BY g.start_time ASC, g.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching booked classes: %w", err)
	}
	defer rows.Close()

	classes := []models.GymClass{}
	for rows.Next() {
		g, err := scanGymClass(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booked class: %w", err)
		}
		classes = append(classes, g)
	}
	return classes, rows.Err()
}
