package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/models"
)

const gymClassColumns = `id, name, start_time, duration_minutes, description, version, created_at, updated_at`

type GymClassRepository struct {
	db *sql.DB
}

func NewGymClassRepository(db *sql.DB) *GymClassRepository {
	return &GymClassRepository{db: db}
}

func scanGymClass(row rowScanner, extra ...any) (models.GymClass, error) {
	var g models.GymClass
	dest := []any{
		&g.ID,
		&g.Name,
		&g.StartTime,
		&g.DurationMinutes,
		&g.Description,
		&g.Version,
		&g.CreatedAt,
		&g.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return g, err
}

func (r *GymClassRepository) Create(ctx context.Context, req models.CreateGymClassRequest) (models.GymClass, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO gym_classes (name, start_time, duration_minutes, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+gymClassColumns,
		req.Name, req.StartTime, req.DurationMinutes, req.Description,
	)
	g, err := scanGymClass(row)
	if err != nil {
		return models.GymClass{}, fmt.Errorf("error creating gym class: %w", err)
	}
	return g, nil
}

func (r *GymClassRepository) GetByID(ctx context.Context, id int) (models.GymClass, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gymClassColumns+` FROM gym_classes WHERE id = $1`, id)
	g, err := scanGymClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GymClass{}, fmt.Errorf("gym class %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.GymClass{}, fmt.Errorf("error fetching gym class %d: %w", id, err)
	}
	return g, nil
}

// ListWithBookings returns every class ordered by start time, flagged with
// whether viewerID has booked it. A viewerID of 0 is an anonymous viewer.
func (r *GymClassRepository) ListWithBookings(ctx context.Context, viewerID int) ([]models.GymClassListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+gymClassColumns+`,
			EXISTS (
				SELECT 1 FROM attendances a
				WHERE a.gym_class_id = g.id AND a.user_id = $1
			) AS is_booked
		FROM gym_classes g
		ORDER BY start_time ASC, id ASC
	`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("error fetching gym classes: %w", err)
	}
	defer rows.Close()

	items := []models.GymClassListItem{}
	for rows.Next() {
		var item models.GymClassListItem
		item.GymClass, err = scanGymClass(rows, &item.IsBooked)
		if err != nil {
			return nil, fmt.Errorf("error scanning gym class: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update overwrites the class if req.Version is still current and bumps the
// version. A stale version yields ErrConflict, a missing class ErrNotFound.
func (r *GymClassRepository) Update(ctx context.Context, id int, req models.UpdateGymClassRequest) (models.GymClass, error) {
	if req.ID != id {
		return models.GymClass{}, fmt.Errorf("gym class id %d does not match %d: %w", req.ID, id, apperrors.ErrValidation)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE gym_classes
		SET name = $1,
			start_time = $2,
			duration_minutes = $3,
			description = $4,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $5 AND version = $6
		RETURNING `+gymClassColumns,
		req.Name, req.StartTime, req.DurationMinutes, req.Description, id, req.Version,
	)
	g, err := scanGymClass(row)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.GymClass{}, fmt.Errorf("error updating gym class %d: %w", id, err)
	}

	exists, err := r.Exists(ctx, id)
	if err != nil {
		return models.GymClass{}, err
	}
	if !exists {
		return models.GymClass{}, fmt.Errorf("gym class %d: %w", id, apperrors.ErrNotFound)
	}
	return models.GymClass{}, fmt.Errorf("gym class %d was modified since version %d: %w", id, req.Version, apperrors.ErrConflict)
}

// Delete removes the class and its attendance rows in one transaction.
func (r *GymClassRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendances WHERE gym_class_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting attendances of gym class %d: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM gym_classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting gym class %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error verifying deletion of gym class %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("gym class %d: %w", id, apperrors.ErrNotFound)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (r *GymClassRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM gym_classes WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error verifying gym class %d: %w", id, err)
	}
	return exists, nil
}
