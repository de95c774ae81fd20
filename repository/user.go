package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/models"
)

const userColumns = `id, email, first_name, last_name, password_hash, created_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Create inserts the user and grants role in one transaction.
func (r *UserRepository) Create(ctx context.Context, u models.User, role string) (models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := scanUser(tx.QueryRowContext(ctx, `
		INSERT INTO users (email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		u.Email, u.FirstName, u.LastName, u.PasswordHash,
	))
	if isUniqueViolation(err) {
		return models.User{}, fmt.Errorf("email already registered: %w", apperrors.ErrValidation)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error creating user: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE role = $2
	`, created.ID, role)
	if err != nil {
		return models.User{}, fmt.Errorf("error assigning role: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil || n == 0 {
		return models.User{}, fmt.Errorf("error assigning role %q: role missing", role)
	}

	if err = tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("error committing transaction: %w", err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error fetching user %d: %w", id, err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error fetching user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error verifying user %d: %w", id, err)
	}
	return exists, nil
}

// Roles lists the role names granted to the user.
func (r *UserRepository) Roles(ctx context.Context, id int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT r.role
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.role
	`, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("error scanning role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *UserRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, role FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error fetching roles: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Role); err != nil {
			return nil, fmt.Errorf("error scanning role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// AssignRole grants role to the user. Granting a role the user already holds
// is a no-op.
func (r *UserRepository) AssignRole(ctx context.Context, userID int, role string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var userExists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&userExists); err != nil {
		return fmt.Errorf("error verifying user %d: %w", userID, err)
	}
	if !userExists {
		return fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
	}

	var roleID int
	err = tx.QueryRowContext(ctx, `SELECT id FROM roles WHERE role = $1`, role).Scan(&roleID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("unknown role %q: %w", role, apperrors.ErrValidation)
	}
	if err != nil {
		return fmt.Errorf("error fetching role: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roleID); err != nil {
		return fmt.Errorf("error assigning role: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
