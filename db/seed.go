package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/Ammara9/GymBooking/models"

	"golang.org/x/crypto/bcrypt"
)

// SeedAccount is an account created on first start.
type SeedAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Seed creates the default roles and accounts. It runs once: if any role
// already exists the database is left untouched.
func Seed(ctx context.Context, db *sql.DB, accounts []SeedAccount) error {
	var seeded bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM roles)`).Scan(&seeded); err != nil {
		return fmt.Errorf("error checking roles: %w", err)
	}
	if seeded {
		return nil
	}

	// Start a transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	roleIDs := make(map[string]int, len(models.DefaultRoles))
	for _, role := range models.DefaultRoles {
		var id int
		err = tx.QueryRowContext(ctx,
			`INSERT INTO roles (role) VALUES ($1) RETURNING id`, role,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("error seeding role %q: %w", role, err)
		}
		roleIDs[role] = id
	}

	for _, account := range accounts {
		roleID, ok := roleIDs[account.Role]
		if !ok {
			return fmt.Errorf("seed account %s: unknown role %q", account.Email, account.Role)
		}

		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, account.Email,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("error checking account %s: %w", account.Email, err)
		}
		if exists {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("error hashing password for %s: %w", account.Email, err)
		}

		var userID int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (email, first_name, last_name, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, account.Email, account.FirstName, account.LastName, string(hash)).Scan(&userID)
		if err != nil {
			return fmt.Errorf("error seeding account %s: %w", account.Email, err)
		}

		if _, err = tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, roleID,
		); err != nil {
			return fmt.Errorf("error assigning role to %s: %w", account.Email, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	log.Printf("Seeded %d roles and %d accounts", len(roleIDs), len(accounts))
	return nil
}
