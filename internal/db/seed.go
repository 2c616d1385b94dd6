package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin ensures an admin account exists for the configured
// credentials. No-op when the email is unset or already registered;
// approval operations are unreachable without at least one admin.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))", email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check admin exists: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, nome, user_type, password_hash, created_at)
		VALUES ($1, $2, 'Administrador', 'admin', $3, $4)
	`, uuid.NewString(), email, string(hash), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	log.Printf("Seeded admin account: %s", email)
	return nil
}
