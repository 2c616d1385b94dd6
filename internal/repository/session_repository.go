package repository

import (
	"context"
	"database/sql"
	"fmt"

	"quadralivre/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// IsActive reports whether the session exists, is unrevoked and
	// unexpired. Any miss means the bearer token is dead.
	IsActive(ctx context.Context, id string) (bool, error)
	// Revoke is idempotent: revoking an already-revoked or unknown
	// session is not an error.
	Revoke(ctx context.Context, id string) error
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) IsActive(ctx context.Context, id string) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM sessions
			WHERE id = $1
			  AND revoked_at IS NULL
			  AND expires_at > (NOW() AT TIME ZONE 'UTC')
		)
	`, id).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return active, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = (NOW() AT TIME ZONE 'UTC')
		WHERE id = $1 AND revoked_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
