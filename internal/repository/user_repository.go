package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"quadralivre/internal/apperrors"
	"quadralivre/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, nome, user_type, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.Role, user.PasswordHash, user.CreatedAt,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("email_taken", "Email já cadastrado")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *userRepository) getBy(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, email, nome, user_type, password_hash, created_at
		FROM users
		WHERE ` + where

	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("user_not_found", "Usuário não encontrado")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("user_not_found", "Usuário não encontrado")
	}
	return nil
}
