package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quadralivre/internal/apperrors"
	"quadralivre/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id int, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notificacoes (user_id, tipo, mensagem, lida, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id
	`

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Kind, n.Message, now).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	n.CreatedAt = now
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, tipo, mensagem, lida, created_at
		FROM notificacoes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notificacoes WHERE user_id = $1 AND lida = FALSE", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead only touches the recipient's own row; someone else's id
// reads as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, id int, userID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notificacoes SET lida = TRUE WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("notification_not_found", "Notificação não encontrada")
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE notificacoes SET lida = TRUE WHERE user_id = $1 AND lida = FALSE", userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
