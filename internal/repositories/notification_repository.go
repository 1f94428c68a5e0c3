package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hr-realtime/internal/models"
)

// NotificationRepository persists durable notification records.
type NotificationRepository interface {
	Create(ctx context.Context, userID, message, kind string) (models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

// NotificationRepo is a sqlx-backed repository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores an unread notification for the user.
func (r *NotificationRepo) Create(ctx context.Context, userID, message, kind string) (models.Notification, error) {
	var n models.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (id, user_id, message, kind)
            VALUES ($1, $2, $3, $4)
            RETURNING id, user_id, message, kind, read, created_at`,
		uuid.NewString(), userID, message, kind).StructScan(&n)
	return n, err
}

// MarkRead flips the read flag; records are never deleted individually.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, notificationID, userID)
	return err
}
